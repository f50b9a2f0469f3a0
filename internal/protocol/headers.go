package protocol

// TraceHeader carries a per-request trace id on REST calls. The server
// echoes it, or mints one when the request has none.
const TraceHeader = "X-Trace-ID"
