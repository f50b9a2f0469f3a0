package protocol

// Frame types sent by the server.
const (
	TypeStart       = "start"
	TypeStatus      = "status"
	TypeChunk       = "chunk"
	TypeEditChunk   = "edit_chunk"
	TypeIDUpdate    = "id_update"
	TypeTitleUpdate = "title_update"
	TypeEnd         = "end"
)

// Frame is one decoded inbound message. The set of implementations is
// closed; dispatch goes through Accept.
type Frame interface {
	Type() string
	Accept(h Handler)
}

// Handler receives frames, one method per frame type.
type Handler interface {
	OnStart(StartFrame)
	OnStatus(StatusFrame)
	OnChunk(ChunkFrame)
	OnEditChunk(EditChunkFrame)
	OnIDUpdate(IDUpdateFrame)
	OnTitleUpdate(TitleUpdateFrame)
	OnEnd(EndFrame)
}

// StartFrame opens an assistant turn. IsEdit marks a regeneration after
// an edit, which streams into a fresh placeholder the same way.
type StartFrame struct {
	IsEdit bool
}

// StatusFrame carries ephemeral progress text such as "Thinking..."
type StatusFrame struct {
	Content string
}

// ChunkFrame is a fragment of the trailing assistant message
type ChunkFrame struct {
	Content string
}

// EditChunkFrame is a fragment for the message with the given id
type EditChunkFrame struct {
	ID      string
	Content string
}

// IDUpdateFrame confirms a client temp id
type IDUpdateFrame struct {
	TempID string
	RealID string
}

// TitleUpdateFrame reports that the session title changed
type TitleUpdateFrame struct {
	Title string
}

// EndFrame closes the assistant turn
type EndFrame struct{}

func (StartFrame) Type() string { return TypeStart }
func (StatusFrame) Type() string { return TypeStatus }
func (ChunkFrame) Type() string { return TypeChunk }
func (EditChunkFrame) Type() string { return TypeEditChunk }
func (IDUpdateFrame) Type() string { return TypeIDUpdate }
func (TitleUpdateFrame) Type() string { return TypeTitleUpdate }
func (EndFrame) Type() string { return TypeEnd }

func (f StartFrame) Accept(h Handler) { h.OnStart(f) }
func (f StatusFrame) Accept(h Handler) { h.OnStatus(f) }
func (f ChunkFrame) Accept(h Handler) { h.OnChunk(f) }
func (f EditChunkFrame) Accept(h Handler) { h.OnEditChunk(f) }
func (f IDUpdateFrame) Accept(h Handler) { h.OnIDUpdate(f) }
func (f TitleUpdateFrame) Accept(h Handler) { h.OnTitleUpdate(f) }
func (f EndFrame) Accept(h Handler) { h.OnEnd(f) }
