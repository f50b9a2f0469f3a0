/*
Package api is the REST client for the chat backend.

	POST /api/chat/sessions                -> {session_id, title}
	GET  /api/chat/sessions                -> [{session_id, title, created_at, updated_at}]
	GET  /api/chat/sessions/{id}/messages  -> [{_id, role, content, attachments}]

Requests carry the bearer token from a TokenSource and an X-Trace-ID that
stays the same across retries of one call. Reads are retried on
transport errors, 5xx and 429; session creation is not. A circuit breaker
from internal/resilience trips on repeated failures, ignoring 401, 403
and 404. Errors wrap ErrUnauthorized, ErrNotFound or are *StatusError.
*/
package api
