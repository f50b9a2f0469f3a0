/*
Package chat implements the chat stream controller.

The Controller owns the socket of the active session and the message
store, applies inbound frames, and exposes Send, Edit, Regenerate and
Stop. A single mutex serialises commands and socket events. Calls into
collaborators (navigator, notifier, auth handler, event bus, observer)
are queued while the lock is held and run after it is released.

Every dial is bound to a connection epoch. Closing or reconnecting bumps
the epoch, and events from an older epoch are dropped. History fetches
are tagged the same way with a generation counter.

A turn sent before a session exists is buffered while the session is
created, then delivered exactly once when the new socket opens:

	Idle -> Creating -> Navigated -> Connecting -> Flushed

The optimistic user message keeps its temp id across the switch, so the
store never shows it twice.
*/
package chat
