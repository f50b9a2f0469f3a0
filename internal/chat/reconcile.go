package chat

import (
	"errors"

	"go.uber.org/zap"

	"github.com/sriram629/AI-ChatBot/client/internal/events"
	"github.com/sriram629/AI-ChatBot/client/internal/id"
	"github.com/sriram629/AI-ChatBot/client/internal/protocol"
	"github.com/sriram629/AI-ChatBot/client/internal/types"
)

// Anomaly kinds for frames that change nothing.
const (
	anomalyMalformed    = "malformed"
	anomalyUnknownType  = "unknown_type"
	anomalyOrphanChunk  = "orphan_chunk"
	anomalyMissingID    = "missing_id"
	anomalyDuplicateID  = "duplicate_id"
	anomalyRemapIgnored = "remap_ignored"
)

func (c *Controller) handleFrameLocked(data []byte) {
	frame, err := protocol.Decode(data)
	if err != nil {
		kind := anomalyMalformed
		if errors.Is(err, protocol.ErrUnknownFrame) {
			kind = anomalyUnknownType
		}
		c.anomalyLocked(kind, zap.Error(err))
		return
	}
	c.metrics.RecordFrame(frame.Type())
	frame.Accept(reconciler{c: c})
}

func (c *Controller) anomalyLocked(kind string, fields ...zap.Field) {
	c.metrics.RecordAnomaly(kind)
	c.logger.Debug("Ignoring frame", append(fields, zap.String("kind", kind), zap.String("session_id", c.sessionID))...)
}

// reconciler applies frames to controller state; mu is held
type reconciler struct {
	c *Controller
}

var _ protocol.Handler = reconciler{}

func (r reconciler) OnStart(f protocol.StartFrame) {
	c := r.c
	c.streaming = true
	c.status = ""
	c.touch()
	if f.IsEdit {
		return
	}
	if last, ok := c.store.Last(); ok && last.ID == PlaceholderID {
		return
	}
	// a placeholder left mid-list by a missed end is re-keyed first
	c.rekeyPlaceholderLocked()
	_ = c.store.Append(types.Message{
		ID:          PlaceholderID,
		Role:        types.RoleAssistant,
		Attachments: []types.Attachment{},
	})
}

func (r reconciler) OnStatus(f protocol.StatusFrame) {
	r.c.status = f.Content
	r.c.touch()
}

func (r reconciler) OnChunk(f protocol.ChunkFrame) {
	c := r.c
	c.status = ""
	c.touch()
	if !c.store.AppendDelta(c.trailingAssistant(), f.Content) {
		c.anomalyLocked(anomalyOrphanChunk)
	}
}

func (r reconciler) OnEditChunk(f protocol.EditChunkFrame) {
	c := r.c
	matched := c.store.AppendDelta(func(m types.Message) bool { return m.ID == f.ID }, f.Content)
	if !matched {
		c.anomalyLocked(anomalyMissingID, zap.String("id", f.ID))
		return
	}
	c.touch()
}

func (r reconciler) OnIDUpdate(f protocol.IDUpdateFrame) {
	c := r.c
	switch {
	case c.store.RemapID(f.TempID, f.RealID):
		c.touch()
	case c.store.Has(f.RealID):
		// history already delivered the persisted copy; drop the optimistic one
		if c.store.Remove(f.TempID) {
			c.touch()
		}
		c.anomalyLocked(anomalyDuplicateID, zap.String("real_id", f.RealID))
	default:
		c.anomalyLocked(anomalyRemapIgnored, zap.String("temp_id", f.TempID))
	}
}

func (r reconciler) OnTitleUpdate(f protocol.TitleUpdateFrame) {
	c := r.c
	ev := events.SessionEvent{SessionID: c.sessionID, Reason: events.ReasonTitleChanged, Title: f.Title}
	c.after(func() { c.bus.Publish(ev) })
}

func (r reconciler) OnEnd(protocol.EndFrame) {
	c := r.c
	if c.streaming {
		c.metrics.IncStreamsCompleted()
	}
	c.streaming = false
	c.status = ""
	c.rekeyPlaceholderLocked()
	c.touch()
}

// trailingAssistant matches the last message only when it is a reply
func (c *Controller) trailingAssistant() func(types.Message) bool {
	last, ok := c.store.Last()
	if !ok || last.Role != types.RoleAssistant {
		return func(types.Message) bool { return false }
	}
	target := last.ID
	return func(m types.Message) bool { return m.ID == target }
}

// rekeyPlaceholderLocked gives a finished reply a local id so the
// placeholder id is free for the next turn
func (c *Controller) rekeyPlaceholderLocked() {
	if c.store.RemapID(PlaceholderID, id.NewLocalID()) {
		c.touch()
	}
}
