package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sriram629/AI-ChatBot/client/internal/types"
)

func TestStoreListNewestFirst(t *testing.T) {
	s := NewStore()
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	a := s.Create()
	clock = clock.Add(time.Minute)
	b := s.Create()
	clock = clock.Add(time.Minute)
	_, ok := s.Append(a.SessionID, types.Message{Role: types.RoleUser, Content: "hi"}, "")
	require.True(t, ok)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, a.SessionID, list[0].SessionID)
	assert.Equal(t, b.SessionID, list[1].SessionID)
}

func TestStoreRewind(t *testing.T) {
	s := NewStore()
	sid := s.Create().SessionID
	u1, _ := s.Append(sid, types.Message{Role: types.RoleUser, Content: "one"}, "tmp_1")
	a1, _ := s.Append(sid, types.Message{Role: types.RoleAssistant, Content: "r1"}, "")
	s.Append(sid, types.Message{Role: types.RoleUser, Content: "two"}, "")

	assert.False(t, s.Rewind(sid, a1, "x"), "replies are not editable")
	assert.False(t, s.Rewind(sid, "missing", "x"))
	assert.False(t, s.Rewind("nope", u1, "x"))

	require.True(t, s.Rewind(sid, "tmp_1", "uno"))
	msgs, _ := s.Messages(sid)
	require.Len(t, msgs, 1)
	assert.Equal(t, u1, msgs[0].ID)
	assert.Equal(t, "uno", msgs[0].Content)
	assert.Equal(t, []types.Attachment{}, msgs[0].Attachments)
}

func TestStoreDropTrailingReply(t *testing.T) {
	s := NewStore()
	sid := s.Create().SessionID

	assert.False(t, s.DropTrailingReply(sid))
	s.Append(sid, types.Message{Role: types.RoleUser, Content: "q"}, "")
	assert.False(t, s.DropTrailingReply(sid))
	s.Append(sid, types.Message{Role: types.RoleAssistant, Content: "a"}, "")
	assert.True(t, s.DropTrailingReply(sid))

	msgs, _ := s.Messages(sid)
	assert.Len(t, msgs, 1)
}

func TestStoreNameIfNew(t *testing.T) {
	s := NewStore()
	sid := s.Create().SessionID

	assert.False(t, s.NameIfNew(sid, ""))
	assert.True(t, s.NameIfNew(sid, "Trip"))
	assert.False(t, s.NameIfNew(sid, "Other"))
	assert.False(t, s.NameIfNew("missing", "x"))
	assert.Equal(t, "Trip", s.List()[0].Title)
}
