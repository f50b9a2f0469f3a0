package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sriram629/AI-ChatBot/client/internal/types"
)

func user(id, content string) types.Message {
	return types.Message{ID: id, Role: types.RoleUser, Content: content}
}

func assistant(id, content string) types.Message {
	return types.Message{ID: id, Role: types.RoleAssistant, Content: content}
}

func isAssistant(m types.Message) bool { return m.Role == types.RoleAssistant }

func seeded(t *testing.T, msgs ...types.Message) *Store {
	t.Helper()
	s := New()
	for _, m := range msgs {
		require.NoError(t, s.Append(m))
	}
	return s
}

func ids(s *Store) []string {
	out := make([]string, 0, s.Len())
	for _, m := range s.Snapshot() {
		out = append(out, m.ID)
	}
	return out
}

func TestAppendRejectsDuplicate(t *testing.T) {
	s := seeded(t, user("u1", "hi"))

	err := s.Append(assistant("u1", "dup"))
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, 1, s.Len())
}

func TestAppendDeltaConcatenates(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   string
	}{
		{name: "single", chunks: []string{"Hello"}, want: "Hello"},
		{name: "split", chunks: []string{"Hel", "lo"}, want: "Hello"},
		{name: "empty fragment", chunks: []string{"Hel", "", "lo"}, want: "Hello"},
		{name: "unicode", chunks: []string{"héll", "ö ", "世界"}, want: "héllö 世界"},
		{name: "none", chunks: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seeded(t, user("u1", "q"), assistant("a1", ""))
			for _, c := range tt.chunks {
				assert.True(t, s.AppendDelta(isAssistant, c))
			}
			last, ok := s.Last()
			require.True(t, ok)
			assert.Equal(t, tt.want, last.Content)
		})
	}
}

func TestAppendDeltaNoMatch(t *testing.T) {
	s := seeded(t, user("u1", "q"))

	assert.False(t, s.AppendDelta(isAssistant, "x"))
	assert.Equal(t, []types.Message{user("u1", "q")}, s.Snapshot())

	empty := New()
	assert.False(t, empty.AppendDelta(isAssistant, "x"))
}

func TestAppendDeltaTargetsLastMatch(t *testing.T) {
	s := seeded(t, assistant("a0", "old"), user("u1", "q"), assistant("a1", "new"))

	require.True(t, s.AppendDelta(isAssistant, "er"))

	first, _ := s.Find("a0")
	last, _ := s.Find("a1")
	assert.Equal(t, "old", first.Content)
	assert.Equal(t, "newer", last.Content)
}

func TestRemapID(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		want    bool
		wantIDs []string
	}{
		{name: "remaps", from: "tmp", to: "real", want: true, wantIDs: []string{"tmp", "a1"}},
		{name: "absent temp id", from: "missing", to: "real", want: false, wantIDs: []string{"tmp", "a1"}},
		{name: "equal ids", from: "tmp", to: "tmp", want: false, wantIDs: []string{"tmp", "a1"}},
		{name: "target taken", from: "tmp", to: "a1", want: false, wantIDs: []string{"tmp", "a1"}},
		{name: "empty target", from: "tmp", to: "", want: false, wantIDs: []string{"tmp", "a1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seeded(t, user("tmp", "q"), assistant("a1", "r"))
			got := s.RemapID(tt.from, tt.to)
			assert.Equal(t, tt.want, got)
			if got {
				tt.wantIDs[0] = tt.to
			}
			assert.Equal(t, tt.wantIDs, ids(s))
		})
	}
}

func TestRemapIDIsIdempotent(t *testing.T) {
	s := seeded(t, user("tmp", "q"))

	assert.True(t, s.RemapID("tmp", "real"))
	assert.False(t, s.RemapID("tmp", "real"))
	assert.Equal(t, []string{"real"}, ids(s))
}

func TestTruncateAfterEveryPosition(t *testing.T) {
	const n = 6
	for k := 1; k <= n; k++ {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			s := New()
			for i := 1; i <= n; i++ {
				require.NoError(t, s.Append(user(fmt.Sprintf("m%d", i), "x")))
			}

			idx := s.TruncateAfter(fmt.Sprintf("m%d", k))
			assert.Equal(t, k-1, idx)
			assert.Equal(t, k, s.Len())
			last, _ := s.Last()
			assert.Equal(t, fmt.Sprintf("m%d", k), last.ID)
		})
	}
}

func TestTruncateAfterMissing(t *testing.T) {
	s := seeded(t, user("u1", "q"), assistant("a1", "r"))

	assert.Equal(t, -1, s.TruncateAfter("nope"))
	assert.Equal(t, 2, s.Len())
}

func TestDropLastIf(t *testing.T) {
	t.Run("trailing assistant dropped", func(t *testing.T) {
		s := seeded(t, user("u1", "q"), assistant("a1", "r"))
		assert.True(t, s.DropLastIf(types.RoleAssistant))
		assert.Equal(t, []string{"u1"}, ids(s))
	})

	t.Run("trailing user kept", func(t *testing.T) {
		s := seeded(t, assistant("a1", "r"), user("u1", "q"))
		assert.False(t, s.DropLastIf(types.RoleAssistant))
		assert.Equal(t, []string{"a1", "u1"}, ids(s))
	})

	t.Run("empty store", func(t *testing.T) {
		assert.False(t, New().DropLastIf(types.RoleAssistant))
	})
}

func TestMutateAndRemove(t *testing.T) {
	s := seeded(t, user("u1", "q"), assistant("a1", "r"), user("u2", "q2"))

	assert.True(t, s.MutateByID("u1", "edited"))
	assert.False(t, s.MutateByID("zz", "edited"))
	m, ok := s.Find("u1")
	require.True(t, ok)
	assert.Equal(t, "edited", m.Content)

	assert.True(t, s.Remove("a1"))
	assert.False(t, s.Remove("a1"))
	assert.Equal(t, []string{"u1", "u2"}, ids(s))
	assert.True(t, s.Has("u2"))
	assert.False(t, s.Has("a1"))
}

func TestReplaceDropsDuplicates(t *testing.T) {
	s := seeded(t, user("old", "x"))

	s.Replace([]types.Message{user("u1", "a"), assistant("a1", "b"), user("u1", "c")})
	assert.Equal(t, []string{"u1", "a1"}, ids(s))

	s.Replace(nil)
	assert.Equal(t, 0, s.Len())
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	msg := user("u1", "q")
	msg.Attachments = []types.Attachment{{Type: types.AttachmentFile, Filename: "a.txt"}}
	s := seeded(t, msg)

	snap := s.Snapshot()
	snap[0].Content = "changed"
	snap[0].Attachments[0].Filename = "b.txt"

	got, _ := s.Find("u1")
	assert.Equal(t, "q", got.Content)
	assert.Equal(t, "a.txt", got.Attachments[0].Filename)
}

func TestSetLastContent(t *testing.T) {
	assert.False(t, New().SetLastContent("x"))

	s := seeded(t, user("u1", "q"), assistant("a1", "par"))
	assert.True(t, s.SetLastContent("stopped"))
	last, _ := s.Last()
	assert.Equal(t, "stopped", last.Content)
}
