// Package id generates client-side identifiers for chat messages.
//
// Identifiers are prefixed ULIDs so they sort by creation time and are easy
// to tell apart in logs:
//   - tmp_*: optimistic user turns awaiting a server id (temp ids)
//   - local_*: finalized assistant replies that never get a server id
//   - stopped_*: notices appended when a generation is stopped
//   - trace_*: REST request trace ids
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	TempPrefix    = "tmp"
	LocalPrefix   = "local"
	StoppedPrefix = "stopped"
	TracePrefix   = "trace"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the shared generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand with monotonic
// entropy, so ids minted within the same millisecond still sort in order.
func NewGenerator() *Generator {
	return NewGeneratorWithEntropy(rand.Reader)
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Tests pass a deterministic reader.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{
		entropy: ulid.Monotonic(entropy, 0),
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewTempID returns an id for an optimistic user turn
func NewTempID() string {
	return Default().GenerateWithPrefix(TempPrefix)
}

// NewLocalID returns an id for a message the server never named
func NewLocalID() string {
	return Default().GenerateWithPrefix(LocalPrefix)
}

// NewStoppedID returns an id for a stopped-generation notice
func NewStoppedID() string {
	return Default().GenerateWithPrefix(StoppedPrefix)
}

// NewTraceID returns an id that correlates one REST call across processes
func NewTraceID() string {
	return Default().GenerateWithPrefix(TracePrefix)
}

// IsTemp reports whether id was minted by NewTempID
func IsTemp(id string) bool {
	return HasPrefix(id, TempPrefix)
}

// HasPrefix reports whether id is a valid prefixed ULID with the given prefix
func HasPrefix(id, prefix string) bool {
	rest, ok := strings.CutPrefix(id, prefix+"_")
	if !ok {
		return false
	}
	_, err := ulid.Parse(rest)
	return err == nil
}

// Timestamp extracts the creation time from a prefixed or bare ULID
func Timestamp(id string) (time.Time, error) {
	if i := strings.LastIndexByte(id, '_'); i >= 0 {
		id = id[i+1:]
	}
	parsed, err := ulid.Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
