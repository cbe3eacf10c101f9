package exec

import (
	"sync"

	"github.com/google/uuid"
)

// TokenGenerator produces run tokens correlating the log lines and the
// Result of one quantum execution.
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run tokens. UUIDv7
// embeds a timestamp in the most significant bits, so tokens sort by
// execution start time, which helps when reading interleaved logs from
// parallel quanta.
//
// Stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined tokens for deterministic tests.
// When the supplied tokens run out it keeps returning the last one.
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedGenerator creates a generator over the given token sequence.
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{tokens: tokens}
}

// Generate returns the next predetermined token.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.tokens) == 0 {
		return "run-fixed"
	}
	if g.idx >= len(g.tokens) {
		return g.tokens[len(g.tokens)-1]
	}
	tok := g.tokens[g.idx]
	g.idx++
	return tok
}
