package ledger

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// TxRefGenerator issues transaction references of the form prefix + ULID.
// ULIDs from one generator are strictly increasing, even within the same
// millisecond.
type TxRefGenerator struct {
	prefix  string
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// NewTxRefGenerator creates a generator seeded from crypto/rand
func NewTxRefGenerator(prefix string) *TxRefGenerator {
	return newTxRefGenerator(prefix, rand.Reader, time.Now)
}

func newTxRefGenerator(prefix string, entropy io.Reader, now func() time.Time) *TxRefGenerator {
	return &TxRefGenerator{
		prefix:  prefix,
		entropy: ulid.Monotonic(entropy, 0),
		now:     now,
	}
}

// New returns the next reference. The entropy source is not safe for
// concurrent use, hence the mutex.
func (g *TxRefGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.prefix + ulid.MustNew(ulid.Timestamp(g.now()), g.entropy).String()
}
