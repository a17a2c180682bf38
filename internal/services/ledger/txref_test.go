package ledger

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTxRefGenerator_MonotonicWithinMillisecond(t *testing.T) {
	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	gen := newTxRefGenerator("HB", bytes.NewReader(bytes.Repeat([]byte{7}, 1024)), func() time.Time { return at })

	prev := gen.New()
	for i := 0; i < 50; i++ {
		next := gen.New()
		assert.True(t, strings.HasPrefix(next, "HB"))
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestTxRefGenerator_ConcurrentUnique(t *testing.T) {
	gen := NewTxRefGenerator("HB")

	const workers, perWorker = 8, 200
	refs := make(chan string, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				refs <- gen.New()
			}
		}()
	}
	wg.Wait()
	close(refs)

	seen := make(map[string]struct{}, workers*perWorker)
	for ref := range refs {
		_, dup := seen[ref]
		assert.False(t, dup, "duplicate txRef %s", ref)
		seen[ref] = struct{}{}
	}
	assert.Len(t, seen, workers*perWorker)
}
