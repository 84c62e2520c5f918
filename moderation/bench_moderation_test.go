package moderation

import (
	"fmt"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

// Measures the cold-start cost of a very large blacklist: words persisted in
// Badger, loaded back, compiled into the automaton, then one censor pass.
// Run with -v to see the phase timings.
func Test_Moderation_Benchmark(t *testing.T) {
	req := require.New(t)
	path := t.TempDir()
	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	wordCount := 100_000

	// --- Phase 1: SEEDING ---
	startSeed := time.Now()
	wb := db.NewWriteBatch()
	for i := 0; i < wordCount; i++ {
		key := []byte(fmt.Sprintf("blacklist:word_%d", i))
		_ = wb.Set(key, nil)
	}
	err = wb.Flush()
	req.NoError(err)
	t.Logf("Seeding %d words: %v", wordCount, time.Since(startSeed))

	// --- Phase 2: LOADING ---
	startLoad := time.Now()
	var words []string
	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		// Words live in the keys, values are empty.
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte("blacklist:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			words = append(words, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	req.NoError(err)
	req.Len(words, wordCount)
	t.Logf("Loading from Badger: %v", time.Since(startLoad))

	// --- Phase 3: BUILDING AHO-CORASICK ---
	startBuild := time.Now()
	mod, err := NewModerator(words, '*')
	req.NoError(err)
	t.Logf("Building AC automaton: %v", time.Since(startBuild))

	// --- Phase 4: CENSOR PASS ---
	startCensor := time.Now()
	censored, found := mod.Censor("nothing here but word_41 slips through")
	req.NotEmpty(found)
	req.Contains(censored, "****")
	t.Logf("Censor pass: %v", time.Since(startCensor))

	t.Logf("Total startup time for moderation: %v", time.Since(startLoad))
}
