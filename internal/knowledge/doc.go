// Package knowledge provides a tag-indexed knowledge store.
//
// # Overview
//
// A Store keeps an append-only table of records (id, tag, contents) and
// answers tag queries by delegating ranking to a Matcher:
//
//   - ExactMatcher: case-sensitive tag equality, insertion order
//   - RankedLexicalMatcher: BM25 over lowercase word tokens of tag and contents
//
// Persistence is provided by a Backend. SQLiteBackend is the default and
// stores records in a single `knowledge` table.
//
// # Usage
//
//	backend, err := knowledge.OpenSQLite(ctx, knowledge.SQLiteConfig{Path: "kb.db"})
//	if err != nil {
//	    return err
//	}
//	store, err := knowledge.NewStore(backend,
//	    knowledge.WithMatcher(knowledge.NewRankedLexicalMatcher(knowledge.DefaultBM25Config())),
//	    knowledge.WithLogger(logger),
//	)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	id, err := store.Add(ctx, "rust ownership", "borrow checker rules")
//	contents, err := store.Query(ctx, "rust", 5)
//
// # Errors
//
// Invalid input yields *ValidationError (errors.Is(err, ErrValidation)).
// Persistence failures yield *StorageError carrying the phase: read-phase
// failures are retried a bounded number of times before surfacing, write-phase
// failures are returned immediately. An empty query result is not an error.
//
// # Concurrency Safety
//
// Store is safe for concurrent use. Writes are serialized; reads run
// concurrently and never observe a partially written record.
package knowledge
