package knowledge

import "context"

// Backend persists records for a Store.
//
// Implementations wrap every I/O failure in a *StorageError with the correct
// Phase. The Store serializes writes, so backends need not coordinate
// concurrent Insert and Clear calls themselves.
type Backend interface {
	// Insert durably stores a record and returns its assigned ID.
	Insert(ctx context.Context, tag, contents string) (RecordID, error)

	// All returns every record in insertion order.
	All(ctx context.Context) ([]Record, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Clear deletes every record and returns how many were removed.
	// IDs are not reset.
	Clear(ctx context.Context) (int64, error)

	// Close releases the underlying connection pool.
	Close() error
}
