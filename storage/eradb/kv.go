// Package eradb implements a persistent highway/api.EraStorage over a
// pluggable key-value backend: tm-db's generic DB interface for the
// in-memory/dev path, and badger directly for the on-disk path.
package eradb

// kvStore is the minimal key-value contract eraStore is built against, so
// its AddEra/GetEra/GetChildren/GetChildlessEras logic is backend-agnostic.
type kvStore interface {
	// Get returns the value for key, or (nil, nil) if key is absent.
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	// Iterate calls fn once per key/value pair whose key has the given
	// prefix. Iteration order is unspecified.
	Iterate(prefix []byte, fn func(key, value []byte) error) error
	Close() error
}
