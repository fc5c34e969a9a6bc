package object

import "fmt"

// SaveOptions controls how a sanitized tree is persisted.
type SaveOptions struct {
	// CompressStreams re-encodes stream payloads with compression.
	CompressStreams bool
	// NormalizeStreams decodes and re-encodes content streams, dropping
	// incremental-update history in the process.
	NormalizeStreams bool
}

// Store parses structural trees from files and writes them back. The
// parsing/serialization engine lives outside this module; implementations
// register themselves via SetDefaultStore, typically from an init function,
// in the manner of database/sql drivers.
type Store interface {
	Name() string
	Open(path string) (*Document, error)
	Save(doc *Document, path string, opts SaveOptions) error
}

var defaultStore Store = unavailableStore{}

// DefaultStore returns the registered structural tree store.
func DefaultStore() Store { return defaultStore }

// SetDefaultStore registers the store used when callers do not supply one.
func SetDefaultStore(s Store) {
	if s == nil {
		s = unavailableStore{}
	}
	defaultStore = s
}

type unavailableStore struct{}

func (unavailableStore) Name() string { return "unavailable" }

func (unavailableStore) Open(path string) (*Document, error) {
	return nil, fmt.Errorf("open %s: no structural tree store registered", path)
}

func (unavailableStore) Save(_ *Document, path string, _ SaveOptions) error {
	return fmt.Errorf("save %s: no structural tree store registered", path)
}
