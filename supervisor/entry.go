package supervisor

import (
	"sync"

	"github.com/casperlabs/highway-era-supervisor/common/hash"
	"github.com/casperlabs/highway-era-supervisor/highway/era"
)

// entry is the in-memory, one-per-loaded-era runtime record. Identity is
// the era's key block hash; external callers only ever see the read-only
// Entry snapshot below, never this type directly.
type entry struct {
	// mu serializes HandleMessage/HandleAgenda calls against this specific
	// runtime -- a runtime's mutating methods must never overlap -- without
	// forcing a single global lock across unrelated eras.
	mu sync.Mutex

	runtime era.EraRuntime

	childrenMu sync.RWMutex
	children   map[hash.Hash]struct{}
}

func newEntry(runtime era.EraRuntime, children []hash.Hash) *entry {
	e := &entry{
		runtime:  runtime,
		children: make(map[hash.Hash]struct{}, len(children)),
	}
	for _, c := range children {
		e.children[c] = struct{}{}
	}
	return e
}

func (e *entry) addChild(h hash.Hash) {
	e.childrenMu.Lock()
	defer e.childrenMu.Unlock()
	e.children[h] = struct{}{}
}

func (e *entry) childList() []hash.Hash {
	e.childrenMu.RLock()
	defer e.childrenMu.RUnlock()
	out := make([]hash.Hash, 0, len(e.children))
	for c := range e.children {
		out = append(out, c)
	}
	return out
}

// Entry is the read-only snapshot of a loaded era runtime entry exposed by
// EraSupervisor.Eras().
type Entry struct {
	KeyBlockHash hash.Hash
	Children     []hash.Hash
}

func (e *entry) snapshot() Entry {
	return Entry{
		KeyBlockHash: e.runtime.Era().KeyBlockHash,
		Children:     e.childList(),
	}
}
