// Package simple implements a minimal ForkChoiceManager that only records
// the latest message observed per era. It makes descendant-propagation
// behavior independently testable without a real fork-choice algorithm,
// which is a separate, pluggable concern from message propagation.
package simple

import (
	"context"
	"sync"

	"github.com/casperlabs/highway-era-supervisor/common/hash"
	"github.com/casperlabs/highway-era-supervisor/common/logging"
	"github.com/casperlabs/highway-era-supervisor/highway/api"
	"github.com/casperlabs/highway-era-supervisor/highway/message"
)

// ForkChoice is a recording-only ForkChoiceManager.
type ForkChoice struct {
	logger *logging.Logger

	mu      sync.Mutex
	latest  map[hash.Hash]map[message.ValidatorID]message.Message
	updates int
}

var _ api.ForkChoiceManager = (*ForkChoice)(nil)

// New constructs an empty ForkChoice.
func New() *ForkChoice {
	return &ForkChoice{
		logger: logging.GetLogger("forkchoice/simple"),
		latest: make(map[hash.Hash]map[message.ValidatorID]message.Message),
	}
}

// UpdateLatestMessage records m as the latest message from m.ValidatorID
// observed in era eraKeyBlockHash. Idempotent: re-recording the same
// message is a no-op observationally (it simply overwrites with an
// identical value).
func (f *ForkChoice) UpdateLatestMessage(ctx context.Context, eraKeyBlockHash hash.Hash, m message.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()

	byValidator, ok := f.latest[eraKeyBlockHash]
	if !ok {
		byValidator = make(map[message.ValidatorID]message.Message)
		f.latest[eraKeyBlockHash] = byValidator
	}
	byValidator[m.ValidatorID] = m
	f.updates++
}

// LatestMessage returns the last message recorded for validator in era, if
// any. Exposed for tests that assert on the propagation contract.
func (f *ForkChoice) LatestMessage(eraKeyBlockHash hash.Hash, validator message.ValidatorID) (message.Message, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	byValidator, ok := f.latest[eraKeyBlockHash]
	if !ok {
		return message.Message{}, false
	}
	m, ok := byValidator[validator]
	return m, ok
}

// UpdateCount returns the total number of UpdateLatestMessage calls
// observed so far. Exposed for tests asserting on descendant fan-out call
// counts.
func (f *ForkChoice) UpdateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates
}
