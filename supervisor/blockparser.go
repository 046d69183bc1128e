package supervisor

import (
	"fmt"

	"github.com/casperlabs/highway-era-supervisor/highway/message"
)

// DefaultBlockParser implements BlockParser for the common case where the
// caller already has a normalized message.Message. This core defines no
// wire format of its own, so the integrator's deserialization happens
// upstream of ValidateAndAddBlock. Accepts either a bare message.Message
// or a *message.Message.
func DefaultBlockParser(block interface{}) (message.Message, error) {
	switch b := block.(type) {
	case message.Message:
		return b, nil
	case *message.Message:
		return *b, nil
	default:
		return message.Message{}, fmt.Errorf("supervisor: unsupported block type %T", block)
	}
}
