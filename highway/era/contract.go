package era

import (
	"github.com/casperlabs/highway-era-supervisor/highway/agenda"
	"github.com/casperlabs/highway-era-supervisor/highway/api"
	"github.com/casperlabs/highway-era-supervisor/highway/event"
	"github.com/casperlabs/highway-era-supervisor/highway/message"
)

// EraRuntime is the per-era state-machine contract. *Runtime implements
// it; the supervisor depends on this interface, not the concrete type, so
// tests can substitute a scripted fake.
type EraRuntime interface {
	InitAgenda() agenda.Agenda
	Validate(m message.Message) error
	HandleMessage(m message.Message) []event.Event
	HandleAgenda(action agenda.Action) ([]event.Event, agenda.Agenda)
	Era() api.Era
}

var _ EraRuntime = (*Runtime)(nil)
