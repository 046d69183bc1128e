// Package clock implements the conversions between wall-clock instants and
// the integer logical ticks the era supervisor schedules against.
package clock

import (
	"encoding/binary"
	"time"
)

// Tick is an integer logical-clock unit. Conversion to wall-clock is fixed
// by the configured TickUnit.
type Tick uint64

// Sub returns t - other, saturating at zero rather than wrapping, since a
// negative delay has no meaning for scheduling purposes.
func (t Tick) Sub(other Tick) Tick {
	if t <= other {
		return 0
	}
	return t - other
}

// Bytes returns the big-endian byte encoding of t, for use as hash input.
func (t Tick) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(t))
	return b[:]
}

// Source supplies the current tick, decoupled from wall-clock time so
// tests can drive it deterministically.
type Source interface {
	Now() Tick
}

// HighwayConf holds the round-length/tick configuration shared by every
// runtime and by the supervisor's scheduling arithmetic.
type HighwayConf struct {
	// TickUnit is the wall-clock duration of a single tick.
	TickUnit time.Duration
	// InitRoundExponent sets the initial round length as 2^InitRoundExponent
	// ticks, per the Highway round-length-doubling/halving schedule.
	InitRoundExponent uint
}

// RoundLength returns the length, in ticks, of a round at the given
// exponent.
func (c HighwayConf) RoundLength(exponent uint) Tick {
	return Tick(1) << exponent
}

// TicksToDuration converts a tick count into a wall-clock duration using
// the configured TickUnit.
func (c HighwayConf) TicksToDuration(ticks Tick) time.Duration {
	return time.Duration(ticks) * c.TickUnit
}

// WallClockSource is a Source backed by the real wall clock, converting
// time.Now() into ticks via the configured TickUnit. Used in production;
// tests use a fake Source instead.
type WallClockSource struct {
	Conf  HighwayConf
	Epoch time.Time
}

// Now returns the current tick, rounding the elapsed wall-clock time since
// Epoch down to whole ticks.
func (s WallClockSource) Now() Tick {
	if s.Conf.TickUnit <= 0 {
		return 0
	}
	elapsed := time.Since(s.Epoch)
	if elapsed < 0 {
		return 0
	}
	return Tick(elapsed / s.Conf.TickUnit)
}

// FakeSource is a Source with a directly settable tick, for tests.
type FakeSource struct {
	tick Tick
}

// NewFakeSource constructs a FakeSource starting at the given tick.
func NewFakeSource(start Tick) *FakeSource {
	return &FakeSource{tick: start}
}

// Now returns the current fake tick.
func (s *FakeSource) Now() Tick {
	return s.tick
}

// Advance moves the fake tick forward by delta and returns the new value.
func (s *FakeSource) Advance(delta Tick) Tick {
	s.tick += delta
	return s.tick
}

// Set pins the fake tick to an exact value.
func (s *FakeSource) Set(t Tick) {
	s.tick = t
}
