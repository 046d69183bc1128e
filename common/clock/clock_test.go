package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTickSub(t *testing.T) {
	require.Equal(t, Tick(5), Tick(10).Sub(5))
	require.Equal(t, Tick(0), Tick(5).Sub(10), "Sub saturates at zero rather than wrapping")
	require.Equal(t, Tick(0), Tick(5).Sub(5))
}

func TestTickBytesBigEndian(t *testing.T) {
	b := Tick(1).Bytes()
	require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 1}, b)
}

func TestHighwayConfRoundLength(t *testing.T) {
	conf := HighwayConf{InitRoundExponent: 4}
	require.Equal(t, Tick(16), conf.RoundLength(4))
	require.Equal(t, Tick(1), conf.RoundLength(0))
}

func TestHighwayConfTicksToDuration(t *testing.T) {
	conf := HighwayConf{TickUnit: 500 * time.Millisecond}
	require.Equal(t, 2*time.Second, conf.TicksToDuration(4))
}

func TestFakeSource(t *testing.T) {
	s := NewFakeSource(10)
	require.Equal(t, Tick(10), s.Now())
	require.Equal(t, Tick(15), s.Advance(5))
	require.Equal(t, Tick(15), s.Now())
	s.Set(100)
	require.Equal(t, Tick(100), s.Now())
}

func TestWallClockSource(t *testing.T) {
	conf := HighwayConf{TickUnit: 10 * time.Millisecond}
	src := WallClockSource{Conf: conf, Epoch: time.Now().Add(-105 * time.Millisecond)}
	require.Equal(t, Tick(10), src.Now())
}

func TestWallClockSourceZeroTickUnit(t *testing.T) {
	src := WallClockSource{Conf: HighwayConf{}, Epoch: time.Now()}
	require.Equal(t, Tick(0), src.Now())
}
