package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type firing struct {
	id TimerID
	at uint32
}

func recordTo(timers *SoftTimers, log *[]firing) TimerHandler {
	return func(id TimerID) {
		*log = append(*log, firing{id: id, at: timers.Now()})
	}
}

func TestSoftTimersPeriodic(t *testing.T) {
	timers := NewSoftTimers(0)
	var log []firing
	require.NoError(t, timers.StartPeriodic(TimerMonitoring, 50, recordTo(timers, &log)))

	timers.Dispatch(49)
	assert.Empty(t, log)

	timers.Dispatch(50)
	timers.Dispatch(100)
	timers.Dispatch(149)
	assert.Equal(t, []firing{{TimerMonitoring, 50}, {TimerMonitoring, 100}}, log)

	timers.StopPeriodic(TimerMonitoring)
	timers.Dispatch(1000)
	assert.Len(t, log, 2)
	assert.False(t, timers.Active(TimerMonitoring))
}

func TestSoftTimersCatchUp(t *testing.T) {
	timers := NewSoftTimers(0)
	count := 0
	require.NoError(t, timers.StartPeriodic(TimerCalibration, 50, func(TimerID) { count++ }))

	timers.Dispatch(220)
	assert.Equal(t, 4, count)

	timers.Dispatch(250)
	assert.Equal(t, 5, count)
}

func TestSoftTimersOneShot(t *testing.T) {
	timers := NewSoftTimers(0)
	var log []firing
	handler := recordTo(timers, &log)

	require.NoError(t, timers.StartOneShot(TimerDrain, 5, handler))
	timers.Dispatch(3)
	// re-arming restarts the interval
	require.NoError(t, timers.StartOneShot(TimerDrain, 5, handler))
	timers.Dispatch(7)
	assert.Empty(t, log)

	timers.Dispatch(8)
	timers.Dispatch(100)
	assert.Equal(t, []firing{{TimerDrain, 8}}, log)
	assert.False(t, timers.Active(TimerDrain))
}

func TestSoftTimersHandlerSwitchesTimers(t *testing.T) {
	timers := NewSoftTimers(0)
	var log []firing
	monitor := recordTo(timers, &log)

	calibTicks := 0
	require.NoError(t, timers.StartPeriodic(TimerCalibration, 10, func(id TimerID) {
		calibTicks++
		if calibTicks == 3 {
			timers.StopPeriodic(TimerCalibration)
			require.NoError(t, timers.StartPeriodic(TimerMonitoring, 20, monitor))
		}
	}))

	for now := uint32(1); now <= 100; now++ {
		timers.Dispatch(now)
	}

	assert.Equal(t, 3, calibTicks)
	assert.False(t, timers.Active(TimerCalibration))
	assert.True(t, timers.Active(TimerMonitoring))
	assert.Equal(t, []firing{
		{TimerMonitoring, 50}, {TimerMonitoring, 70}, {TimerMonitoring, 90},
	}, log)
}

func TestSoftTimersOrdering(t *testing.T) {
	timers := NewSoftTimers(0)
	var log []firing
	handler := recordTo(timers, &log)

	require.NoError(t, timers.StartPeriodic(TimerMonitoring, 50, handler))
	require.NoError(t, timers.StartOneShot(TimerDrain, 5, handler))

	timers.Dispatch(50)
	require.Len(t, log, 2)
	assert.Equal(t, TimerDrain, log[0].id)
	assert.Equal(t, TimerMonitoring, log[1].id)
}

func TestSoftTimersClockWrap(t *testing.T) {
	start := ^uint32(0) - 20
	timers := NewSoftTimers(start)
	count := 0
	require.NoError(t, timers.StartPeriodic(TimerMonitoring, 50, func(TimerID) { count++ }))

	timers.Dispatch(start + 49)
	assert.Zero(t, count)
	timers.Dispatch(start + 50)
	assert.Equal(t, 1, count)
	timers.Dispatch(start + 100)
	assert.Equal(t, 2, count)
}

func TestSoftTimersRejectsBadArguments(t *testing.T) {
	timers := NewSoftTimers(0)
	noop := func(TimerID) {}

	assert.ErrorIs(t, timers.StartPeriodic(TimerMonitoring, 0, noop), ErrInvalidConfig)
	assert.ErrorIs(t, timers.StartOneShot(TimerDrain, 5, nil), ErrInvalidConfig)
	assert.ErrorIs(t, timers.StartPeriodic(TimerID(maxTimers), 5, noop), ErrUnknownTimer)
	assert.ErrorIs(t, timers.StartPeriodic(0, 5, noop), ErrUnknownTimer)
}
