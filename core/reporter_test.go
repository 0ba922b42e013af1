package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubPeaks struct{ pending []uint32 }

func (s *stubPeaks) CheckPeak() uint32 {
	if len(s.pending) == 0 {
		return 0
	}
	n := s.pending[0]
	s.pending = s.pending[1:]
	return n
}

func TestReporterAddsExactCount(t *testing.T) {
	src := &stubPeaks{pending: []uint32{3, 0, 1}}
	store := newRecordingStore()
	r := NewReporter(src, store)

	assert.Equal(t, uint32(3), r.DrainAndReport())
	assert.Equal(t, uint32(3), store.totals[SignalSoundDetected])

	assert.Zero(t, r.DrainAndReport())
	assert.Equal(t, 1, store.calls, "an empty drain must not touch the store")

	assert.Equal(t, uint32(1), r.DrainAndReport())
	assert.Equal(t, uint32(4), store.totals[SignalSoundDetected])
	assert.Equal(t, 2, store.calls)
}
