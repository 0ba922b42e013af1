package core

// PeakSource yields the peaks counted since it was last asked.
type PeakSource interface {
	CheckPeak() uint32
}

// Reporter moves peak counts from the detector into the signal store. It
// must not run at a higher interrupt priority than the monitoring tick.
type Reporter struct {
	src   PeakSource
	store SignalStore
}

// NewReporter returns a reporter that drains src into store.
func NewReporter(src PeakSource, store SignalStore) *Reporter {
	return &Reporter{src: src, store: store}
}

// DrainAndReport adds the pending peak count to SignalSoundDetected and
// returns it. Nothing is written when there are no new peaks.
func (r *Reporter) DrainAndReport() uint32 {
	n := r.src.CheckPeak()
	if n > 0 {
		r.store.Increment(SignalSoundDetected, n)
	}
	return n
}
