package core

// softTimer is one scheduled timer slot.
type softTimer struct {
	id       TimerID
	wake     uint32
	interval uint32
	periodic bool
	handler  TimerHandler
	next     *softTimer
}

// SoftTimers implements TimerDriver with a list of software timers kept
// sorted by wake time (as Klipper's sched_add_timer does). Dispatch runs
// the due handlers; targets call it from the main loop and tests call it
// with a synthetic clock.
type SoftTimers struct {
	slots [maxTimers]softTimer
	list  *softTimer
	now   uint32
}

// NewSoftTimers returns an empty timer set whose clock starts at now.
func NewSoftTimers(now uint32) *SoftTimers {
	return &SoftTimers{now: now}
}

// Now returns the time of the last Dispatch.
func (s *SoftTimers) Now() uint32 {
	return s.now
}

// StartPeriodic implements TimerDriver.
func (s *SoftTimers) StartPeriodic(id TimerID, intervalMS uint32, handler TimerHandler) error {
	return s.arm(id, intervalMS, true, handler)
}

// StartOneShot implements TimerDriver. Re-arming a pending one-shot restarts
// its interval.
func (s *SoftTimers) StartOneShot(id TimerID, intervalMS uint32, handler TimerHandler) error {
	return s.arm(id, intervalMS, false, handler)
}

// StopPeriodic implements TimerDriver.
func (s *SoftTimers) StopPeriodic(id TimerID) {
	if int(id) >= maxTimers {
		return
	}
	state := disableInterrupts()
	s.unlink(&s.slots[id])
	restoreInterrupts(state)
}

// Active reports whether timer id is scheduled.
func (s *SoftTimers) Active(id TimerID) bool {
	if int(id) >= maxTimers {
		return false
	}
	for t := s.list; t != nil; t = t.next {
		if t == &s.slots[id] {
			return true
		}
	}
	return false
}

func (s *SoftTimers) arm(id TimerID, intervalMS uint32, periodic bool, handler TimerHandler) error {
	if int(id) >= maxTimers || id == 0 {
		return ErrUnknownTimer
	}
	if intervalMS == 0 || handler == nil {
		return ErrInvalidConfig
	}

	state := disableInterrupts()
	defer restoreInterrupts(state)

	t := &s.slots[id]
	s.unlink(t)
	t.id = id
	t.interval = intervalMS
	t.periodic = periodic
	t.handler = handler
	t.wake = s.now + intervalMS
	s.insert(t)
	return nil
}

// insert adds t in sorted order by wake time
func (s *SoftTimers) insert(t *softTimer) {
	if s.list == nil || !timeReached(t.wake, s.list.wake) {
		t.next = s.list
		s.list = t
		return
	}

	current := s.list
	for current.next != nil && timeReached(t.wake, current.next.wake) {
		current = current.next
	}

	t.next = current.next
	current.next = t
}

func (s *SoftTimers) unlink(t *softTimer) {
	if s.list == t {
		s.list = t.next
		t.next = nil
		return
	}
	for p := s.list; p != nil; p = p.next {
		if p.next == t {
			p.next = t.next
			t.next = nil
			return
		}
	}
}

// Dispatch advances the clock to now and runs every due handler in wake
// order. A periodic timer that fell behind fires once per missed interval.
// Handlers may start or stop any timer, including their own.
func (s *SoftTimers) Dispatch(now uint32) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	s.now = now
	for s.list != nil && timeReached(now, s.list.wake) {
		t := s.list
		s.list = t.next
		t.next = nil

		if t.periodic {
			t.wake += t.interval
			s.insert(t)
		}
		t.handler(t.id)
	}
}
