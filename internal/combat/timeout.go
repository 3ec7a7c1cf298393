package combat

import "time"

// armTimerLocked (re)starts the inactivity timer for the current turn.
// The callback carries the turn number it was armed for, so a timer that
// fires after a later turn was accepted is ignored.
func (s *Session) armTimerLocked() {
	s.stopTimerLocked()
	if s.turnTimeout <= 0 || s.state != StateActive {
		return
	}
	turn := s.turnNumber
	s.timer = time.AfterFunc(s.turnTimeout, func() { s.expire(turn) })
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// expire forfeits the turn owner when it has not acted since turn.
func (s *Session) expire(turn int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive || s.turnNumber != turn {
		return
	}
	loser := s.turnOwner
	s.concludeLocked(loser.Other(), ReasonTimeout, describeForfeit(s.sides[loser.Index()], ReasonTimeout))
}
