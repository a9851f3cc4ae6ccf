package defrag

// DefaultFrameDelay is the number of frames that must pass after the most recent
// free before defragmentation runs
const DefaultFrameDelay = 5

// Scheduler decides when an incremental defragmentation pass is worth running. Frees
// arm the scheduler and reset its timer; once FrameDelay frames have gone by without
// another free, Tick reports that a pass is due.
//
// Scheduler is not synchronized; its owner's lock guards it.
type Scheduler struct {
	FrameDelay int

	armed  bool
	frames int
}

// RequestDefrag records that a resource was freed this frame
func (s *Scheduler) RequestDefrag() {
	s.armed = true
	s.frames = 0
}

// Tick advances the scheduler by one frame and returns true if a defragmentation pass
// should run this frame
func (s *Scheduler) Tick() bool {
	if !s.armed {
		return false
	}

	delay := s.FrameDelay
	if delay <= 0 {
		delay = DefaultFrameDelay
	}

	s.frames++
	return s.frames > delay
}

// Done disarms the scheduler, usually because no fragmented allocation remains
func (s *Scheduler) Done() {
	s.armed = false
	s.frames = 0
}

// Armed returns true if a free has happened since the scheduler was last disarmed
func (s *Scheduler) Armed() bool {
	return s.armed
}
