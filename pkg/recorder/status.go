package recorder

import "time"

// Status is a snapshot for status displays.
// After a session ends it keeps the numbers of that session.
type Status struct {
	State   State         `json:"state"`
	Elapsed time.Duration `json:"elapsed"`

	FramesCaptured uint64 `json:"frames_captured"`
	FramesDropped  uint64 `json:"frames_dropped"`
	FramesEncoded  uint64 `json:"frames_encoded"`

	Session string `json:"session,omitempty"`
	Output  string `json:"output,omitempty"`
	// Starting is the time left before the first frame.
	Starting time.Duration `json:"starting,omitempty"`
	// Failure is the reason of an aborted session.
	Failure error `json:"-"`
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{State: c.state}
	s := c.s
	if s == nil {
		return st
	}
	now := c.now()
	st.Session = s.id
	st.Output = s.output
	st.Elapsed = s.elapsed(now)
	st.FramesCaptured = s.captured.Load()
	st.FramesDropped = s.buf.Stats().Dropped
	st.FramesEncoded = s.encoded.Load()
	st.Failure = s.failure
	if c.state == Recording && now.Before(s.startedAt) {
		st.Starting = s.startedAt.Sub(now)
	}
	if c.state == Idle && s.result.Output != "" {
		st.Output = s.result.Output
	}
	return st
}
