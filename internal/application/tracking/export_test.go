package tracking

import "time"

// SetClock fija el reloj del coordinador en los tests.
func (c *Coordinator) SetClock(now func() time.Time) { c.now = now }

// SetClock fija el reloj del seguidor en los tests.
func (f *Feed) SetClock(now func() time.Time) { f.now = now }
