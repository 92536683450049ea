package watch

import (
	"sync"
	"time"
)

// debouncer coalesces bursts of triggers into a single callback fired after
// a quiet interval. Editors and atomic-save tools emit several filesystem
// events per save; only one reload should result.
type debouncer struct {
	delay time.Duration
	kick  chan func()
	stop  chan struct{}
	done  chan struct{}
	once  sync.Once
}

func newDebouncer(delay time.Duration) *debouncer {
	d := &debouncer{
		delay: delay,
		kick:  make(chan func()),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go d.loop()
	return d
}

// trigger schedules fn after the quiet interval; a newer trigger replaces a
// pending one and restarts the interval.
func (d *debouncer) trigger(fn func()) {
	select {
	case d.kick <- fn:
	case <-d.done:
	}
}

func (d *debouncer) loop() {
	defer close(d.done)

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending func()
	)
	for {
		select {
		case fn := <-d.kick:
			pending = fn
			if timer == nil {
				timer = time.NewTimer(d.delay)
			} else {
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(d.delay)
			}
			fire = timer.C

		case <-fire:
			fn := pending
			pending = nil
			timer = nil
			fire = nil
			if fn != nil {
				fn()
			}

		case <-d.stop:
			// Pending work is dropped on shutdown.
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// stopAndWait shuts the debouncer down and waits for the loop to exit, up
// to the given timeout.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.once.Do(func() { close(d.stop) })
	select {
	case <-d.done:
	case <-time.After(timeout):
	}
}
