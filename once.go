package main

import (
	"sync"
	"sync/atomic"
	"time"
)

// Once runs f after calls to Reset settle for delay, and at least once a
// day. A Reset after f ran arms it again.
type Once struct {
	f     func()
	delay time.Duration
	t     *time.Timer
	tm    sync.Mutex
	tr    time.Time
	m     sync.Mutex
	done  uint32
}

func NewOnce(f func(), delay time.Duration) *Once {
	o := &Once{
		f:     f,
		delay: delay,
	}
	o.t = time.AfterFunc(24*time.Hour, o.Sure)
	return o
}

func (o *Once) Sure() {
	if atomic.LoadUint32(&o.done) == 1 {
		return
	}
	// Slow-path.
	o.m.Lock()
	defer o.m.Unlock()
	if atomic.LoadUint32(&o.done) == 0 {
		defer atomic.StoreUint32(&o.done, 1)
		o.f()
	}
}

func (o *Once) Reset() {
	atomic.StoreUint32(&o.done, 0)
	now := time.Now()
	o.tm.Lock()
	defer o.tm.Unlock()
	if now.Sub(o.tr) > o.delay/4 {
		o.tr = now
		o.t.Reset(o.delay)
	}
}

func (o *Once) Stop() {
	o.t.Stop()
}
