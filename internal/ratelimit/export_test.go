package ratelimit

import "time"

func (l *Limiter) SetNow(now func() time.Time) { l.now = now }
