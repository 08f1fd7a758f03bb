package dedupe

import "time"

func (c *Cache) SetNow(now func() time.Time) { c.now = now }
