package session

import "time"

func (m *Manager) EvictIdle(now time.Time) int {
	return m.evictIdle(now)
}
