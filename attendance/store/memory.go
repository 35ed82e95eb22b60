// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/weekiatscis/GymBot/attendance"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu    sync.RWMutex
	facts map[factKey]entry
	seq   int // write counter, breaks RecordedAt ties in recency order
}

type factKey struct {
	UserID int64
	Date   string
}

type entry struct {
	fact attendance.AttendanceFact
	seq  int
}

func NewMemory() *Memory {
	return &Memory{facts: make(map[factKey]entry)}
}

// Upsert replaces any existing fact for the same (user_id, date).
func (m *Memory) Upsert(_ context.Context, fact attendance.AttendanceFact) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	k := factKey{UserID: fact.UserID, Date: fact.Date.String()}
	m.facts[k] = entry{fact: fact, seq: m.seq}
	return nil
}

func (m *Memory) QueryRange(_ context.Context, from, to attendance.CivilDate, onlyAttended bool) ([]attendance.AttendanceFact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []attendance.AttendanceFact
	for _, e := range m.facts {
		d := e.fact.Date
		if d.Before(from) || d.After(to) {
			continue
		}
		if onlyAttended && !e.fact.Attended {
			continue
		}
		result = append(result, e.fact)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].UserName < result[j].UserName
	})
	return result, nil
}

func (m *Memory) RecentUserNames(_ context.Context, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]entry, 0, len(m.facts))
	for _, e := range m.facts {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].fact.RecordedAt.Equal(entries[j].fact.RecordedAt) {
			return entries[i].fact.RecordedAt.After(entries[j].fact.RecordedAt)
		}
		return entries[i].seq > entries[j].seq
	})
	if limit < len(entries) {
		entries = entries[:limit]
	}

	seen := make(map[string]bool, len(entries))
	var names []string
	for _, e := range entries {
		if !seen[e.fact.UserName] {
			seen[e.fact.UserName] = true
			names = append(names, e.fact.UserName)
		}
	}
	return names, nil
}

func (m *Memory) TodayAttendees(_ context.Context, date attendance.CivilDate) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	var names []string
	for _, e := range m.facts {
		if e.fact.Date.Equal(date) && !seen[e.fact.UserName] {
			seen[e.fact.UserName] = true
			names = append(names, e.fact.UserName)
		}
	}
	sort.Strings(names)
	return names, nil
}
