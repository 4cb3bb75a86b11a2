// Package scheduling tracks which (doctor, date, time) slots are occupied and
// arbitrates occupy/release mutations for the reservation flow.
package scheduling

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"
)

var (
	// ErrAlreadyOccupied is returned by Occupy when the slot is already taken.
	// Reaching a caller past the coordinator's availability check indicates a
	// broken exclusion region, not a user error.
	ErrAlreadyOccupied = errors.New("slot already occupied")

	// ErrInvalidSlotKey is returned when the date or time label is malformed
	ErrInvalidSlotKey = errors.New("invalid slot date or time")
)

// Time labels are flat strings like "10:00 AM"; the availability calendar
// that generates them lives in the UI/config layer.
var timeLabelPattern = regexp.MustCompile(`^(0?[1-9]|1[0-2]):[0-5][0-9] (AM|PM)$`)

// ValidateSlotKey checks the slot key grammar: an ISO calendar date and a
// 12-hour clock label.
func ValidateSlotKey(slotDate, slotTime string) error {
	if _, err := time.Parse("2006-01-02", slotDate); err != nil {
		return fmt.Errorf("%w: date %q", ErrInvalidSlotKey, slotDate)
	}
	if !timeLabelPattern.MatchString(slotTime) {
		return fmt.Errorf("%w: time %q", ErrInvalidSlotKey, slotTime)
	}
	return nil
}

// SlotKey returns the canonical lock key for a reservable unit.
func SlotKey(doctorID, slotDate, slotTime string) string {
	return doctorID + "|" + slotDate + "|" + slotTime
}

// SlotIndex answers occupancy queries and applies occupy/release mutations.
// Occupy must be atomic (first caller wins); Release must be idempotent so a
// cancellation retried after a partial failure cannot fail on second attempt.
type SlotIndex interface {
	IsOccupied(ctx context.Context, doctorID, slotDate, slotTime string) (bool, error)
	Occupy(ctx context.Context, doctorID, slotDate, slotTime string) error
	Release(ctx context.Context, doctorID, slotDate, slotTime string) error
	// OccupiedSlots returns the doctor's date -> occupied time labels mapping.
	OccupiedSlots(ctx context.Context, doctorID string) (map[string][]string, error)
}

// InMemorySlotIndex keeps occupancy in process memory. Used by tests and
// single-node dev setups.
type InMemorySlotIndex struct {
	mu sync.RWMutex
	// doctorID -> slotDate -> set of time labels
	slots map[string]map[string]map[string]struct{}
}

// NewInMemorySlotIndex creates an empty in-memory slot index.
func NewInMemorySlotIndex() *InMemorySlotIndex {
	return &InMemorySlotIndex{
		slots: make(map[string]map[string]map[string]struct{}),
	}
}

// IsOccupied reports whether the time label is taken for the doctor's date.
func (s *InMemorySlotIndex) IsOccupied(ctx context.Context, doctorID, slotDate, slotTime string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	times, ok := s.slots[doctorID][slotDate]
	if !ok {
		return false, nil
	}
	_, occupied := times[slotTime]
	return occupied, nil
}

// Occupy marks the slot taken, failing if another booking got there first.
func (s *InMemorySlotIndex) Occupy(ctx context.Context, doctorID, slotDate, slotTime string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dates, ok := s.slots[doctorID]
	if !ok {
		dates = make(map[string]map[string]struct{})
		s.slots[doctorID] = dates
	}
	times, ok := dates[slotDate]
	if !ok {
		times = make(map[string]struct{})
		dates[slotDate] = times
	}
	if _, taken := times[slotTime]; taken {
		return ErrAlreadyOccupied
	}
	times[slotTime] = struct{}{}
	return nil
}

// Release frees the slot. Releasing an absent slot is a no-op.
func (s *InMemorySlotIndex) Release(ctx context.Context, doctorID, slotDate, slotTime string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	times, ok := s.slots[doctorID][slotDate]
	if !ok {
		return nil
	}
	delete(times, slotTime)
	if len(times) == 0 {
		delete(s.slots[doctorID], slotDate)
	}
	return nil
}

// OccupiedSlots snapshots the doctor's occupancy map.
func (s *InMemorySlotIndex) OccupiedSlots(ctx context.Context, doctorID string) (map[string][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]string)
	for date, times := range s.slots[doctorID] {
		labels := make([]string, 0, len(times))
		for label := range times {
			labels = append(labels, label)
		}
		out[date] = labels
	}
	return out, nil
}
