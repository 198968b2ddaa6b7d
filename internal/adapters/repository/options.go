// Package repository defines the event and signal store interfaces and
// their in-memory implementations.
package repository

import "time"

// SignalStoreOption applies a configuration option to the InMemorySignalStore.
type SignalStoreOption func(*InMemorySignalStore)

// WithPositiveSignalCap bounds how many active positive signals the
// explanation path scans per user.
func WithPositiveSignalCap(n int) SignalStoreOption {
	return func(s *InMemorySignalStore) {
		if n > 0 {
			s.positiveCap = n
		}
	}
}

// WithSignalClock overrides the clock used for signal timestamps.
func WithSignalClock(now func() time.Time) SignalStoreOption {
	return func(s *InMemorySignalStore) {
		if now != nil {
			s.now = now
		}
	}
}

// EventStoreOption applies a configuration option to the InMemoryEventStore.
type EventStoreOption func(*InMemoryEventStore)

// WithEventClock overrides the clock used for moderation timestamps.
func WithEventClock(now func() time.Time) EventStoreOption {
	return func(s *InMemoryEventStore) {
		if now != nil {
			s.now = now
		}
	}
}
