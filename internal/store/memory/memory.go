package memory

import (
	"context"
	"sync"

	"loanschedule/internal/core"
	"loanschedule/internal/store"
)

// Store keeps the record in process memory. Nothing survives the run.
type Store struct {
	mu       sync.Mutex
	record   *store.Record
	schedule core.Schedule
	saves    int
}

func New() *Store {
	return &Store{}
}

// Save replaces the stored record and schedule.
func (s *Store) Save(_ context.Context, r store.Record, sched core.Schedule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := r
	s.record = &rec
	s.schedule = core.Schedule{
		Params: sched.Params,
		Rows:   append([]core.ScheduleRow(nil), sched.Rows...),
	}
	s.saves++
	return nil
}

func (s *Store) Load(_ context.Context) (store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil {
		return store.Record{}, store.ErrNotFound
	}
	return *s.record, nil
}

// LoadRows returns the rows saved with the record.
func (s *Store) LoadRows(_ context.Context) ([]core.ScheduleRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil {
		return nil, store.ErrNotFound
	}
	return append([]core.ScheduleRow(nil), s.schedule.Rows...), nil
}

// Schedule returns a copy of the last saved schedule.
func (s *Store) Schedule() core.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Schedule{
		Params: s.schedule.Params,
		Rows:   append([]core.ScheduleRow(nil), s.schedule.Rows...),
	}
}

// Saves reports how many times Save succeeded.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *Store) Close() error {
	return nil
}
