package application

import (
	"sync"
	"time"

	"github.com/bnema/wg-scraper/internal/domain"
)

const DefaultHistorySize = 50

type StatsSnapshot struct {
	TotalRuns        int
	SuccessfulRuns   int
	FailedRuns       int
	TotalNewListings int
	TotalContacted   int
	CurrentlyRunning int
	LastDiscovery    time.Time
	// History is ordered oldest first.
	History []domain.RunRecord
}

// Stats aggregates run outcomes in memory. It is safe for concurrent use.
type Stats struct {
	mu       sync.Mutex
	capacity int
	snapshot StatsSnapshot
}

func NewStats(capacity int) *Stats {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}

	return &Stats{
		capacity: capacity,
		snapshot: StatsSnapshot{History: make([]domain.RunRecord, 0, capacity)},
	}
}

func (s *Stats) Record(record domain.RunRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.TotalRuns++
	if record.Success {
		s.snapshot.SuccessfulRuns++
	} else {
		s.snapshot.FailedRuns++
	}
	s.snapshot.TotalNewListings += record.NewListings
	s.snapshot.TotalContacted += record.Contacted

	if len(s.snapshot.History) == s.capacity {
		copy(s.snapshot.History, s.snapshot.History[1:])
		s.snapshot.History = s.snapshot.History[:s.capacity-1]
	}
	s.snapshot.History = append(s.snapshot.History, record)
}

func (s *Stats) RunStarted() {
	s.mu.Lock()
	s.snapshot.CurrentlyRunning++
	s.mu.Unlock()
}

func (s *Stats) RunFinished() {
	s.mu.Lock()
	if s.snapshot.CurrentlyRunning > 0 {
		s.snapshot.CurrentlyRunning--
	}
	s.mu.Unlock()
}

func (s *Stats) MarkDiscovery(at time.Time) {
	s.mu.Lock()
	s.snapshot.LastDiscovery = at
	s.mu.Unlock()
}

// Snapshot returns a copy that later updates do not affect.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.snapshot
	out.History = make([]domain.RunRecord, len(s.snapshot.History))
	for i, record := range s.snapshot.History {
		record.Issues = append([]domain.StepIssue(nil), record.Issues...)
		out.History[i] = record
	}

	return out
}
