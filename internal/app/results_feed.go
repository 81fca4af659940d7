package app

import (
	"sync"

	"company-quiz-service/internal/domain"
)

// ResultsFeed fans recorded participation results out to per-company subscribers.
type ResultsFeed struct {
	mu          sync.RWMutex
	subscribers map[int64]map[chan domain.ParticipationResult]struct{}
}

func NewResultsFeed() *ResultsFeed {
	return &ResultsFeed{
		subscribers: make(map[int64]map[chan domain.ParticipationResult]struct{}),
	}
}

// Subscribe returns a channel of results for one company.
// The caller must invoke the returned cancel function to avoid leaks.
func (f *ResultsFeed) Subscribe(companyID int64) (<-chan domain.ParticipationResult, func()) {
	ch := make(chan domain.ParticipationResult, 8)

	f.mu.Lock()
	subs, ok := f.subscribers[companyID]
	if !ok {
		subs = make(map[chan domain.ParticipationResult]struct{})
		f.subscribers[companyID] = subs
	}
	subs[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		subs := f.subscribers[companyID]
		if _, ok := subs[ch]; !ok {
			return
		}
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(f.subscribers, companyID)
		}
	}
	return ch, cancel
}

// Publish delivers a result to every subscriber of its company without blocking.
func (f *ResultsFeed) Publish(result domain.ParticipationResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers[result.CompanyID] {
		select {
		case ch <- result:
		default:
			// slow subscriber: drop its oldest pending result
			select {
			case <-ch:
			default:
			}
			ch <- result
		}
	}
}

// Subscribers reports how many subscribers a company has.
func (f *ResultsFeed) Subscribers(companyID int64) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers[companyID])
}
