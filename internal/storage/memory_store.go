package storage

import (
	"sort"
	"sync"
	"time"

	"coachmetrics/internal/models"
)

// MemoryStore holds the materialized event collections between ingests.
// Writers replace whole collections; readers get copies, so the
// aggregation core always works on immutable snapshots.
type MemoryStore struct {
	mu         sync.RWMutex
	calls      []models.CallBooking
	sales      []models.Sale
	videos     []models.YouTubeVideo
	campaigns  []models.EmailCampaign
	traffic    []models.TrafficSource
	visitors   map[string]int
	lastIngest time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		visitors: make(map[string]int),
	}
}

func (s *MemoryStore) StoreCalls(records []models.CallBooking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = records
	s.lastIngest = time.Now()
}

func (s *MemoryStore) StoreSales(records []models.Sale) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales = records
}

func (s *MemoryStore) StoreVideos(records []models.YouTubeVideo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videos = records
}

func (s *MemoryStore) StoreCampaigns(records []models.EmailCampaign) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.campaigns = records
}

func (s *MemoryStore) StoreTraffic(records []models.TrafficSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.traffic = records
}

// StoreVisitors replaces the month -> website visitor series.
func (s *MemoryStore) StoreVisitors(byMonth map[string]int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visitors = make(map[string]int, len(byMonth))
	for month, count := range byMonth {
		s.visitors[month] = count
	}
}

func (s *MemoryStore) GetCalls() []models.CallBooking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CallBooking, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *MemoryStore) GetSales() []models.Sale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Sale, len(s.sales))
	copy(out, s.sales)
	return out
}

func (s *MemoryStore) GetVideos() []models.YouTubeVideo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.YouTubeVideo, len(s.videos))
	copy(out, s.videos)
	return out
}

func (s *MemoryStore) GetCampaigns() []models.EmailCampaign {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.EmailCampaign, len(s.campaigns))
	copy(out, s.campaigns)
	return out
}

func (s *MemoryStore) GetTraffic() []models.TrafficSource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.TrafficSource, len(s.traffic))
	copy(out, s.traffic)
	return out
}

func (s *MemoryStore) GetVisitors() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int, len(s.visitors))
	for month, count := range s.visitors {
		out[month] = count
	}
	return out
}

// Months returns the sorted distinct set of YYYY-MM keys observed across
// calls, sales and videos. Sorted ascending, so the last element is the
// latest month.
func (s *MemoryStore) Months() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, call := range s.calls {
		seen[models.MonthOf(call.BookedAt)] = struct{}{}
	}
	for _, sale := range s.sales {
		seen[models.MonthOf(sale.ClosedAt)] = struct{}{}
	}
	for _, video := range s.videos {
		seen[models.MonthOf(video.PublishedAt)] = struct{}{}
	}

	months := make([]string, 0, len(seen))
	for month := range seen {
		months = append(months, month)
	}
	sort.Strings(months)
	return months
}

func (s *MemoryStore) LastIngest() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastIngest
}

func (s *MemoryStore) HasData() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.calls) > 0 || len(s.videos) > 0
}
