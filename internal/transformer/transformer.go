package transformer

import (
	"coachmetrics/internal/models"

	"github.com/sirupsen/logrus"
)

// Transformer sanitizes records fetched from live integrations before
// they reach the store. The aggregation core assumes well-formed input;
// shape enforcement happens here at the boundary. Mock data is generated
// well-formed and skips this pass.
type Transformer struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *Transformer {
	return &Transformer{logger: logger}
}

var validStatuses = map[string]struct{}{
	models.CallStatusBooked:    {},
	models.CallStatusAccepted:  {},
	models.CallStatusNoShow:    {},
	models.CallStatusCancelled: {},
}

// SanitizeCalls drops bookings without an ID or timestamp and maps
// unknown statuses onto "booked".
func (t *Transformer) SanitizeCalls(records []models.CallBooking) []models.CallBooking {
	out := make([]models.CallBooking, 0, len(records))
	dropped := 0
	for _, r := range records {
		if r.ID == "" || r.BookedAt.IsZero() {
			dropped++
			continue
		}
		if _, ok := validStatuses[r.Status]; !ok {
			r.Status = models.CallStatusBooked
		}
		out = append(out, r)
	}
	if dropped > 0 {
		t.logger.WithField("dropped", dropped).Warn("Dropped malformed call bookings")
	}
	return out
}

// SanitizeSales drops sales without an ID, call reference or timestamp,
// clamps negative amounts to 0 and maps unknown types onto paid-in-full.
func (t *Transformer) SanitizeSales(records []models.Sale) []models.Sale {
	out := make([]models.Sale, 0, len(records))
	dropped := 0
	for _, r := range records {
		if r.ID == "" || r.CallID == "" || r.ClosedAt.IsZero() {
			dropped++
			continue
		}
		if r.Amount < 0 {
			r.Amount = 0
		}
		if r.Type != models.SaleTypePaidInFull && r.Type != models.SaleTypeInstallment {
			r.Type = models.SaleTypePaidInFull
		}
		out = append(out, r)
	}
	if dropped > 0 {
		t.logger.WithField("dropped", dropped).Warn("Dropped malformed sales")
	}
	return out
}

// SanitizeVideos drops videos without an ID or publish date, clamps
// negative counters to 0 and restores the funnel ordering invariants
// (accepted <= booked, closed <= accepted).
func (t *Transformer) SanitizeVideos(records []models.YouTubeVideo) []models.YouTubeVideo {
	out := make([]models.YouTubeVideo, 0, len(records))
	dropped := 0
	for _, r := range records {
		if r.ID == "" || r.PublishedAt.IsZero() {
			dropped++
			continue
		}
		r.Views = clampInt(r.Views)
		r.UniqueViews = clampInt(r.UniqueViews)
		r.LeadsGenerated = clampInt(r.LeadsGenerated)
		r.CallsBooked = clampInt(r.CallsBooked)
		r.CallsAccepted = clampInt(r.CallsAccepted)
		r.SalesClosed = clampInt(r.SalesClosed)
		if r.CallsAccepted > r.CallsBooked {
			r.CallsAccepted = r.CallsBooked
		}
		if r.SalesClosed > r.CallsAccepted {
			r.SalesClosed = r.CallsAccepted
		}
		out = append(out, r)
	}
	if dropped > 0 {
		t.logger.WithField("dropped", dropped).Warn("Dropped malformed videos")
	}
	return out
}

func clampInt(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
