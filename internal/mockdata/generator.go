package mockdata

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"coachmetrics/internal/models"
)

// Dataset is one coherent generated history, shaped exactly like the
// normalized output of the real integrations.
type Dataset struct {
	Calls     []models.CallBooking
	Sales     []models.Sale
	Videos    []models.YouTubeVideo
	Campaigns []models.EmailCampaign
	Traffic   []models.TrafficSource
	Visitors  map[string]int
}

// Generator produces the mock history served when no API credentials
// are configured. The same seed yields the same dataset, so local runs
// and tests are reproducible.
type Generator struct {
	rng    *rand.Rand
	months int
}

func NewGenerator(seed int64, months int) *Generator {
	if months < 1 {
		months = 1
	}
	return &Generator{
		rng:    rand.New(rand.NewSource(seed)),
		months: months,
	}
}

var countries = []string{"US", "US", "US", "CA", "GB", "AU", "DE", "AE"}

var leadSources = []string{"youtube", "email", "referral", "organic"}

var videoTopics = []string{
	"How I Signed 10 Clients in 30 Days",
	"The Coaching Funnel Nobody Talks About",
	"Pricing High-Ticket Offers",
	"My Exact Discovery Call Script",
	"YouTube Leads on Autopilot",
	"Why Your Show-Up Rate Is Killing You",
}

func (g *Generator) id() string {
	// uuid seeded from the generator's rng keeps IDs reproducible too
	u, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		return uuid.NewString()
	}
	return u.String()
}

func (g *Generator) between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.rng.Intn(hi-lo+1)
}

func (g *Generator) pick(list []string) string {
	return list[g.rng.Intn(len(list))]
}

// Generate builds the full history, oldest month first. Later months
// trend upward so the dashboard shows growth instead of noise.
func (g *Generator) Generate() Dataset {
	ds := Dataset{Visitors: make(map[string]int)}

	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(g.months - 1), 0)

	for i := 0; i < g.months; i++ {
		monthStart := start.AddDate(0, i, 0)
		growth := 1.0 + float64(i)*0.08
		g.generateMonth(&ds, monthStart, growth)
	}

	ds.Traffic = g.generateTraffic(ds)
	return ds
}

func (g *Generator) generateMonth(ds *Dataset, monthStart time.Time, growth float64) {
	month := models.MonthOf(monthStart)

	videoCount := g.between(2, 4)
	monthViews := 0
	videoIDs := make([]string, 0, videoCount)
	for v := 0; v < videoCount; v++ {
		views := int(float64(g.between(8000, 30000)) * growth)
		monthViews += views
		video := models.YouTubeVideo{
			ID:          g.id(),
			Title:       fmt.Sprintf("%s (Ep. %d)", g.pick(videoTopics), g.between(1, 99)),
			PublishedAt: g.dayIn(monthStart),
			Views:       views,
			UniqueViews: int(float64(views) * 0.8),
		}
		videoIDs = append(videoIDs, video.ID)
		ds.Videos = append(ds.Videos, video)
	}

	visitors := int(float64(monthViews) * (0.08 + g.rng.Float64()*0.04))
	ds.Visitors[month] = visitors

	callCount := int(float64(visitors) * (0.15 + g.rng.Float64()*0.08))
	for i := 0; i < callCount; i++ {
		status := models.CallStatusAccepted
		switch roll := g.rng.Float64(); {
		case roll < 0.10:
			status = models.CallStatusNoShow
		case roll < 0.18:
			status = models.CallStatusCancelled
		case roll < 0.24:
			status = models.CallStatusBooked
		}
		call := models.CallBooking{
			ID:         g.id(),
			VideoID:    videoIDs[g.rng.Intn(len(videoIDs))],
			BookedAt:   g.dayIn(monthStart),
			Status:     status,
			Country:    g.pick(countries),
			LeadSource: g.pick(leadSources),
		}
		ds.Calls = append(ds.Calls, call)

		// at most one sale per call, accepted calls only
		if status == models.CallStatusAccepted && g.rng.Float64() < 0.25 {
			saleType := models.SaleTypePaidInFull
			amount := float64(g.between(5000, 12000))
			if g.rng.Float64() < 0.4 {
				saleType = models.SaleTypeInstallment
				amount = float64(g.between(1500, 4000))
			}
			ds.Sales = append(ds.Sales, models.Sale{
				ID:       g.id(),
				CallID:   call.ID,
				Amount:   amount,
				Type:     saleType,
				Product:  "Coaching Accelerator",
				ClosedAt: call.BookedAt,
				Country:  call.Country,
			})
		}
	}

	campaignCount := g.between(1, 2)
	for i := 0; i < campaignCount; i++ {
		sent := int(float64(g.between(4000, 9000)) * growth)
		delivered := int(float64(sent) * 0.97)
		opens := int(float64(delivered) * (0.25 + g.rng.Float64()*0.20))
		clicks := int(float64(opens) * (0.10 + g.rng.Float64()*0.15))
		ds.Campaigns = append(ds.Campaigns, models.EmailCampaign{
			ID:      g.id(),
			Name:    fmt.Sprintf("%s Newsletter", monthStart.Format("January")),
			Subject: g.pick(videoTopics),
			Type:    "broadcast",
			Status:  "sent",
			SentAt:  g.dayIn(monthStart),
			Recipients: models.CampaignRecipients{
				Sent:      sent,
				Delivered: delivered,
			},
			Engagement: models.CampaignEngagement{
				UniqueOpens:  opens,
				UniqueClicks: clicks,
			},
			Conversions: models.CampaignConversions{
				CallsBooked: g.between(3, 15),
				Revenue:     float64(g.between(0, 3)) * 5000,
			},
		})
	}
}

// dayIn returns a timestamp inside monthStart's calendar month.
func (g *Generator) dayIn(monthStart time.Time) time.Time {
	return monthStart.AddDate(0, 0, g.rng.Intn(28)).Add(time.Duration(g.between(8, 20)) * time.Hour)
}

// generateTraffic rolls the generated history up into attributed
// sources so the traffic view is consistent with the events.
func (g *Generator) generateTraffic(ds Dataset) []models.TrafficSource {
	totalVisitors := 0
	for _, v := range ds.Visitors {
		totalVisitors += v
	}

	type split struct {
		platform   string
		medium     string
		campaign   string
		leadSource string
		share      float64
		cpa        float64
	}
	splits := []split{
		{"youtube", "organic", "", "youtube", 0.55, 0},
		{"email", "newsletter", "weekly-broadcast", "email", 0.20, 0},
		{"instagram", "paid", "reels-retarget", "referral", 0.15, 38},
		{"google", "paid", "brand-search", "organic", 0.10, 52},
	}

	sourceCalls := make(map[string]int)
	sourceSales := make(map[string]int)
	sourceRevenue := make(map[string]float64)
	saleCall := make(map[string]models.CallBooking, len(ds.Calls))
	for _, call := range ds.Calls {
		sourceCalls[call.LeadSource]++
		saleCall[call.ID] = call
	}
	for _, sale := range ds.Sales {
		if call, ok := saleCall[sale.CallID]; ok {
			sourceSales[call.LeadSource]++
			sourceRevenue[call.LeadSource] += sale.Amount
		}
	}

	out := make([]models.TrafficSource, 0, len(splits))
	for _, sp := range splits {
		key := sp.leadSource
		out = append(out, models.TrafficSource{
			Platform:           sp.platform,
			Medium:             sp.medium,
			Campaign:           sp.campaign,
			Visitors:           int(float64(totalVisitors) * sp.share),
			CallsBooked:        sourceCalls[key],
			SalesClosed:        sourceSales[key],
			Revenue:            sourceRevenue[key],
			CostPerAcquisition: sp.cpa,
		})
	}
	return out
}
