package analytics

import (
	"igmetrics/internal/models"
	"math"
	"strconv"
)

// FallbackRateCap bounds the posts-based engagement proxy.
const FallbackRateCap = 0.1

// Engagement holds the derived figures for one profile. A nil field means the
// value could not be computed, which is different from a computed zero.
type Engagement struct {
	Rate       *float64 `json:"engagement_rate"`
	GrowthRate *float64 `json:"growth_rate"`
	MonthlyER  *float64 `json:"monthly_er"`
	Direct     bool     `json:"direct"`
}

// Estimate derives engagement and growth from a reconciled profile.
func Estimate(m *models.ProfileMetrics) Engagement {
	if m == nil {
		return Engagement{}
	}

	var e Engagement
	e.Rate, e.Direct = EngagementRate(m.Followers, m.PostsCount, m.Interactions)
	if e.Direct {
		monthly := float64(m.Interactions) / float64(m.Followers) * 100
		e.MonthlyER = &monthly
	}
	e.GrowthRate = GrowthRate(m.NewFollowers, m.Followers)
	return e
}

// EngagementRate returns interactions/followers when interaction data exists,
// otherwise min(0.1, posts/(followers*10)). Both are rounded to 4 decimals.
// direct reports which path produced the value.
func EngagementRate(followers, posts, interactions int64) (rate *float64, direct bool) {
	switch {
	case interactions > 0 && followers > 0:
		r := round4(math.Min(1, float64(interactions)/float64(followers)))
		return &r, true
	case followers > 0 && posts > 0:
		r := round4(math.Min(FallbackRateCap, float64(posts)/(float64(followers)*10)))
		return &r, false
	default:
		return nil, false
	}
}

// GrowthRate is new followers as a percentage of the audience.
func GrowthRate(newFollowers, followers int64) *float64 {
	if newFollowers <= 0 || followers <= 0 {
		return nil
	}
	g := float64(newFollowers) / float64(followers) * 100
	return &g
}

// round4 rounds to 4 decimals from the exact binary value, matching how the
// figures were stored historically (0.00025 becomes 0.0003).
func round4(x float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 4, 64), 64)
	return r
}
