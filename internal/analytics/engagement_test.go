package analytics

import (
	"igmetrics/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngagementRate_Direct(t *testing.T) {
	rate, direct := EngagementRate(40000, 0, 2000)
	require.NotNil(t, rate)
	assert.True(t, direct)
	assert.Equal(t, 0.05, *rate)
}

func TestEngagementRate_Fallback(t *testing.T) {
	rate, direct := EngagementRate(40000, 100, 0)
	require.NotNil(t, rate)
	assert.False(t, direct)
	assert.Equal(t, 0.0003, *rate)
}

func TestEngagementRate_FallbackCapped(t *testing.T) {
	rate, _ := EngagementRate(100, 5000, 0)
	require.NotNil(t, rate)
	assert.Equal(t, FallbackRateCap, *rate)
}

func TestEngagementRate_DirectClamped(t *testing.T) {
	rate, direct := EngagementRate(100, 0, 5000)
	require.NotNil(t, rate)
	assert.True(t, direct)
	assert.Equal(t, 1.0, *rate)
}

func TestEngagementRate_Unknown(t *testing.T) {
	for _, tc := range [][3]int64{{0, 0, 0}, {0, 10, 10}, {500, 0, 0}} {
		rate, _ := EngagementRate(tc[0], tc[1], tc[2])
		assert.Nil(t, rate, "followers=%d posts=%d interactions=%d", tc[0], tc[1], tc[2])
	}
}

func TestEngagementRate_Bounded(t *testing.T) {
	for followers := int64(1); followers < 200000; followers = followers*3 + 7 {
		for _, posts := range []int64{1, 10, 312, 100000} {
			rate, _ := EngagementRate(followers, posts, 0)
			require.NotNil(t, rate)
			assert.GreaterOrEqual(t, *rate, 0.0)
			assert.LessOrEqual(t, *rate, FallbackRateCap)
		}
		for _, interactions := range []int64{1, 99, 5000, 10000000} {
			rate, _ := EngagementRate(followers, 0, interactions)
			require.NotNil(t, rate)
			assert.GreaterOrEqual(t, *rate, 0.0)
			assert.LessOrEqual(t, *rate, 1.0)
		}
	}
}

func TestEstimate(t *testing.T) {
	m := &models.ProfileMetrics{Followers: 40000, Interactions: 2000, NewFollowers: 4000, PostsCount: 100}

	e := Estimate(m)
	require.NotNil(t, e.Rate)
	require.NotNil(t, e.MonthlyER)
	require.NotNil(t, e.GrowthRate)
	assert.True(t, e.Direct)
	assert.Equal(t, 0.05, *e.Rate)
	assert.InDelta(t, 5.0, *e.MonthlyER, 1e-9)
	assert.InDelta(t, 10.0, *e.GrowthRate, 1e-9)
}

func TestEstimate_NoData(t *testing.T) {
	e := Estimate(&models.ProfileMetrics{Username: "empty"})
	assert.Nil(t, e.Rate)
	assert.Nil(t, e.MonthlyER)
	assert.Nil(t, e.GrowthRate)

	assert.Equal(t, Engagement{}, Estimate(nil))
}
