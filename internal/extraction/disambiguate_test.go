package extraction

import (
	"igmetrics/internal/models"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func cand(label models.Label, v int64) models.NumberCandidate {
	return models.NumberCandidate{Label: label, Value: v}
}

func TestDisambiguate(t *testing.T) {
	cases := []struct {
		name  string
		cands []models.NumberCandidate
		want  models.Fields
	}{
		{
			name: "labelled",
			cands: []models.NumberCandidate{
				cand(models.LabelFollowers, 44500),
				cand(models.LabelFollowing, 210),
				cand(models.LabelPosts, 312),
			},
			want: models.Fields{Followers: 44500, Following: 210, PostsCount: 312},
		},
		{
			name: "max of repeated label",
			cands: []models.NumberCandidate{
				cand(models.LabelFollowers, 4450),
				cand(models.LabelFollowers, 44500),
			},
			want: models.Fields{Followers: 44500},
		},
		{
			name: "posts must stay below followers",
			cands: []models.NumberCandidate{
				cand(models.LabelFollowers, 1000),
				cand(models.LabelPosts, 5000),
				cand(models.LabelPosts, 300),
			},
			want: models.Fields{Followers: 1000, PostsCount: 300},
		},
		{
			name: "posts unguarded without followers",
			cands: []models.NumberCandidate{
				cand(models.LabelPosts, 5000),
			},
			want: models.Fields{PostsCount: 5000},
		},
		{
			name: "magnitude fallback",
			cands: []models.NumberCandidate{
				cand(models.LabelNone, 210),
				cand(models.LabelNone, 44500),
				cand(models.LabelNone, 312),
			},
			want: models.Fields{Followers: 44500, Following: 312, PostsCount: 210},
		},
		{
			name: "fallback fills only gaps",
			cands: []models.NumberCandidate{
				cand(models.LabelFollowers, 44500),
				cand(models.LabelNone, 210),
				cand(models.LabelNone, 312),
			},
			want: models.Fields{Followers: 44500, Following: 312, PostsCount: 210},
		},
		{
			name: "statistics",
			cands: []models.NumberCandidate{
				cand(models.LabelViews, 120500),
				cand(models.LabelInteractions, 2300),
				cand(models.LabelNewFollowers, 150),
				cand(models.LabelMessages, 12),
				cand(models.LabelShares, 40),
			},
			want: models.Fields{Views: 120500, Interactions: 2300, NewFollowers: 150, Messages: 12, Shares: 40},
		},
		{
			name: "nothing",
			want: models.Fields{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Disambiguate(tc.cands)
			assert.Empty(t, cmp.Diff(tc.want, got))
		})
	}
}
