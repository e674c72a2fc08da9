package extraction

import (
	"igmetrics/internal/models"
	"sort"
)

// Disambiguate assigns candidates to profile fields. Labelled candidates win;
// whatever is left unassigned is filled from unlabeled candidates by magnitude
// (followers > following > posts), which is a best-effort guess.
func Disambiguate(cands []models.NumberCandidate) models.Fields {
	var f models.Fields

	f.Followers = maxLabelled(cands, models.LabelFollowers, 0)
	f.Following = maxLabelled(cands, models.LabelFollowing, 0)
	f.PostsCount = maxLabelled(cands, models.LabelPosts, f.Followers)

	f.Views = maxLabelled(cands, models.LabelViews, 0)
	f.Interactions = maxLabelled(cands, models.LabelInteractions, 0)
	f.NewFollowers = maxLabelled(cands, models.LabelNewFollowers, 0)
	f.Messages = maxLabelled(cands, models.LabelMessages, 0)
	f.Shares = maxLabelled(cands, models.LabelShares, 0)

	var unlabeled []int64
	for _, c := range cands {
		if c.Label == models.LabelNone {
			unlabeled = append(unlabeled, c.Value)
		}
	}
	sort.Slice(unlabeled, func(i, j int) bool { return unlabeled[i] > unlabeled[j] })

	for _, field := range []*int64{&f.Followers, &f.Following, &f.PostsCount} {
		if *field != 0 || len(unlabeled) == 0 {
			continue
		}
		*field = unlabeled[0]
		unlabeled = unlabeled[1:]
	}
	return f
}

// maxLabelled returns the largest value carrying label. A non-zero below bounds
// the result from above (posts never exceed followers).
func maxLabelled(cands []models.NumberCandidate, label models.Label, below int64) int64 {
	var best int64
	for _, c := range cands {
		if c.Label != label {
			continue
		}
		if below > 0 && c.Value >= below {
			continue
		}
		if c.Value > best {
			best = c.Value
		}
	}
	return best
}
