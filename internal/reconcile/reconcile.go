// Package reconcile merges the readings of one analysis pass with the stored
// record. A field only moves to a better-sourced non-zero value; a failed or
// empty reading never erases stored data.
package reconcile

import (
	"igmetrics/internal/analytics"
	"igmetrics/internal/models"
	"sort"
	"time"
)

// Field names used in Result.Provenance and Result.ChangedFields.
const (
	FieldFollowers      = "followers"
	FieldFollowing      = "following"
	FieldPostsCount     = "posts_count"
	FieldBio            = "bio"
	FieldViews          = "views"
	FieldInteractions   = "interactions"
	FieldNewFollowers   = "new_followers"
	FieldMessages       = "messages"
	FieldShares         = "shares"
	FieldEngagementRate = "engagement_rate"
)

type Result struct {
	Profile *models.ProfileMetrics
	Changed bool
	// ChangedFields is sorted.
	ChangedFields []string
	// Provenance names the source each non-empty field was taken from.
	Provenance map[string]models.Source
}

type intField struct {
	name string
	get  func(*models.Fields) int64
	ptr  func(*models.ProfileMetrics) *int64
}

var intFields = []intField{
	{FieldFollowers, func(f *models.Fields) int64 { return f.Followers }, func(p *models.ProfileMetrics) *int64 { return &p.Followers }},
	{FieldFollowing, func(f *models.Fields) int64 { return f.Following }, func(p *models.ProfileMetrics) *int64 { return &p.Following }},
	{FieldPostsCount, func(f *models.Fields) int64 { return f.PostsCount }, func(p *models.ProfileMetrics) *int64 { return &p.PostsCount }},
	{FieldViews, func(f *models.Fields) int64 { return f.Views }, func(p *models.ProfileMetrics) *int64 { return &p.Views }},
	{FieldInteractions, func(f *models.Fields) int64 { return f.Interactions }, func(p *models.ProfileMetrics) *int64 { return &p.Interactions }},
	{FieldNewFollowers, func(f *models.Fields) int64 { return f.NewFollowers }, func(p *models.ProfileMetrics) *int64 { return &p.NewFollowers }},
	{FieldMessages, func(f *models.Fields) int64 { return f.Messages }, func(p *models.ProfileMetrics) *int64 { return &p.Messages }},
	{FieldShares, func(f *models.Fields) int64 { return f.Shares }, func(p *models.ProfileMetrics) *int64 { return &p.Shares }},
}

// Reconcile merges per field: structured reading if non-zero, else the text
// reading (OCR or DOM) if non-zero, else the stored value, else zero.
// updated_at is always set to now; analyzed_at only when a value changed.
// The engagement rate is recomputed from the merged counters and keeps its
// stored value when it cannot be computed. A change drops the cached report.
func Reconcile(structured, text *models.ExtractionResult, prior *models.ProfileMetrics, username string, now time.Time) (Result, error) {
	if username == "" {
		return Result{}, models.ErrEmptyUsername
	}
	if prior != nil && prior.Username != username {
		return Result{}, models.ErrUsernameChanged
	}

	var merged *models.ProfileMetrics
	if prior != nil {
		merged = prior.Clone()
	} else {
		merged = &models.ProfileMetrics{Username: username, CreatedAt: now}
	}

	res := Result{Provenance: make(map[string]models.Source)}
	sources := []*models.ExtractionResult{structured, text}

	for _, f := range intFields {
		dst := f.ptr(merged)
		v, src := pickInt(sources, f.get, *dst)
		if v != *dst {
			res.ChangedFields = append(res.ChangedFields, f.name)
			*dst = v
		}
		if src != "" {
			res.Provenance[f.name] = src
		}
	}

	bio, src := pickString(sources, merged.Bio)
	if bio != merged.Bio {
		res.ChangedFields = append(res.ChangedFields, FieldBio)
		merged.Bio = bio
	}
	if src != "" {
		res.Provenance[FieldBio] = src
	}

	if rate, _ := analytics.EngagementRate(merged.Followers, merged.PostsCount, merged.Interactions); rate != nil {
		if merged.EngagementRate == nil || *merged.EngagementRate != *rate {
			res.ChangedFields = append(res.ChangedFields, FieldEngagementRate)
			merged.EngagementRate = rate
		}
	}

	sort.Strings(res.ChangedFields)
	res.Changed = len(res.ChangedFields) > 0

	merged.UpdatedAt = now
	if res.Changed {
		at := now
		merged.AnalyzedAt = &at
		merged.ClearReport()
	}

	res.Profile = merged
	return res, nil
}

func pickInt(sources []*models.ExtractionResult, get func(*models.Fields) int64, stored int64) (int64, models.Source) {
	for _, s := range sources {
		if s == nil {
			continue
		}
		if v := get(&s.Fields); v > 0 {
			return v, s.Source
		}
	}
	if stored > 0 {
		return stored, models.SourceStored
	}
	return 0, ""
}

func pickString(sources []*models.ExtractionResult, stored string) (string, models.Source) {
	for _, s := range sources {
		if s != nil && s.Bio != "" {
			return s.Bio, s.Source
		}
	}
	if stored != "" {
		return stored, models.SourceStored
	}
	return "", ""
}
