package models

import "time"

// ProfileMetrics is the canonical per-username record. One record exists per
// username; every extraction pass mutates it in place.
type ProfileMetrics struct {
	Username   string `json:"username"`
	Followers  int64  `json:"followers"`
	Following  int64  `json:"following"`
	PostsCount int64  `json:"posts_count"`
	Bio        string `json:"bio,omitempty"`

	// EngagementRate is nil when it could not be computed; 0 is a valid value.
	EngagementRate *float64 `json:"engagement_rate"`

	Views        int64 `json:"views"`
	Interactions int64 `json:"interactions"`
	NewFollowers int64 `json:"new_followers"`
	Messages     int64 `json:"messages"`
	Shares       int64 `json:"shares"`

	ScreenshotRef string `json:"screenshot_reference,omitempty"`

	ReportRu          string     `json:"report_ru,omitempty"`
	ReportEn          string     `json:"report_en,omitempty"`
	ReportGeneratedAt *time.Time `json:"report_generated_at,omitempty"`

	AnalyzedAt *time.Time `json:"analyzed_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (p *ProfileMetrics) Clone() *ProfileMetrics {
	if p == nil {
		return nil
	}
	c := *p
	if p.EngagementRate != nil {
		er := *p.EngagementRate
		c.EngagementRate = &er
	}
	if p.ReportGeneratedAt != nil {
		t := *p.ReportGeneratedAt
		c.ReportGeneratedAt = &t
	}
	if p.AnalyzedAt != nil {
		t := *p.AnalyzedAt
		c.AnalyzedAt = &t
	}
	return &c
}

func (p *ProfileMetrics) HasReport() bool {
	return p.ReportRu != "" || p.ReportEn != ""
}

// ClearReport drops the cached report text; it no longer describes the metrics.
func (p *ProfileMetrics) ClearReport() {
	p.ReportRu = ""
	p.ReportEn = ""
	p.ReportGeneratedAt = nil
}

// Validate checks the record invariants enforced at write time.
func (p *ProfileMetrics) Validate() error {
	if p == nil || p.Username == "" {
		return ErrEmptyUsername
	}
	if p.Followers < 0 || p.Following < 0 || p.PostsCount < 0 ||
		p.Views < 0 || p.Interactions < 0 || p.NewFollowers < 0 || p.Messages < 0 || p.Shares < 0 {
		return ErrNegativeCounter
	}
	if p.EngagementRate != nil && (*p.EngagementRate < 0 || *p.EngagementRate > 1) {
		return ErrEngagementRange
	}
	if p.UpdatedAt.Before(p.CreatedAt) {
		return ErrTimestampOrder
	}
	return nil
}
