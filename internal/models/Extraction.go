package models

// Label is the metric vocabulary a number was found next to.
type Label string

const (
	LabelNone         Label = ""
	LabelFollowers    Label = "followers"
	LabelFollowing    Label = "following"
	LabelPosts        Label = "posts"
	LabelViews        Label = "views"
	LabelInteractions Label = "interactions"
	LabelNewFollowers Label = "new_followers"
	LabelMessages     Label = "messages"
	LabelShares       Label = "shares"
)

type ScaleSuffix int

const (
	ScaleNone ScaleSuffix = iota
	ScaleThousand
	ScaleMillion
)

func (s ScaleSuffix) Multiplier() float64 {
	switch s {
	case ScaleThousand:
		return 1_000
	case ScaleMillion:
		return 1_000_000
	default:
		return 1
	}
}

// NumberCandidate is a numeric token mined from a text blob. Not persisted.
type NumberCandidate struct {
	RawDigits string
	Scale     ScaleSuffix
	Label     Label
	Value     int64

	Line   int
	Offset int
}

// Source tags where a field value came from.
type Source string

const (
	SourceStructured Source = "structured"
	SourceDOM        Source = "dom"
	SourceOCR        Source = "ocr"
	SourceStored     Source = "stored"
)

// Fields is the canonical field set every extractor produces.
type Fields struct {
	Followers  int64  `json:"followers"`
	Following  int64  `json:"following"`
	PostsCount int64  `json:"posts_count"`
	Bio        string `json:"bio,omitempty"`

	Views        int64 `json:"views,omitempty"`
	Interactions int64 `json:"interactions,omitempty"`
	NewFollowers int64 `json:"new_followers,omitempty"`
	Messages     int64 `json:"messages,omitempty"`
	Shares       int64 `json:"shares,omitempty"`
}

// ExtractionResult is one source's reading, discarded after reconciliation.
type ExtractionResult struct {
	Source Source
	Fields
	Candidates int
}

// Usable reports whether any of the three profile counters was found.
func (r *ExtractionResult) Usable() bool {
	if r == nil {
		return false
	}
	return r.Followers > 0 || r.Following > 0 || r.PostsCount > 0
}

// HasStatistics reports whether the reading carries dashboard figures.
func (r *ExtractionResult) HasStatistics() bool {
	if r == nil {
		return false
	}
	return r.Views > 0 || r.Interactions > 0 || r.NewFollowers > 0 || r.Messages > 0 || r.Shares > 0
}

// ThemeProfile is derived from the biography on every report request.
type ThemeProfile struct {
	Themes      []string `json:"themes"`
	Positioning []string `json:"positioning"`
	Keywords    []string `json:"keywords"`
}
