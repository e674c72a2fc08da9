package extraction

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"igmetrics/internal/models"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Input carries every raw reading acquired for one username.
type Input struct {
	Username string
	OCRText  string
	Page     []byte
}

// Extractor turns one kind of raw input into canonical fields.
type Extractor interface {
	Name() models.Source
	Extract(ctx context.Context, in Input) (*models.ExtractionResult, error)
}

// Chain runs extractors in priority order until one yields a usable result.
type Chain []Extractor

// Run returns the first usable result. When none is usable it returns the
// reading with the most candidates (possibly nil) and an error wrapping
// models.ErrExtractionAmbiguity.
func (c Chain) Run(ctx context.Context, in Input) (*models.ExtractionResult, error) {
	var fallback *models.ExtractionResult
	for _, ex := range c {
		if err := ctx.Err(); err != nil {
			return fallback, err
		}
		res, err := ex.Extract(ctx, in)
		if err != nil {
			continue
		}
		if res.Usable() || res.HasStatistics() {
			return res, nil
		}
		if fallback == nil || (res != nil && res.Candidates > fallback.Candidates) {
			fallback = res
		}
	}
	return fallback, fmt.Errorf("%w: no usable reading for %q", models.ErrExtractionAmbiguity, in.Username)
}

// StructuredExtractor reads JSON embedded in (or served as) the profile page.
type StructuredExtractor struct{}

func (StructuredExtractor) Name() models.Source { return models.SourceStructured }

func (StructuredExtractor) Extract(_ context.Context, in Input) (*models.ExtractionResult, error) {
	if len(in.Page) == 0 {
		return nil, errNoInput
	}
	f, ok := ParseStructured(in.Page)
	if !ok {
		return &models.ExtractionResult{Source: models.SourceStructured}, nil
	}
	return &models.ExtractionResult{Source: models.SourceStructured, Fields: f}, nil
}

// TextExtractor runs OCR text through candidate mining and disambiguation.
type TextExtractor struct{}

func (TextExtractor) Name() models.Source { return models.SourceOCR }

func (TextExtractor) Extract(_ context.Context, in Input) (*models.ExtractionResult, error) {
	if strings.TrimSpace(in.OCRText) == "" {
		return nil, errNoInput
	}
	return fromText(models.SourceOCR, in.OCRText), nil
}

// DOMTextExtractor mines the visible text of a profile page the same way as OCR
// text. Used when the page carries no parsable JSON.
type DOMTextExtractor struct{}

func (DOMTextExtractor) Name() models.Source { return models.SourceDOM }

func (DOMTextExtractor) Extract(_ context.Context, in Input) (*models.ExtractionResult, error) {
	if len(in.Page) == 0 {
		return nil, errNoInput
	}
	text, err := pageText(in.Page)
	if err != nil {
		return nil, err
	}
	return fromText(models.SourceDOM, text), nil
}

var errNoInput = errors.New("no input for extractor")

func fromText(src models.Source, text string) *models.ExtractionResult {
	cands := ExtractCandidates(text)
	res := &models.ExtractionResult{
		Source:     src,
		Fields:     Disambiguate(cands),
		Candidates: len(cands),
	}
	res.Bio = ExtractBio(text)
	return res
}

// pageText returns og:description followed by the body text, one block per line.
func pageText(page []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	var lines []string
	for _, sel := range []string{`meta[property="og:description"]`, `meta[name="description"]`} {
		if content, ok := doc.Find(sel).First().Attr("content"); ok && content != "" {
			// "44K Followers, 210 Following, 312 Posts - See Instagram photos..."
			if i := strings.Index(content, " - "); i > 0 {
				content = content[:i]
			}
			lines = append(lines, content)
			break
		}
	}

	doc.Find("body").Find("h1, h2, span, div, p, li, a").Each(func(_ int, s *goquery.Selection) {
		if s.Children().Length() > 0 {
			return
		}
		if t := strings.TrimSpace(s.Text()); t != "" {
			lines = append(lines, t)
		}
	})
	return strings.Join(lines, "\n"), nil
}
