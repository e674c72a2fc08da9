// Package acquisition talks to the collaborators that supply raw input:
// an OCR service turning screenshots into text and the public profile page.
package acquisition

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"igmetrics/internal/models"
	"igmetrics/internal/providers"
	"igmetrics/internal/structures"
	"igmetrics/internal/transport"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"
)

// ocrLanguages is passed to the OCR service; profile screens mix Cyrillic and Latin.
const ocrLanguages = "rus+eng"

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

var errNotConfigured = errors.New("collaborator not configured")

type TextRecognizerInterface interface {
	Recognize(ctx context.Context, image []byte, contentType string) (string, error)
}

type ProfileSourceInterface interface {
	Fetch(ctx context.Context, username string) ([]byte, error)
}

// NewClient builds the shared retrying HTTP client for both collaborators.
func NewClient(conf *structures.Config, logger providers.Logger) *transport.Client {
	return transport.NewClient(conf.Acquisition.Timeout, conf.Acquisition.Attempts, logger)
}

// HTTPTextRecognizer posts the image to an OCR service as multipart/form-data
// and reads back {"text": "..."} or a plain text body.
type HTTPTextRecognizer struct {
	endpoint string
	client   *transport.Client
	logger   providers.Logger
}

func NewTextRecognizer(conf *structures.Config, client *transport.Client, logger providers.Logger) TextRecognizerInterface {
	if conf.Acquisition.OCRURL == "" {
		return disabledRecognizer{}
	}
	return &HTTPTextRecognizer{
		endpoint: conf.Acquisition.OCRURL,
		client:   client,
		logger:   logger,
	}
}

func (r *HTTPTextRecognizer) Recognize(ctx context.Context, image []byte, contentType string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("%w: empty image", models.ErrAcquisition)
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := form.WriteField("lang", ocrLanguages); err != nil {
		return "", err
	}
	part, err := form.CreateFormFile("image", "screenshot"+imageExt(contentType))
	if err != nil {
		return "", err
	}
	if _, err := part.Write(image); err != nil {
		return "", err
	}
	if err := form.Close(); err != nil {
		return "", err
	}
	payload := buf.Bytes()

	body, err := r.client.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", form.FormDataContentType())
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: ocr: %w", models.ErrAcquisition, err)
	}

	text := decodeOCRText(body)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: ocr returned no text", models.ErrAcquisition)
	}
	r.logger.Debugf(providers.TypeAnalysis, "OCR returned %d bytes of text", len(text))
	return text, nil
}

func decodeOCRText(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var resp struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(trimmed, &resp); err == nil {
			return resp.Text
		}
	}
	return string(body)
}

func imageExt(contentType string) string {
	switch {
	case strings.Contains(contentType, "png"):
		return ".png"
	case strings.Contains(contentType, "jpeg"), strings.Contains(contentType, "jpg"):
		return ".jpg"
	case strings.Contains(contentType, "webp"):
		return ".webp"
	default:
		return ""
	}
}

// HTTPProfileSource downloads the public profile page (HTML or the JSON
// web profile endpoint, depending on the configured URL).
type HTTPProfileSource struct {
	urlTemplate string
	userAgent   string
	client      *transport.Client
	logger      providers.Logger
}

func NewProfileSource(conf *structures.Config, client *transport.Client, logger providers.Logger) ProfileSourceInterface {
	if conf.Acquisition.ProfileURL == "" {
		return disabledSource{}
	}
	ua := conf.Acquisition.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	return &HTTPProfileSource{
		urlTemplate: conf.Acquisition.ProfileURL,
		userAgent:   ua,
		client:      client,
		logger:      logger,
	}
}

func (s *HTTPProfileSource) Fetch(ctx context.Context, username string) ([]byte, error) {
	target := s.profileURL(username)
	body, err := s.client.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", s.userAgent)
		req.Header.Set("Accept", "text/html,application/json;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,en;q=0.8")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: profile page: %w", models.ErrAcquisition, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: empty profile page", models.ErrAcquisition)
	}
	s.logger.Debugf(providers.TypeAnalysis, "Fetched %d bytes for %s", len(body), username)
	return body, nil
}

// profileURL substitutes {username} in the template, or appends the
// escaped username as a path segment.
func (s *HTTPProfileSource) profileURL(username string) string {
	escaped := url.PathEscape(username)
	if strings.Contains(s.urlTemplate, "{username}") {
		return strings.ReplaceAll(s.urlTemplate, "{username}", escaped)
	}
	return strings.TrimSuffix(s.urlTemplate, "/") + "/" + escaped + "/"
}

type disabledRecognizer struct{}

func (disabledRecognizer) Recognize(context.Context, []byte, string) (string, error) {
	return "", fmt.Errorf("%w: ocr: %w", models.ErrAcquisition, errNotConfigured)
}

type disabledSource struct{}

func (disabledSource) Fetch(context.Context, string) ([]byte, error) {
	return nil, fmt.Errorf("%w: profile page: %w", models.ErrAcquisition, errNotConfigured)
}
