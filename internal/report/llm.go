package report

import (
	"bytes"
	"context"
	"fmt"
	"igmetrics/internal/models"
	"igmetrics/internal/providers"
	"igmetrics/internal/structures"
	"igmetrics/internal/transport"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	systemPrompt       = "You are an expert Instagram account analyst specializing in influencer marketing and brand partnerships. Generate detailed, professional reports for advertisers and brands."
	llmTemperature     = 0.7
	defaultLLMTokens   = 3000
	defaultLLMTimeout  = 60 * time.Second
	llmAttempts        = 2
	finishReasonLength = "length"
)

// WriterInterface produces optional free-form report prose. Implementations
// return an error wrapping models.ErrReportGeneration on failure.
type WriterInterface interface {
	Write(ctx context.Context, in Input) (string, error)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

// LLMWriter calls an OpenAI-compatible chat completions endpoint.
type LLMWriter struct {
	endpoint  string
	apiKey    string
	model     string
	maxTokens int
	client    *transport.Client
	logger    providers.Logger
}

// NewWriter returns the configured LLM writer, or one that always returns
// an empty report when the LLM is disabled.
func NewWriter(conf *structures.Config, logger providers.Logger) WriterInterface {
	if !conf.LLM.Enabled {
		return disabledWriter{}
	}
	timeout := conf.LLM.Timeout
	if timeout <= 0 {
		timeout = defaultLLMTimeout
	}
	maxTokens := conf.LLM.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultLLMTokens
	}
	return &LLMWriter{
		endpoint:  strings.TrimSuffix(conf.LLM.BaseURL, "/") + "/chat/completions",
		apiKey:    conf.LLM.APIKey,
		model:     conf.LLM.Model,
		maxTokens: maxTokens,
		client:    transport.NewClient(timeout, llmAttempts, logger),
		logger:    logger,
	}
}

func (w *LLMWriter) Write(ctx context.Context, in Input) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: w.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildPrompt(in)},
		},
		Temperature: llmTemperature,
		MaxTokens:   w.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %w", models.ErrReportGeneration, err)
	}

	body, err := w.client.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if w.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+w.apiKey)
		}
		return req, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", models.ErrReportGeneration, err)
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", models.ErrReportGeneration, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", models.ErrReportGeneration)
	}

	choice := resp.Choices[0]
	if choice.FinishReason == finishReasonLength {
		w.logger.Warnf(providers.TypeAnalysis, "LLM report for %s truncated at %d tokens", in.Profile.Username, w.maxTokens)
	}
	text := strings.TrimSpace(choice.Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", models.ErrReportGeneration)
	}
	return text, nil
}

type disabledWriter struct{}

func (disabledWriter) Write(context.Context, Input) (string, error) { return "", nil }

// BuildPrompt lists the metrics and asks for the six-part advertiser report.
func BuildPrompt(in Input) string {
	p := in.Profile
	bio := p.Bio
	if bio == "" {
		bio = "Not specified"
	}

	var b strings.Builder
	b.WriteString("Analyze the Instagram account based on the provided data.\n\n")
	b.WriteString("Generate a structured report as if you are preparing it for advertisers, brands, or an influencer-marketing platform.\n\n")
	b.WriteString("Here are the input details:\n\n")
	fmt.Fprintf(&b, "– Followers: %s\n", thousands(p.Followers))
	fmt.Fprintf(&b, "– Number of posts: %s\n", thousands(p.PostsCount))
	fmt.Fprintf(&b, "– Bio / positioning: %s\n", bio)
	fmt.Fprintf(&b, "– Views in the last 30 days: %s\n", thousands(p.Views))
	fmt.Fprintf(&b, "– Interactions in the last 30 days (likes + comments + saves + reactions): %s\n", thousands(p.Interactions))
	fmt.Fprintf(&b, "– New followers last month: %s\n", thousands(p.NewFollowers))
	fmt.Fprintf(&b, "– Number of messages: %s\n", thousands(p.Messages))
	fmt.Fprintf(&b, "– Number of shares (content shared): %s\n", thousands(p.Shares))
	if r := in.Engagement.Rate; r != nil {
		fmt.Fprintf(&b, "– Estimated engagement rate: %s\n", percent(*r*100))
	}
	if len(in.Theme.Themes) > 0 {
		fmt.Fprintf(&b, "– Detected themes: %s\n", strings.Join(in.Theme.Themes, ", "))
	}
	b.WriteString(promptSections)
	return b.String()
}

const promptSections = `
Produce the analysis in the following structure:

1. OVERALL ACCOUNT METRICS & PERFORMANCE
– General health of the account
– Engagement Rate (ER) calculation
– Growth dynamics
– Evaluation of audience activity
– Strength of the account compared to industry averages

2. AUDIENCE & CONTENT ANALYSIS
– Niche/theme
– Content type and style
– Expected demographics
– Audience interests
– Level of trust & loyalty
– What types of people the content attracts

3. POTENTIAL PARTNERS & ADVERTISERS
– Brands
– Services
– Digital platforms
– Wellness/self-development products
– Potential collaborations and sponsorship fits

4. COMPLIMENTS — STRONG POINTS OF THE ACCOUNT
– Style
– Expertise
– Messaging clarity
– Content formats that perform best

5. SPECIFIC RECOMMENDATIONS FOR IMPROVEMENT
– Bio optimization
– Content strategy
– Reels and Stories
– Conversion flow
– Increasing reach & engagement

6. ADDITIONAL INSIGHTS
– Reels ideas
– New content rubrics
– How to increase ER

Generate a comprehensive, professional report that would be valuable for brands considering partnerships with this account.`

var numberPrinter = message.NewPrinter(language.English)

// thousands groups digits with commas: 44500 -> "44,500".
func thousands(n int64) string {
	return numberPrinter.Sprintf("%d", n)
}
