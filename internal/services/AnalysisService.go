package services

import (
	"context"
	"errors"
	"fmt"
	"igmetrics/internal/acquisition"
	"igmetrics/internal/analytics"
	"igmetrics/internal/extraction"
	"igmetrics/internal/models"
	"igmetrics/internal/providers"
	"igmetrics/internal/reconcile"
	"igmetrics/internal/report"
	"igmetrics/internal/storage/interfaces"
	"igmetrics/internal/structures"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

const (
	ScreenshotMain  = "main_page"
	ScreenshotStats = "stats"

	defaultAcquisitionTimeout = 30 * time.Second
)

// AnalyzeRequest describes one analysis pass. Raw inputs that are already
// at hand (OCRText, Page) skip the matching collaborator call.
type AnalyzeRequest struct {
	Username       string
	Screenshot     []byte
	ContentType    string
	ScreenshotType string
	OCRText        string
	Page           []byte
	FetchProfile   bool
}

type Report struct {
	Ru          string     `json:"ru"`
	En          string     `json:"en,omitempty"`
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
}

// Analysis is the stored record plus everything derived from it.
type Analysis struct {
	Profile       *models.ProfileMetrics   `json:"profile"`
	Derived       analytics.Engagement     `json:"derived"`
	Theme         models.ThemeProfile      `json:"theme"`
	Partners      []string                 `json:"partners"`
	ScreenshotURL string                   `json:"screenshot_url,omitempty"`
	Report        *Report                  `json:"report,omitempty"`
	Changed       bool                     `json:"changed"`
	ChangedFields []string                 `json:"changed_fields,omitempty"`
	Provenance    map[string]models.Source `json:"provenance,omitempty"`
}

type AnalysisServiceInterface interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (*Analysis, error)
	Get(ctx context.Context, username string) (*Analysis, error)
	Regenerate(ctx context.Context, username string) (*Analysis, error)
	List(ctx context.Context) ([]*models.ProfileMetrics, error)
	Delete(ctx context.Context, username string) error
	DeleteAll(ctx context.Context) (int, error)
}

type AnalysisService struct {
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
	cache       providers.CacheProviderInterface
	store       interfaces.ProfileStoreInterface
	locker      interfaces.LockerInterface
	screenshots interfaces.ScreenshotStoreInterface
	recognizer  acquisition.TextRecognizerInterface
	source      acquisition.ProfileSourceInterface
	writer      report.WriterInterface

	structuredChain extraction.Chain
	textChain       extraction.Chain

	timeout  time.Duration
	inFlight atomic.Int64
	now      func() time.Time
}

func NewAnalysisService(
	conf *structures.Config,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
	cache providers.CacheProviderInterface,
	store interfaces.ProfileStoreInterface,
	locker interfaces.LockerInterface,
	screenshots interfaces.ScreenshotStoreInterface,
	recognizer acquisition.TextRecognizerInterface,
	source acquisition.ProfileSourceInterface,
	writer report.WriterInterface,
) *AnalysisService {
	timeout := conf.Acquisition.Timeout
	if timeout <= 0 {
		timeout = defaultAcquisitionTimeout
	}
	return &AnalysisService{
		logger:          logger,
		metrics:         metrics,
		cache:           cache,
		store:           store,
		locker:          locker,
		screenshots:     screenshots,
		recognizer:      recognizer,
		source:          source,
		writer:          writer,
		structuredChain: extraction.Chain{extraction.StructuredExtractor{}},
		textChain:       extraction.Chain{extraction.TextExtractor{}, extraction.DOMTextExtractor{}},
		timeout:         timeout,
		now:             time.Now,
	}
}

// Analyze acquires both sources concurrently, extracts, and merges the
// readings into the stored record under the per-username lock. Only
// persistence failures are returned; acquisition and extraction failures
// degrade to "no new information".
func (s *AnalysisService) Analyze(ctx context.Context, req AnalyzeRequest) (*Analysis, error) {
	username, err := models.NormalizeUsername(req.Username)
	if err != nil {
		return nil, err
	}
	s.metrics.SetAnalysesInFlight(s.inFlight.Inc())
	defer func() { s.metrics.SetAnalysesInFlight(s.inFlight.Dec()) }()

	var ref string
	if len(req.Screenshot) > 0 {
		ref, err = s.screenshots.Put(ctx, username, req.Screenshot, req.ContentType)
		if err != nil {
			s.logger.Warnf(providers.TypeAnalysis, "Failed to store screenshot for %s: %s", username, err)
			ref = ""
		}
	}

	in := s.acquire(ctx, username, req)
	structured, text := s.extract(ctx, in, req.ScreenshotType)

	res, err := s.merge(ctx, username, structured, text, ref)
	if err != nil {
		s.releaseScreenshot(username, ref)
		return nil, err
	}
	s.logger.Infof(providers.TypeAnalysis, "Analyzed %s: changed=%t fields=%v provenance=%v",
		username, res.Changed, res.ChangedFields, res.Provenance)

	a, fresh := s.describe(ctx, res.Profile, false)
	if fresh {
		// metrics are saved by now; an uncached report is recomposed on the next read
		if stored, err := s.storeReport(ctx, res.Profile, a.Report); err != nil {
			s.metrics.IncReportStoreFailures()
			s.logger.Warnf(providers.TypeAnalysis, "Report for %s not cached: %s", username, err)
		} else {
			a.Profile = stored
		}
	}
	a.Changed = res.Changed
	a.ChangedFields = res.ChangedFields
	a.Provenance = res.Provenance
	return a, nil
}

// acquire runs the OCR and page collaborators concurrently and waits for both.
func (s *AnalysisService) acquire(ctx context.Context, username string, req AnalyzeRequest) extraction.Input {
	in := extraction.Input{Username: username, OCRText: req.OCRText, Page: req.Page}

	var g errgroup.Group
	if in.OCRText == "" && len(req.Screenshot) > 0 {
		g.Go(func() error {
			actx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			text, err := s.recognizer.Recognize(actx, req.Screenshot, req.ContentType)
			if err != nil {
				s.logger.Warnf(providers.TypeAnalysis, "OCR failed for %s: %s", username, err)
				return nil
			}
			in.OCRText = text
			return nil
		})
	}
	if len(in.Page) == 0 && req.FetchProfile {
		g.Go(func() error {
			actx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			page, err := s.source.Fetch(actx, username)
			if err != nil {
				s.logger.Warnf(providers.TypeAnalysis, "Profile fetch failed for %s: %s", username, err)
				return nil
			}
			in.Page = page
			return nil
		})
	}
	_ = g.Wait()
	return in
}

// extract returns the structured reading (nil unless usable) and the best
// text reading, OCR first and page text as fallback.
func (s *AnalysisService) extract(ctx context.Context, in extraction.Input, screenshotType string) (structured, text *models.ExtractionResult) {
	structured, err := s.structuredChain.Run(ctx, in)
	s.countExtraction(models.SourceStructured, structured, err)
	if err != nil {
		structured = nil
	}

	text, err = s.textChain.Run(ctx, in)
	s.countExtraction(models.SourceOCR, text, err)
	if err != nil && text != nil {
		s.logger.Warnf(providers.TypeAnalysis, "No usable numbers in %s text for %s (%d candidates)", text.Source, in.Username, text.Candidates)
	}

	if text != nil && text.Source == models.SourceOCR && screenshotType == ScreenshotStats {
		statsOnly(text)
	}
	return structured, text
}

// statsOnly keeps dashboard figures of a statistics screenshot. Its other
// numbers are not profile counters.
func statsOnly(r *models.ExtractionResult) {
	r.Followers, r.Following, r.PostsCount, r.Bio = 0, 0, 0, ""
}

func (s *AnalysisService) countExtraction(slot models.Source, res *models.ExtractionResult, err error) {
	source := string(slot)
	if res != nil {
		source = string(res.Source)
	}
	switch {
	case err == nil:
		s.metrics.IncExtractions(source, "ok")
	case errors.Is(err, models.ErrExtractionAmbiguity) && res != nil:
		s.metrics.IncExtractions(source, "ambiguous")
	default:
		s.metrics.IncExtractions(source, "missing")
	}
}

// merge is the read-modify-write cycle. It runs under the username lock.
func (s *AnalysisService) merge(ctx context.Context, username string, structured, text *models.ExtractionResult, ref string) (reconcile.Result, error) {
	unlock, err := s.locker.Lock(ctx, username)
	if err != nil {
		return reconcile.Result{}, err
	}
	defer unlock()

	prior, err := s.store.Load(ctx, username)
	if err != nil {
		return reconcile.Result{}, fmt.Errorf("load %s: %w", username, err)
	}

	res, err := reconcile.Reconcile(structured, text, prior, username, s.now().UTC())
	if err != nil {
		return reconcile.Result{}, err
	}

	var replaced string
	if ref != "" {
		replaced = res.Profile.ScreenshotRef
		res.Profile.ScreenshotRef = ref
	}

	if err := s.store.Save(ctx, res.Profile); err != nil {
		return reconcile.Result{}, fmt.Errorf("save %s: %w", username, err)
	}

	s.cache.Del(username)
	if res.Changed {
		s.metrics.IncReconcileChanges()
	}
	if replaced != "" && replaced != ref {
		s.releaseScreenshot(username, replaced)
	}
	return res, nil
}

func (s *AnalysisService) releaseScreenshot(username, ref string) {
	if ref == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.screenshots.Delete(ctx, ref); err != nil {
		s.logger.Warnf(providers.TypeAnalysis, "Failed to delete screenshot %s of %s: %s", ref, username, err)
	}
}

// Get returns the stored record with derived figures and its report,
// composing and caching the report when the record has none.
func (s *AnalysisService) Get(ctx context.Context, username string) (*Analysis, error) {
	p, err := s.load(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.withReport(ctx, p, false)
}

// Regenerate recomposes the report even when one is cached.
func (s *AnalysisService) Regenerate(ctx context.Context, username string) (*Analysis, error) {
	p, err := s.load(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.withReport(ctx, p, true)
}

func (s *AnalysisService) load(ctx context.Context, username string) (*models.ProfileMetrics, error) {
	username, err := models.NormalizeUsername(username)
	if err != nil {
		return nil, err
	}
	p, err := s.store.Load(ctx, username)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrNotFound, username)
	}
	return p, nil
}

// withReport attaches derived signals and the report. A new report is
// composed outside the lock (the LLM call may be slow) and stored only if
// the record was not reanalyzed meanwhile.
func (s *AnalysisService) withReport(ctx context.Context, p *models.ProfileMetrics, force bool) (*Analysis, error) {
	a, fresh := s.describe(ctx, p, force)
	if !fresh {
		return a, nil
	}
	stored, err := s.storeReport(ctx, p, a.Report)
	if err != nil {
		return nil, err
	}
	a.Profile = stored
	return a, nil
}

// describe builds the analysis view of p. The report is taken from the record
// unless it is missing or force is set; fresh is true when it was just composed.
func (s *AnalysisService) describe(ctx context.Context, p *models.ProfileMetrics, force bool) (a *Analysis, fresh bool) {
	in := report.NewInput(p)
	a = &Analysis{
		Profile:  p,
		Derived:  in.Engagement,
		Theme:    in.Theme,
		Partners: in.Partners,
	}
	if p.ScreenshotRef != "" {
		if url, err := s.screenshots.URL(ctx, p.ScreenshotRef); err == nil {
			a.ScreenshotURL = url
		} else {
			s.logger.Warnf(providers.TypeAnalysis, "No URL for screenshot %s: %s", p.ScreenshotRef, err)
		}
	}

	if p.HasReport() && !force {
		a.Report = &Report{Ru: p.ReportRu, En: p.ReportEn, GeneratedAt: p.ReportGeneratedAt}
		return a, false
	}

	ru := report.Compose(in)
	en, err := s.writer.Write(ctx, in)
	if err != nil {
		s.metrics.IncLLMFailures()
		s.logger.Warnf(providers.TypeAnalysis, "LLM report for %s failed: %s", p.Username, err)
		en = ""
	}
	now := s.now().UTC()
	a.Report = &Report{Ru: ru, En: en, GeneratedAt: &now}
	return a, true
}

// storeReport attaches r to the stored record when the record still holds the
// analysis r was composed from. Otherwise r is returned on a copy of p.
func (s *AnalysisService) storeReport(ctx context.Context, p *models.ProfileMetrics, r *Report) (*models.ProfileMetrics, error) {
	unlock, err := s.locker.Lock(ctx, p.Username)
	if err != nil {
		return nil, err
	}
	defer unlock()

	cur, err := s.store.Load(ctx, p.Username)
	if err != nil {
		return nil, err
	}
	out := p.Clone()
	out.ReportRu, out.ReportEn, out.ReportGeneratedAt = r.Ru, r.En, r.GeneratedAt

	if cur == nil || !sameAnalysis(cur, p) {
		s.logger.Debugf(providers.TypeAnalysis, "Record %s changed while composing the report, not caching it", p.Username)
		return out, nil
	}

	cur.ReportRu, cur.ReportEn, cur.ReportGeneratedAt = r.Ru, r.En, r.GeneratedAt
	cur.UpdatedAt = *r.GeneratedAt
	if err := s.store.Save(ctx, cur); err != nil {
		return nil, fmt.Errorf("save report %s: %w", p.Username, err)
	}
	s.cache.Del(p.Username)
	return cur, nil
}

func sameAnalysis(a, b *models.ProfileMetrics) bool {
	if (a.AnalyzedAt == nil) != (b.AnalyzedAt == nil) {
		return false
	}
	return a.AnalyzedAt == nil || a.AnalyzedAt.Equal(*b.AnalyzedAt)
}

func (s *AnalysisService) List(ctx context.Context) ([]*models.ProfileMetrics, error) {
	return s.store.List(ctx)
}

func (s *AnalysisService) Delete(ctx context.Context, username string) error {
	username, err := models.NormalizeUsername(username)
	if err != nil {
		return err
	}
	unlock, err := s.locker.Lock(ctx, username)
	if err != nil {
		return err
	}
	defer unlock()

	p, err := s.store.Load(ctx, username)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("%w: %s", models.ErrNotFound, username)
	}
	if err := s.store.Delete(ctx, username); err != nil {
		return err
	}
	s.cache.Del(username)
	s.releaseScreenshot(username, p.ScreenshotRef)
	s.logger.Infof(providers.TypeAnalysis, "Deleted profile %s", username)
	return nil
}

func (s *AnalysisService) DeleteAll(ctx context.Context) (int, error) {
	profiles, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}
	n, err := s.store.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	for _, p := range profiles {
		s.cache.Del(p.Username)
		s.releaseScreenshot(p.Username, p.ScreenshotRef)
	}
	s.logger.Infof(providers.TypeAnalysis, "Deleted all %d profiles", n)
	return n, nil
}
