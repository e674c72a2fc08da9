package controllers

import (
	"errors"
	"igmetrics/internal/models"
	"igmetrics/internal/providers"
	"igmetrics/internal/services"
	"igmetrics/internal/structures"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
)

const (
	defaultMaxUploadBytes = 10 << 20 // 10 MB
	maxFormMemory         = 4 << 20
)

type ApiController struct {
	logger         providers.Logger
	service        services.AnalysisServiceInterface
	cache          providers.CacheProviderInterface
	maxUploadBytes int64
}

func NewApiController(conf *structures.Config, logger providers.Logger, service services.AnalysisServiceInterface, cache providers.CacheProviderInterface) *ApiController {
	limit := conf.WebServer.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUploadBytes
	}
	return &ApiController{
		logger:         logger,
		service:        service,
		cache:          cache,
		maxUploadBytes: limit,
	}
}

type usersResponse struct {
	Count int                      `json:"count"`
	Users []*models.ProfileMetrics `json:"users"`
}

type deleteResponse struct {
	Deleted int    `json:"deleted"`
	User    string `json:"username,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func (ac *ApiController) respond(w http.ResponseWriter, t providers.TypeEnum, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		ac.logger.Errorf(t, "Encode response: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, gson)
}

// fail maps service errors to HTTP statuses. Only unexpected errors are
// logged at error level.
func (ac *ApiController) fail(w http.ResponseWriter, t providers.TypeEnum, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidUsername), errors.Is(err, models.ErrEmptyUsername):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, "Not Found", http.StatusNotFound)
	case errors.Is(err, models.ErrPersistenceConflict), errors.Is(err, models.ErrUsernameChanged):
		ac.logger.Warnf(t, "Conflict: %s", err)
		http.Error(w, "Conflict", http.StatusConflict)
	default:
		ac.logger.Errorf(t, "Request failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, data)
		return
	}

	result, err := compute()
	if err != nil {
		ac.fail(w, providers.TypeGet, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)
	writeJSON(w, http.StatusOK, gson)
}

// Analyze accepts a multipart form with username, an optional screenshot
// and screenshot_type, and optional pre-recognized ocr_text.
func (ac *ApiController) Analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, ac.maxUploadBytes)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	req := services.AnalyzeRequest{
		Username:       r.FormValue("username"),
		ScreenshotType: r.FormValue("screenshot_type"),
		OCRText:        r.FormValue("ocr_text"),
		FetchProfile:   true,
	}
	if req.ScreenshotType == "" {
		req.ScreenshotType = services.ScreenshotMain
	}
	if req.ScreenshotType != services.ScreenshotMain && req.ScreenshotType != services.ScreenshotStats {
		http.Error(w, "Bad Request: unknown screenshot_type", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("screenshot")
	switch {
	case err == nil:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		req.Screenshot = data
		req.ContentType = header.Header.Get("Content-Type")
		if req.ContentType == "" || req.ContentType == "application/octet-stream" {
			req.ContentType = http.DetectContentType(data)
		}
	case errors.Is(err, http.ErrMissingFile):
	default:
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	ac.analyze(w, r, req)
}

// AnalyzeLink runs a pass that only uses the fetched profile page.
func (ac *ApiController) AnalyzeLink(w http.ResponseWriter, r *http.Request) {
	ac.analyze(w, r, services.AnalyzeRequest{
		Username:     r.PathValue("username"),
		FetchProfile: true,
	})
}

func (ac *ApiController) analyze(w http.ResponseWriter, r *http.Request, req services.AnalyzeRequest) {
	a, err := ac.service.Analyze(r.Context(), req)
	if err != nil {
		ac.fail(w, providers.TypePost, err)
		return
	}
	ac.respond(w, providers.TypePost, a)
}

func (ac *ApiController) GetData(w http.ResponseWriter, r *http.Request) {
	username, err := models.NormalizeUsername(r.PathValue("username"))
	if err != nil {
		ac.fail(w, providers.TypeGet, err)
		return
	}
	ac.serveFromCacheOrCompute(w, username, func() (any, error) {
		return ac.service.Get(r.Context(), username)
	})
}

func (ac *ApiController) RegenerateReport(w http.ResponseWriter, r *http.Request) {
	a, err := ac.service.Regenerate(r.Context(), r.PathValue("username"))
	if err != nil {
		ac.fail(w, providers.TypePost, err)
		return
	}
	ac.respond(w, providers.TypePost, a)
}

func (ac *ApiController) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := ac.service.List(r.Context())
	if err != nil {
		ac.fail(w, providers.TypeGet, err)
		return
	}
	if users == nil {
		users = []*models.ProfileMetrics{}
	}
	ac.respond(w, providers.TypeGet, usersResponse{Count: len(users), Users: users})
}

func (ac *ApiController) DeleteData(w http.ResponseWriter, r *http.Request) {
	username, err := models.NormalizeUsername(r.PathValue("username"))
	if err != nil {
		ac.fail(w, providers.TypePost, err)
		return
	}
	if err := ac.service.Delete(r.Context(), username); err != nil {
		ac.fail(w, providers.TypePost, err)
		return
	}
	ac.respond(w, providers.TypePost, deleteResponse{Deleted: 1, User: username})
}

func (ac *ApiController) DeleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := ac.service.DeleteAll(r.Context())
	if err != nil {
		ac.fail(w, providers.TypePost, err)
		return
	}
	ac.respond(w, providers.TypePost, deleteResponse{Deleted: n})
}
