package providers

import (
	"errors"
	"igmetrics/internal/structures"
	"path/filepath"
	"strings"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	v.AddValidator("unixPath", isUnixPath)
	if !v.Validate() {
		return v.Errors
	}
	return cv.validateDrivers()
}

// validateDrivers checks settings that only matter for the selected backends.
func (cv *CnfValidator) validateDrivers() error {
	c := cv.conf
	var errs []error
	if c.Storage.Driver == "postgres" && c.Storage.DatabaseURL == "" {
		errs = append(errs, errors.New("storage.databaseURL is required for the postgres driver"))
	}
	if c.Storage.Lock.Driver == "redis" && c.Storage.Lock.RedisAddr == "" {
		errs = append(errs, errors.New("storage.lock.redisAddr is required for the redis lock"))
	}
	if c.Screenshots.Driver == "s3" && c.Screenshots.Bucket == "" {
		errs = append(errs, errors.New("screenshots.bucket is required for the s3 driver"))
	}
	if c.LLM.Enabled && (c.LLM.BaseURL == "" || c.LLM.Model == "") {
		errs = append(errs, errors.New("llm.baseURL and llm.model are required when llm is enabled"))
	}
	return errors.Join(errs...)
}

func isUnixPath(val interface{}) bool {
	s, ok := val.(string)
	if !ok || s == "" || strings.ContainsRune(s, 0) {
		return false
	}
	return filepath.Clean(s) != "."
}
