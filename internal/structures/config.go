package structures

import (
	"net/http"
	"time"
)

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Route struct {
	Url     string
	Handler http.Handler
}

type Server struct {
	Host           string `yaml:"host" validate:"required"`
	Port           int    `yaml:"port" validate:"required|uint|min:1"`
	MaxUploadBytes int64  `yaml:"maxUploadBytes"`
}

type Persistence struct {
	FilePath     string        `yaml:"filePath" validate:"required|unixPath"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type LockConfig struct {
	Driver    string        `yaml:"driver" validate:"in:local,redis"`
	RedisAddr string        `yaml:"redisAddr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	TTL       time.Duration `yaml:"ttl"`
}

type StorageConfig struct {
	Driver      string     `yaml:"driver" validate:"in:memory,postgres"`
	DatabaseURL string     `yaml:"databaseURL"`
	Lock        LockConfig `yaml:"lock"`
}

type ScreenshotConfig struct {
	Driver     string        `yaml:"driver" validate:"in:local,s3"`
	Dir        string        `yaml:"dir"`
	Bucket     string        `yaml:"bucket"`
	Region     string        `yaml:"region"`
	Endpoint   string        `yaml:"endpoint"`
	AccessKey  string        `yaml:"accessKey"`
	SecretKey  string        `yaml:"secretKey"`
	PublicURL  string        `yaml:"publicURL"`
	PresignTTL time.Duration `yaml:"presignTTL"`
}

type AcquisitionConfig struct {
	OCRURL     string        `yaml:"ocrURL"`
	ProfileURL string        `yaml:"profileURL"`
	Timeout    time.Duration `yaml:"timeout"`
	UserAgent  string        `yaml:"userAgent"`
	Attempts   uint          `yaml:"attempts"`
}

type LLMConfig struct {
	Enabled   bool          `yaml:"enabled"`
	BaseURL   string        `yaml:"baseURL"`
	APIKey    string        `yaml:"apiKey"`
	Model     string        `yaml:"model"`
	Timeout   time.Duration `yaml:"timeout"`
	MaxTokens int           `yaml:"maxTokens"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server            `yaml:"webServer"`
	Persistence Persistence       `yaml:"persistence"`
	Logger      LoggerConfig      `yaml:"logger"`
	Cache       CacheConfig       `yaml:"cache"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Storage     StorageConfig     `yaml:"storage"`
	Screenshots ScreenshotConfig  `yaml:"screenshots"`
	Acquisition AcquisitionConfig `yaml:"acquisition"`
	LLM         LLMConfig         `yaml:"llm"`
}
