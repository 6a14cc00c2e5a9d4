package config

import (
	"fmt"
	"time"
)

type Config struct {
	Logging       LoggingConfig       `yaml:"logging"`
	Paths         PathsConfig         `yaml:"paths"`
	Database      DatabaseConfig      `yaml:"database"`
	Cache         CacheConfig         `yaml:"cache"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	LLM           LLMConfig           `yaml:"llm"`
	Export        ExportConfig        `yaml:"export"`
	Performance   PerformanceConfig   `yaml:"performance"`
	HTTP          HTTPConfig          `yaml:"http"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PathsConfig struct {
	Inbox     string `yaml:"inbox"`
	Processed string `yaml:"processed"`
	Scratch   string `yaml:"scratch"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type CacheConfig struct {
	// Enabled turns on debug/replay memoisation of stage results.
	Enabled bool        `yaml:"enabled"`
	Backend string      `yaml:"backend"`
	Dir     string      `yaml:"dir"`
	Redis   RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

type TranscriptionConfig struct {
	APIKey       string        `yaml:"api_key"`
	Language     string        `yaml:"language"`
	SpeechModel  string        `yaml:"speech_model"`
	FFmpegBinary string        `yaml:"ffmpeg_binary"`
	SampleRate   int           `yaml:"sample_rate"`
	Timeout      time.Duration `yaml:"timeout"`
}

type LLMConfig struct {
	APIKeys     []string      `yaml:"api_keys"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	Cooldown    time.Duration `yaml:"cooldown"`
	Timeout     time.Duration `yaml:"timeout"`
	ExamplesDir string        `yaml:"examples_dir"`
	Budgets     TokenBudgets  `yaml:"budgets"`
}

// TokenBudgets caps the output tokens of each prompt.
type TokenBudgets struct {
	SpeakerMapping int `yaml:"speaker_mapping"`
	Agenda         int `yaml:"agenda"`
	Protocol       int `yaml:"protocol"`
	Filename       int `yaml:"filename"`
	InferLanguage  int `yaml:"infer_language"`
	EnsureLanguage int `yaml:"ensure_language"`
	EnsureMarkdown int `yaml:"ensure_markdown"`
}

type ExportConfig struct {
	Backend string        `yaml:"backend"`
	Folder  string        `yaml:"folder"`
	Sharing string        `yaml:"sharing"`
	Font    string        `yaml:"font"`
	Timeout time.Duration `yaml:"timeout"`
	S3      S3Config      `yaml:"s3"`
	Local   LocalConfig   `yaml:"local"`
}

type S3Config struct {
	Bucket         string `yaml:"bucket"`
	Region         string `yaml:"region"`
	Endpoint       string `yaml:"endpoint"`
	AccessKey      string `yaml:"access_key"`
	SecretKey      string `yaml:"secret_key"`
	ForcePathStyle bool   `yaml:"force_path_style"`
}

type LocalConfig struct {
	Dir     string `yaml:"dir"`
	BaseURL string `yaml:"base_url"`
}

type PerformanceConfig struct {
	MaxConcurrent int           `yaml:"max_concurrent"`
	PollInterval  time.Duration `yaml:"poll_interval"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// Sharing policies for exported documents.
const (
	SharingLink    = "link"
	SharingPrivate = "private"
)

func (c *Config) Validate() error {
	if c.Paths.Scratch == "" {
		return fmt.Errorf("paths.scratch is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Transcription.APIKey == "" {
		return fmt.Errorf("transcription.api_key is required (or ASSEMBLYAI_API_KEY)")
	}
	if len(c.LLM.APIKeys) == 0 {
		return fmt.Errorf("llm.api_keys is required (or GEMINI_API_KEYS)")
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Paths.Inbox == "" {
		c.Paths.Inbox = "data/inbox"
	}
	if c.Paths.Processed == "" {
		c.Paths.Processed = "data/processed"
	}

	if err := c.validateCache(); err != nil {
		return err
	}
	c.applyTranscriptionDefaults()
	c.applyLLMDefaults()
	if err := c.validateExport(); err != nil {
		return err
	}

	if c.Performance.MaxConcurrent <= 0 {
		c.Performance.MaxConcurrent = 1
	}
	if c.Performance.PollInterval <= 0 {
		c.Performance.PollInterval = 5 * time.Second
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}

	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Backend == "" {
		c.Cache.Backend = "file"
	}
	switch c.Cache.Backend {
	case "file":
		if c.Cache.Dir == "" {
			c.Cache.Dir = "cache"
		}
	case "redis":
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache.redis.addr is required for the redis cache backend")
		}
		if c.Cache.Redis.KeyPrefix == "" {
			c.Cache.Redis.KeyPrefix = "protocol-flow"
		}
	case "memory":
	default:
		return fmt.Errorf("cache.backend must be one of [file, redis, memory] (got: %s)", c.Cache.Backend)
	}
	return nil
}

func (c *Config) applyTranscriptionDefaults() {
	t := &c.Transcription
	if t.Language == "" {
		t.Language = "de"
	}
	if t.SpeechModel == "" {
		t.SpeechModel = "best"
	}
	if t.FFmpegBinary == "" {
		t.FFmpegBinary = "ffmpeg"
	}
	if t.SampleRate == 0 {
		t.SampleRate = 16000
	}
	if t.Timeout == 0 {
		t.Timeout = 2 * time.Hour
	}
}

func (c *Config) applyLLMDefaults() {
	l := &c.LLM
	if l.Model == "" {
		l.Model = "gemini-2.5-flash"
	}
	if l.Temperature == 0 {
		l.Temperature = 1.0
	}
	if l.Cooldown == 0 {
		l.Cooldown = 30 * time.Second
	}
	if l.Timeout == 0 {
		l.Timeout = 5 * time.Minute
	}

	b := &l.Budgets
	setDefault(&b.SpeakerMapping, 1000)
	setDefault(&b.Agenda, 1000)
	setDefault(&b.Protocol, 5000)
	setDefault(&b.Filename, 100)
	setDefault(&b.InferLanguage, 16)
	setDefault(&b.EnsureLanguage, 5000)
	setDefault(&b.EnsureMarkdown, 5000)
}

func (c *Config) validateExport() error {
	e := &c.Export
	if e.Backend == "" {
		e.Backend = "local"
	}
	if e.Sharing == "" {
		e.Sharing = SharingLink
	}
	if e.Sharing != SharingLink && e.Sharing != SharingPrivate {
		return fmt.Errorf("export.sharing must be one of [link, private] (got: %s)", e.Sharing)
	}
	if e.Font == "" {
		e.Font = "Arial"
	}
	if e.Timeout == 0 {
		e.Timeout = 5 * time.Minute
	}

	switch e.Backend {
	case "s3":
		if e.S3.Bucket == "" {
			return fmt.Errorf("export.s3.bucket is required for the s3 backend")
		}
		if e.S3.Region == "" {
			e.S3.Region = "us-east-1"
		}
	case "local":
		if e.Local.Dir == "" {
			e.Local.Dir = "data/documents"
		}
	default:
		return fmt.Errorf("export.backend must be one of [s3, local] (got: %s)", e.Backend)
	}
	return nil
}

func setDefault(v *int, def int) {
	if *v <= 0 {
		*v = def
	}
}
