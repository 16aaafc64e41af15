// Package config defines the application's configuration surface. Every
// option has a default and a validated range; validation runs eagerly at
// load time.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration. It is built once at
// startup from defaults, an optional config file, and MAGPIE_* environment
// variables, validated eagerly, and treated as immutable afterwards.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Twitter  TwitterConfig  `mapstructure:"twitter" yaml:"twitter"`
	Engage   EngageConfig   `mapstructure:"engage" yaml:"engage"`
	Schedule ScheduleConfig `mapstructure:"schedule" yaml:"schedule"`
	Content  ContentConfig  `mapstructure:"content" yaml:"content"`
	Browser  BrowserConfig  `mapstructure:"browser" yaml:"browser"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// TwitterConfig holds the platform API credentials and client tuning. The
// four credential values authenticate a single account via OAuth 1.0a.
type TwitterConfig struct {
	APIKey       string `mapstructure:"api_key" yaml:"-"`
	APISecret    string `mapstructure:"api_secret" yaml:"-"`
	AccessToken  string `mapstructure:"access_token" yaml:"-"`
	AccessSecret string `mapstructure:"access_secret" yaml:"-"`
	BaseURL      string `mapstructure:"base_url" yaml:"base_url"`
	// RequestsPerSecond gates every outbound API request. This is cooperative
	// pacing on top of the platform's own rate limits, not a substitute.
	RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// EngageConfig parameterizes one interaction cycle.
type EngageConfig struct {
	// Keywords is a comma-separated list; at least one keyword is required.
	Keywords string `mapstructure:"keywords" yaml:"keywords"`
	// ActionCap bounds the number of likes per cycle. Retweets and replies
	// are layered on liked candidates and are not counted against the cap.
	ActionCap          int           `mapstructure:"action_cap" yaml:"action_cap"`
	RetweetProbability float64       `mapstructure:"retweet_probability" yaml:"retweet_probability"`
	ReplyProbability   float64       `mapstructure:"reply_probability" yaml:"reply_probability"`
	MaxResults         int           `mapstructure:"max_results" yaml:"max_results"`
	Language           string        `mapstructure:"language" yaml:"language"`
	BaseDelay          time.Duration `mapstructure:"base_delay" yaml:"base_delay"`
	DelayJitter        time.Duration `mapstructure:"delay_jitter" yaml:"delay_jitter"`
	// PostInCycle additionally publishes one generated status at the end of
	// each cycle, independent of the scheduled post task.
	PostInCycle bool `mapstructure:"post_in_cycle" yaml:"post_in_cycle"`
}

// KeywordList splits the comma-separated keyword option, dropping empties.
func (e EngageConfig) KeywordList() []string {
	parts := strings.Split(e.Keywords, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if kw := strings.TrimSpace(p); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// ScheduleConfig holds the fixed-interval trigger settings.
type ScheduleConfig struct {
	EngageInterval time.Duration `mapstructure:"engage_interval" yaml:"engage_interval"`
	PostInterval   time.Duration `mapstructure:"post_interval" yaml:"post_interval"`
	PostEnabled    bool          `mapstructure:"post_enabled" yaml:"post_enabled"`
}

// ContentConfig configures the generative text backend and the topic list
// used for standalone posts. An empty APIKey degrades the provider to
// fallback-only operation rather than failing startup.
type ContentConfig struct {
	Model           string        `mapstructure:"model" yaml:"model"`
	APIKey          string        `mapstructure:"api_key" yaml:"-"`
	Temperature     float32       `mapstructure:"temperature" yaml:"temperature"`
	MaxOutputTokens int32         `mapstructure:"max_output_tokens" yaml:"max_output_tokens"`
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Topics          []string      `mapstructure:"topics" yaml:"topics"`
}

// BrowserConfig holds settings for the browser-session login variant.
type BrowserConfig struct {
	Headless     bool          `mapstructure:"headless" yaml:"headless"`
	LoginURL     string        `mapstructure:"login_url" yaml:"login_url"`
	HomeURL      string        `mapstructure:"home_url" yaml:"home_url"`
	CookieFile   string        `mapstructure:"cookie_file" yaml:"cookie_file"`
	LoginTimeout time.Duration `mapstructure:"login_timeout" yaml:"login_timeout"`
}

// SetDefaults initializes default values for every recognized option.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "magpie")
	v.SetDefault("logger.log_file", "magpie.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Twitter --
	v.SetDefault("twitter.base_url", "https://api.twitter.com")
	v.SetDefault("twitter.requests_per_second", 1.0)
	v.SetDefault("twitter.timeout", "30s")

	// -- Engage --
	v.SetDefault("engage.keywords", "golang,opensource")
	v.SetDefault("engage.action_cap", 5)
	v.SetDefault("engage.retweet_probability", 0.25)
	v.SetDefault("engage.reply_probability", 0.15)
	v.SetDefault("engage.max_results", 10)
	v.SetDefault("engage.language", "en")
	v.SetDefault("engage.base_delay", "5s")
	v.SetDefault("engage.delay_jitter", "5s")
	v.SetDefault("engage.post_in_cycle", false)

	// -- Schedule --
	v.SetDefault("schedule.engage_interval", "2h")
	v.SetDefault("schedule.post_interval", "6h")
	v.SetDefault("schedule.post_enabled", true)

	// -- Content --
	v.SetDefault("content.model", "gemini-2.5-flash")
	v.SetDefault("content.temperature", 0.9)
	v.SetDefault("content.max_output_tokens", 256)
	v.SetDefault("content.timeout", "45s")
	v.SetDefault("content.topics", []string{
		"technology",
		"open source software",
		"artificial intelligence",
		"software engineering",
		"developer productivity",
	})

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.login_url", "https://x.com/i/flow/login")
	v.SetDefault("browser.home_url", "https://x.com/home")
	v.SetDefault("browser.cookie_file", "~/.magpie/cookies.json")
	v.SetDefault("browser.login_timeout", "4m")
}

// NewFromViper creates a validated configuration instance from a viper
// object. Sensitive values are bound to environment variables here so they
// never need to live in the config file.
func NewFromViper(v *viper.Viper) (*Config, error) {
	v.BindEnv("twitter.api_key", "MAGPIE_TWITTER_API_KEY")
	v.BindEnv("twitter.api_secret", "MAGPIE_TWITTER_API_SECRET")
	v.BindEnv("twitter.access_token", "MAGPIE_TWITTER_ACCESS_TOKEN")
	v.BindEnv("twitter.access_secret", "MAGPIE_TWITTER_ACCESS_SECRET")
	v.BindEnv("content.api_key", "MAGPIE_CONTENT_API_KEY", "GEMINI_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// NewDefaultConfig returns a configuration populated with default values.
// Credentials are empty, so the result does not pass CredentialsValid.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// placeholderMarkers flag credential values copied verbatim from templates.
var placeholderMarkers = []string{"YOUR_", "CHANGEME", "REPLACE_ME", "XXXX"}

func isPlaceholder(s string) bool {
	upper := strings.ToUpper(strings.TrimSpace(s))
	if upper == "" {
		return true
	}
	for _, marker := range placeholderMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

// CredentialsValid reports whether all four platform credentials are present
// and none of them looks like a template placeholder.
func (t TwitterConfig) CredentialsValid() error {
	creds := map[string]string{
		"twitter.api_key":       t.APIKey,
		"twitter.api_secret":    t.APISecret,
		"twitter.access_token":  t.AccessToken,
		"twitter.access_secret": t.AccessSecret,
	}
	for name, val := range creds {
		if isPlaceholder(val) {
			return fmt.Errorf("%s is missing or still set to a placeholder value", name)
		}
	}
	return nil
}

// Validate checks every option for sane values. Credential presence is
// validated separately by CredentialsValid so that commands which never
// touch the API (e.g. login --check) can still run.
func (c *Config) Validate() error {
	if len(c.Engage.KeywordList()) == 0 {
		return fmt.Errorf("engage.keywords must contain at least one keyword")
	}
	if c.Engage.ActionCap < 0 {
		return fmt.Errorf("engage.action_cap must be >= 0")
	}
	if c.Engage.RetweetProbability < 0 || c.Engage.RetweetProbability > 1 {
		return fmt.Errorf("engage.retweet_probability must be within [0, 1]")
	}
	if c.Engage.ReplyProbability < 0 || c.Engage.ReplyProbability > 1 {
		return fmt.Errorf("engage.reply_probability must be within [0, 1]")
	}
	if c.Engage.MaxResults < 10 || c.Engage.MaxResults > 100 {
		// The recent-search endpoint rejects max_results outside [10, 100].
		return fmt.Errorf("engage.max_results must be within [10, 100]")
	}
	if c.Engage.Language == "" {
		return fmt.Errorf("engage.language must not be empty")
	}
	if c.Engage.BaseDelay <= 0 {
		return fmt.Errorf("engage.base_delay must be a positive duration")
	}
	if c.Engage.DelayJitter < 0 {
		return fmt.Errorf("engage.delay_jitter must not be negative")
	}
	if c.Twitter.RequestsPerSecond <= 0 || c.Twitter.RequestsPerSecond > 50 {
		return fmt.Errorf("twitter.requests_per_second must be within (0, 50]")
	}
	if c.Twitter.BaseURL == "" {
		return fmt.Errorf("twitter.base_url must not be empty")
	}
	if c.Schedule.EngageInterval < time.Minute {
		return fmt.Errorf("schedule.engage_interval must be at least 1m")
	}
	if c.Schedule.PostInterval < time.Minute {
		return fmt.Errorf("schedule.post_interval must be at least 1m")
	}
	if c.Content.Temperature < 0 || c.Content.Temperature > 2 {
		return fmt.Errorf("content.temperature must be within [0, 2]")
	}
	if c.Content.MaxOutputTokens <= 0 {
		return fmt.Errorf("content.max_output_tokens must be a positive integer")
	}
	if len(c.Content.Topics) == 0 {
		return fmt.Errorf("content.topics must contain at least one topic")
	}
	if c.Browser.LoginTimeout <= 0 {
		return fmt.Errorf("browser.login_timeout must be a positive duration")
	}
	return nil
}
