package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type AIConfig struct {
	Model         string `toml:"model"`
	ClaudeModel   string `toml:"claude_model"`
	GeminiModel   string `toml:"gemini_model"`
	OpenAIModel   string `toml:"openai_model"`
	OpenAIBaseURL string `toml:"openai_base_url,omitempty"`
}

type OllamaConfig struct {
	Endpoint string `toml:"endpoint"`
	Model    string `toml:"model"`
}

type BaselineConfig struct {
	UseRealTimeData bool     `toml:"use_real_time_data"`
	Threshold       string   `toml:"threshold"`
	TargetBrowsers  []string `toml:"target_browsers"`
	PrimaryURL      string   `toml:"primary_url,omitempty"`
	PrimaryQuery    string   `toml:"primary_query,omitempty"`
	SecondaryURLs   []string `toml:"secondary_urls,omitempty"`
	BundledPath     string   `toml:"bundled_path,omitempty"`
	CacheTTL        string   `toml:"cache_ttl,omitempty"`
}

type SecurityConfig struct {
	Method     string `toml:"method"`
	SSHKeyPath string `toml:"ssh_key_path,omitempty"`
}

type UserConfig struct {
	AI       AIConfig       `toml:"ai"`
	Ollama   OllamaConfig   `toml:"ollama"`
	Baseline BaselineConfig `toml:"baseline"`
	Security SecurityConfig `toml:"security"`
}

type Config struct {
	DataDirectory string

	Model         string
	ClaudeModel   string
	GeminiModel   string
	OpenAIModel   string
	OpenAIBaseURL string

	OllamaEndpoint string
	OllamaModel    string

	UseRealTimeData   bool
	BaselineThreshold string
	TargetBrowsers    []string
	PrimaryURL        string
	PrimaryQuery      string
	SecondaryURLs     []string
	BundledPath       string
	CacheTTL          time.Duration

	SecurityMethod  SecurityMethod
	SSHKeyPath      string
	CredentialStore *CredentialStore
}

var Debug = false
var DebugLog *log.Logger

// Debugf writes to the debug log when debug logging is enabled.
func Debugf(format string, args ...any) {
	if Debug && DebugLog != nil {
		DebugLog.Printf(format, args...)
	}
}

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyUserConfig(u *UserConfig) error {
	c.Model = u.AI.Model
	c.ClaudeModel = u.AI.ClaudeModel
	c.GeminiModel = u.AI.GeminiModel
	c.OpenAIModel = u.AI.OpenAIModel
	c.OpenAIBaseURL = u.AI.OpenAIBaseURL
	c.OllamaEndpoint = u.Ollama.Endpoint
	c.OllamaModel = u.Ollama.Model
	c.UseRealTimeData = u.Baseline.UseRealTimeData
	c.BaselineThreshold = u.Baseline.Threshold
	c.TargetBrowsers = u.Baseline.TargetBrowsers
	c.PrimaryURL = u.Baseline.PrimaryURL
	c.PrimaryQuery = u.Baseline.PrimaryQuery
	c.SecondaryURLs = u.Baseline.SecondaryURLs
	c.BundledPath = ExpandPath(u.Baseline.BundledPath)

	if u.Baseline.CacheTTL != "" {
		ttl, err := time.ParseDuration(u.Baseline.CacheTTL)
		if err != nil {
			return fmt.Errorf("invalid baseline.cache_ttl %q: %w", u.Baseline.CacheTTL, err)
		}
		c.CacheTTL = ttl
	}

	if u.Security.Method != "" {
		c.SecurityMethod = SecurityMethod(u.Security.Method)
	}
	c.SSHKeyPath = ExpandPath(u.Security.SSHKeyPath)

	return nil
}

func (c *Config) applyEnvOverrides() {
	if model := os.Getenv("BASELINEDEV_MODEL"); model != "" {
		c.Model = model
	}
	if endpoint := os.Getenv("BASELINEDEV_OLLAMA_ENDPOINT"); endpoint != "" {
		c.OllamaEndpoint = endpoint
	}
	if dataDir := os.Getenv("BASELINEDEV_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if rt := os.Getenv("BASELINEDEV_REALTIME"); rt != "" {
		c.UseRealTimeData = rt == "true" || rt == "1"
	}
}

// Validate checks option values that have a closed set of choices.
// The backend identifier is not checked here; the router reports unknown
// backends when it resolves one.
func (c *Config) Validate() error {
	switch c.BaselineThreshold {
	case "high", "low":
	default:
		return fmt.Errorf("baseline.threshold must be \"high\" or \"low\", got %q", c.BaselineThreshold)
	}

	switch c.SecurityMethod {
	case SecurityPlainText:
	case SecuritySSHKey:
		if c.SSHKeyPath == "" {
			return fmt.Errorf("security.ssh_key_path is required for method %q", SecuritySSHKey)
		}
	default:
		return fmt.Errorf("unknown security method: %s", c.SecurityMethod)
	}

	if c.CacheTTL <= 0 {
		return fmt.Errorf("baseline.cache_ttl must be positive")
	}

	return nil
}

func CheckDebug() bool {
	debug := os.Getenv("BASELINEDEV_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// May contain request metadata; never secrets.
	writer := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}

	DebugLog = log.New(writer, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (BASELINEDEV_DEBUG=%s) ===", os.Getenv("BASELINEDEV_DEBUG"))
	DebugLog.Printf("Log path: %s", logPath)
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	systemCfg, err := LoadSystemConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load system config: %w", err)
	}
	cfg.DataDirectory = systemCfg.DataDirectory
	if dataDir := os.Getenv("BASELINEDEV_DATA_DIR"); dataDir != "" {
		cfg.DataDirectory = dataDir
	}

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// Ensure data directory has correct permissions (fix if needed)
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	if err := cfg.applyUserConfig(userCfg); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()
	cfg.Model = strings.ToLower(strings.TrimSpace(cfg.Model))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store := NewCredentialStore(cfg.SecurityMethod, cfg.SSHKeyPath)
	if passphrase := os.Getenv("BASELINEDEV_SSH_PASSPHRASE"); passphrase != "" {
		store.SetPassphrase(passphrase)
	}
	if err := store.Load(cfg.DataDir()); err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	cfg.CredentialStore = store

	return cfg, nil
}
