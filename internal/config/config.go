package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/decyphertek-ai/adminotaur/internal/branding"
	"github.com/decyphertek-ai/adminotaur/internal/userdata"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Settings is the typed view of the host configuration.
type Settings struct {
	StoreRoot        string          `mapstructure:"store_root"`
	LegacySkillsRoot string          `mapstructure:"legacy_skills_root"`
	Skills           SkillsSettings  `mapstructure:"skills"`
	Apps             AppsSettings    `mapstructure:"apps"`
	Invoke           InvokeSettings  `mapstructure:"invoke"`
	Health           HealthSettings  `mapstructure:"health"`
	AI               AISettings      `mapstructure:"ai"`
	Journal          JournalSettings `mapstructure:"journal"`
	Logging          LoggingSettings `mapstructure:"logging"`
}

// SkillsSettings controls skill discovery.
type SkillsSettings struct {
	BinaryExt   string            `mapstructure:"binary_ext"`
	ScriptExt   string            `mapstructure:"script_ext"`
	Aliases     map[string]string `mapstructure:"aliases"` // directory name -> entry-point stem
	Interpreter string            `mapstructure:"interpreter"`
}

// AppsSettings controls application discovery.
type AppsSettings struct {
	EntryFiles []string `mapstructure:"entry_files"`
}

// InvokeSettings bounds a single skill invocation.
type InvokeSettings struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	KillGrace     time.Duration `mapstructure:"kill_grace"`
	StderrPreview int           `mapstructure:"stderr_preview"`
}

// HealthSettings controls the health harness.
type HealthSettings struct {
	Parallelism int               `mapstructure:"parallelism"`
	Probes      map[string]string `mapstructure:"probes"`
}

// AISettings describes the external completion endpoint probed by the harness.
type AISettings struct {
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	APIKeyName  string        `mapstructure:"api_key_name"`
	ProbePrompt string        `mapstructure:"probe_prompt"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// JournalSettings controls the invocation journal.
type JournalSettings struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingSettings controls the structured logger.
type LoggingSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Dir returns the path to the config directory (~/.decyphertek-ai/).
func Dir() string {
	dir, err := userdata.GetHomeRoot()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return dir
}

// FilePath returns the full path to the config file.
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("store_root", "")
	viper.SetDefault("legacy_skills_root", "")
	viper.SetDefault("skills.binary_ext", ".mcp")
	viper.SetDefault("skills.script_ext", ".py")
	viper.SetDefault("skills.aliases", map[string]string{"web-search": "web"})
	viper.SetDefault("skills.interpreter", "")
	viper.SetDefault("apps.entry_files", []string{"main.py"})
	viper.SetDefault("invoke.timeout", 30*time.Second)
	viper.SetDefault("invoke.kill_grace", 3*time.Second)
	viper.SetDefault("invoke.stderr_preview", 400)
	viper.SetDefault("health.parallelism", 1)
	viper.SetDefault("health.probes", map[string]string{
		"web-search": "web search Describe Neuromancer 1984",
		"rag":        "rag list_documents",
	})
	viper.SetDefault("ai.base_url", "https://openrouter.ai/api/v1")
	viper.SetDefault("ai.model", "qwen/qwen-2.5-coder-32b-instruct")
	viper.SetDefault("ai.api_key_name", "OPENROUTER_API_KEY")
	viper.SetDefault("ai.probe_prompt", "Can you explain recursion?")
	viper.SetDefault("ai.timeout", 20*time.Second)
	viper.SetDefault("journal.enabled", false)
	viper.SetDefault("journal.path", "")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
}

// Load initializes Viper from defaults, the config file and the environment,
// and returns the typed settings. A missing config file is not an error.
func Load() (*Settings, error) {
	setDefaults()
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(FilePath()); statErr == nil {
			return nil, fmt.Errorf("reading config file %s: %w", FilePath(), err)
		}
	}

	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that the settings are usable.
func (s *Settings) Validate() error {
	if s.Invoke.Timeout <= 0 {
		return fmt.Errorf("invoke.timeout must be positive")
	}
	if s.Invoke.KillGrace <= 0 {
		return fmt.Errorf("invoke.kill_grace must be positive")
	}
	if s.Health.Parallelism < 1 {
		return fmt.Errorf("health.parallelism must be at least 1")
	}
	if s.AI.Timeout <= 0 {
		return fmt.Errorf("ai.timeout must be positive")
	}
	for key, ext := range map[string]string{"skills.binary_ext": s.Skills.BinaryExt, "skills.script_ext": s.Skills.ScriptExt} {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("%s must start with a dot, got %q", key, ext)
		}
	}
	if s.Skills.BinaryExt == s.Skills.ScriptExt {
		return fmt.Errorf("skills.binary_ext and skills.script_ext must differ")
	}
	return nil
}

// ResolveStoreRoot returns the configured store root or the default location.
func (s *Settings) ResolveStoreRoot() (string, error) {
	if s.StoreRoot != "" {
		return s.StoreRoot, nil
	}
	return userdata.GetStoreRoot()
}

// ResolveJournalPath returns the configured journal path or the default location.
func (s *Settings) ResolveJournalPath() (string, error) {
	if s.Journal.Path != "" {
		return s.Journal.Path, nil
	}
	return userdata.GetJournalPath()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
