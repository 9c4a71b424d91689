package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	DefaultModel         = "openrouter/auto"
	DefaultMaxSteps      = 8
	DefaultTimeout       = 60 * time.Second
	DefaultBaseURL       = "https://openrouter.ai/api/v1"
	DefaultWebBytes      = 30 * 1024
	DefaultShellBytes    = 20 * 1024
	DefaultMaxFileBytes  = 256 * 1024
	DefaultMCPConfigFile = "mcp.json"
)

// ToolLimits controls max output sizes for tools.
type ToolLimits struct {
	WebMaxBytes   int `mapstructure:"web_max_bytes"`
	ShellMaxBytes int `mapstructure:"shell_max_bytes"`
	MaxFileBytes  int `mapstructure:"max_file_bytes"`
}

// Settings holds runtime configuration. Provider API keys that are absent
// mean the matching tools are disabled, never an error.
type Settings struct {
	DefaultModel  string
	SubAgentModel string
	BaseURL       string
	MaxSteps      int
	Timeout       time.Duration
	Verbose       bool
	JSON          bool

	JinaAPIKey    string
	TavilyAPIKey  string
	BFLAPIKey     string
	URLBoxAPIKey  string
	PixabayAPIKey string

	MCPConfigPath        string
	MaxDescriptionLength int
	EnableQueryTool      bool
	ToolLimits           ToolLimits
}

type rawSettings struct {
	DefaultModel         string     `mapstructure:"default_model"`
	SubAgentModel        string     `mapstructure:"sub_agent_model"`
	BaseURL              string     `mapstructure:"base_url"`
	MaxSteps             int        `mapstructure:"max_steps"`
	Timeout              string     `mapstructure:"timeout"`
	Verbose              bool       `mapstructure:"verbose"`
	JSON                 bool       `mapstructure:"json"`
	JinaAPIKey           string     `mapstructure:"jina_api_key"`
	TavilyAPIKey         string     `mapstructure:"tavily_api_key"`
	BFLAPIKey            string     `mapstructure:"bfl_api_key"`
	URLBoxAPIKey         string     `mapstructure:"urlbox_api_key"`
	PixabayAPIKey        string     `mapstructure:"pixabay_api_key"`
	MCPConfigPath        string     `mapstructure:"mcp_config_path"`
	MaxDescriptionLength int        `mapstructure:"max_description_length"`
	EnableQueryTool      bool       `mapstructure:"enable_query_tool"`
	ToolLimits           ToolLimits `mapstructure:"tool_limits"`
}

// Load resolves settings from defaults, a config file, a .env file in the
// working directory, environment variables, and flags.
func Load(cmd *cobra.Command) (Settings, error) {
	v := viper.New()
	v.SetEnvPrefix("LIGHTBLUE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("default_model", DefaultModel)
	v.SetDefault("sub_agent_model", "")
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("max_steps", DefaultMaxSteps)
	v.SetDefault("timeout", DefaultTimeout.String())
	v.SetDefault("verbose", false)
	v.SetDefault("json", false)
	v.SetDefault("mcp_config_path", defaultMCPPath())
	v.SetDefault("max_description_length", 0)
	v.SetDefault("enable_query_tool", false)
	v.SetDefault("tool_limits.web_max_bytes", DefaultWebBytes)
	v.SetDefault("tool_limits.shell_max_bytes", DefaultShellBytes)
	v.SetDefault("tool_limits.max_file_bytes", DefaultMaxFileBytes)

	if cmd != nil {
		_ = v.BindPFlag("default_model", cmd.Flags().Lookup("model"))
		_ = v.BindPFlag("max_steps", cmd.Flags().Lookup("max-steps"))
		_ = v.BindPFlag("timeout", cmd.Flags().Lookup("timeout"))
		_ = v.BindPFlag("verbose", cmd.Flags().Lookup("verbose"))
		_ = v.BindPFlag("json", cmd.Flags().Lookup("json"))
		_ = v.BindPFlag("max_description_length", cmd.Flags().Lookup("max-description-length"))
		_ = v.BindPFlag("enable_query_tool", cmd.Flags().Lookup("enable-query-tool"))
		_ = v.BindPFlag("mcp_config_path", cmd.Flags().Lookup("mcp-config"))
	}

	if err := loadConfigFile(v); err != nil {
		return Settings{}, err
	}
	if err := loadDotEnv(v); err != nil {
		return Settings{}, err
	}

	// Conventional unprefixed provider keys are honored when nothing else
	// set them.
	bindProviderKey(v, "jina_api_key", "JINA_API_KEY")
	bindProviderKey(v, "tavily_api_key", "TAVILY_API_KEY")
	bindProviderKey(v, "bfl_api_key", "BFL_API_KEY")
	bindProviderKey(v, "urlbox_api_key", "URLBOX_API_KEY")
	bindProviderKey(v, "pixabay_api_key", "PIXABAY_API_KEY")

	var raw rawSettings
	decoder, _ := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "mapstructure", Result: &raw, WeaklyTypedInput: true})
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return Settings{}, err
	}

	timeout := DefaultTimeout
	if raw.Timeout != "" {
		parsed, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return Settings{}, fmt.Errorf("invalid timeout duration: %w", err)
		}
		timeout = parsed
	}

	s := Settings{
		DefaultModel:         raw.DefaultModel,
		SubAgentModel:        raw.SubAgentModel,
		BaseURL:              raw.BaseURL,
		MaxSteps:             raw.MaxSteps,
		Timeout:              timeout,
		Verbose:              raw.Verbose,
		JSON:                 raw.JSON,
		JinaAPIKey:           raw.JinaAPIKey,
		TavilyAPIKey:         raw.TavilyAPIKey,
		BFLAPIKey:            raw.BFLAPIKey,
		URLBoxAPIKey:         raw.URLBoxAPIKey,
		PixabayAPIKey:        raw.PixabayAPIKey,
		MCPConfigPath:        raw.MCPConfigPath,
		MaxDescriptionLength: raw.MaxDescriptionLength,
		EnableQueryTool:      raw.EnableQueryTool,
		ToolLimits:           raw.ToolLimits,
	}

	if s.DefaultModel == "" {
		s.DefaultModel = DefaultModel
	}
	if s.SubAgentModel == "" {
		s.SubAgentModel = s.DefaultModel
	}
	if s.BaseURL == "" {
		s.BaseURL = DefaultBaseURL
	}
	if s.MaxSteps <= 0 {
		s.MaxSteps = DefaultMaxSteps
	}
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}
	if s.MaxDescriptionLength < 0 {
		s.MaxDescriptionLength = 0
	}
	if s.MCPConfigPath == "" {
		s.MCPConfigPath = defaultMCPPath()
	}
	if s.ToolLimits.WebMaxBytes <= 0 {
		s.ToolLimits.WebMaxBytes = DefaultWebBytes
	}
	if s.ToolLimits.ShellMaxBytes <= 0 {
		s.ToolLimits.ShellMaxBytes = DefaultShellBytes
	}
	if s.ToolLimits.MaxFileBytes <= 0 {
		s.ToolLimits.MaxFileBytes = DefaultMaxFileBytes
	}

	return s, nil
}

func bindProviderKey(v *viper.Viper, key, env string) {
	if v.GetString(key) != "" {
		return
	}
	if value := os.Getenv(env); value != "" {
		v.Set(key, value)
	}
}

func defaultMCPPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return DefaultMCPConfigFile
	}
	return filepath.Join(cwd, DefaultMCPConfigFile)
}

func loadConfigFile(v *viper.Viper) error {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	base := filepath.Join(configDir, "lightblue")
	candidates := []string{
		filepath.Join(base, "config.yaml"),
		filepath.Join(base, "config.yml"),
		filepath.Join(base, "config.json"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			return v.ReadInConfig()
		}
	}
	return nil
}

// loadDotEnv merges a .env file from the working directory, if present.
func loadDotEnv(v *viper.Viper) error {
	cwd, err := os.Getwd()
	if err != nil {
		return nil
	}
	path := filepath.Join(cwd, ".env")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	env := viper.New()
	env.SetConfigFile(path)
	env.SetConfigType("env")
	if err := env.ReadInConfig(); err != nil {
		return fmt.Errorf("reading .env: %w", err)
	}
	return v.MergeConfigMap(env.AllSettings())
}
