// Package config loads the daemon configuration from a YAML file.
// Secrets (API keys, tokens) are taken from the environment so they never
// land in the config file or the repository.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	GitHub GitHubConfig `yaml:"github"`
	OpenAI OpenAIConfig `yaml:"openai"`
	Media  MediaConfig  `yaml:"media"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	// JWTSecret is read from JARVIS_JWT_SECRET; an ephemeral secret is
	// generated when unset, which invalidates sessions on restart.
	JWTSecret string `yaml:"-"`
}

type GitHubConfig struct {
	// Repo is the "owner/name" slug holding the user document.
	Repo     string `yaml:"repo"`
	FilePath string `yaml:"file_path"`
	Token    string `yaml:"-"`
}

type OpenAIConfig struct {
	APIKey             string `yaml:"-"`
	TranscriptionModel string `yaml:"transcription_model"`
	ChatModel          string `yaml:"chat_model"`
	// Temperatures are pointers so an explicit 0 in the file is
	// distinguishable from unset; Validate fills in the defaults.
	AnalysisTemp      *float32 `yaml:"analysis_temperature"`
	AnalysisMaxTokens int      `yaml:"analysis_max_tokens"`
	AnswerTemp        *float32 `yaml:"answer_temperature"`
	AnswerMaxTokens   int      `yaml:"answer_max_tokens"`
}

type MediaConfig struct {
	TempDir       string `yaml:"temp_dir"`
	YTDLPBinary   string `yaml:"ytdlp_binary"`
	FFmpegBinary  string `yaml:"ffmpeg_binary"`
	MaxUploadMB   int64  `yaml:"max_upload_mb"`
}

type LogConfig struct {
	Dir string `yaml:"dir"`
}

// Load reads the YAML file at path, overlays environment secrets, and
// applies defaults. A missing file is an error; a missing GitHub token or
// OpenAI key is reported by Validate, not here.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.Server.JWTSecret = os.Getenv("JARVIS_JWT_SECRET")
	cfg.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and fills defaults in place.
func (c *Config) Validate() error {
	if c.GitHub.Repo == "" {
		return fmt.Errorf("github.repo is required")
	}
	if !strings.Contains(c.GitHub.Repo, "/") {
		return fmt.Errorf("github.repo must be owner/name, got %q", c.GitHub.Repo)
	}
	if c.GitHub.FilePath == "" {
		return fmt.Errorf("github.file_path is required")
	}
	if c.GitHub.Token == "" {
		return fmt.Errorf("GITHUB_TOKEN environment variable is required")
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}

	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":14480"
	}
	if c.OpenAI.TranscriptionModel == "" {
		c.OpenAI.TranscriptionModel = "whisper-1"
	}
	if c.OpenAI.ChatModel == "" {
		c.OpenAI.ChatModel = "gpt-4o"
	}
	if c.OpenAI.AnalysisTemp == nil {
		c.OpenAI.AnalysisTemp = f32ptr(0.7)
	}
	if c.OpenAI.AnalysisMaxTokens == 0 {
		c.OpenAI.AnalysisMaxTokens = 2000
	}
	if c.OpenAI.AnswerTemp == nil {
		c.OpenAI.AnswerTemp = f32ptr(0.5)
	}
	if c.OpenAI.AnswerMaxTokens == 0 {
		c.OpenAI.AnswerMaxTokens = 700
	}
	if c.Media.TempDir == "" {
		c.Media.TempDir = "data/tmp"
	}
	if c.Media.YTDLPBinary == "" {
		c.Media.YTDLPBinary = "yt-dlp"
	}
	if c.Media.FFmpegBinary == "" {
		c.Media.FFmpegBinary = "ffmpeg"
	}
	if c.Media.MaxUploadMB == 0 {
		c.Media.MaxUploadMB = 200
	}
	return nil
}

func f32ptr(v float32) *float32 { return &v }

// Owner and Name split the owner/name repo slug.
func (g GitHubConfig) Owner() string {
	owner, _, _ := strings.Cut(g.Repo, "/")
	return owner
}

func (g GitHubConfig) Name() string {
	_, name, _ := strings.Cut(g.Repo, "/")
	return name
}
