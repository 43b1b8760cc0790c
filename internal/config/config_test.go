package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: Config{
				GitHub: GitHubConfig{Repo: "acme/users-store", FilePath: "users.json", Token: "t"},
				OpenAI: OpenAIConfig{APIKey: "k"},
			},
			wantErr: false,
		},
		{
			name: "missing repo",
			config: Config{
				GitHub: GitHubConfig{FilePath: "users.json", Token: "t"},
				OpenAI: OpenAIConfig{APIKey: "k"},
			},
			wantErr: true,
		},
		{
			name: "repo without owner",
			config: Config{
				GitHub: GitHubConfig{Repo: "users-store", FilePath: "users.json", Token: "t"},
				OpenAI: OpenAIConfig{APIKey: "k"},
			},
			wantErr: true,
		},
		{
			name: "missing github token",
			config: Config{
				GitHub: GitHubConfig{Repo: "acme/users-store", FilePath: "users.json"},
				OpenAI: OpenAIConfig{APIKey: "k"},
			},
			wantErr: true,
		},
		{
			name: "missing openai key",
			config: Config{
				GitHub: GitHubConfig{Repo: "acme/users-store", FilePath: "users.json", Token: "t"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := Config{
		GitHub: GitHubConfig{Repo: "acme/users-store", FilePath: "users.json", Token: "t"},
		OpenAI: OpenAIConfig{APIKey: "k"},
	}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":14480", cfg.Server.ListenAddr)
	assert.Equal(t, "whisper-1", cfg.OpenAI.TranscriptionModel)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.ChatModel)
	require.NotNil(t, cfg.OpenAI.AnalysisTemp)
	assert.InDelta(t, 0.7, *cfg.OpenAI.AnalysisTemp, 0.001)
	assert.Equal(t, 2000, cfg.OpenAI.AnalysisMaxTokens)
	require.NotNil(t, cfg.OpenAI.AnswerTemp)
	assert.InDelta(t, 0.5, *cfg.OpenAI.AnswerTemp, 0.001)
	assert.Equal(t, 700, cfg.OpenAI.AnswerMaxTokens)
	assert.Equal(t, "yt-dlp", cfg.Media.YTDLPBinary)
	assert.Equal(t, int64(200), cfg.Media.MaxUploadMB)
}

func TestValidateKeepsExplicitZeroTemperature(t *testing.T) {
	zero := float32(0)
	cfg := Config{
		GitHub: GitHubConfig{Repo: "acme/users-store", FilePath: "users.json", Token: "t"},
		OpenAI: OpenAIConfig{APIKey: "k", AnalysisTemp: &zero, AnswerTemp: &zero},
	}
	require.NoError(t, cfg.Validate())

	assert.InDelta(t, 0.0, *cfg.OpenAI.AnalysisTemp, 0.001)
	assert.InDelta(t, 0.0, *cfg.OpenAI.AnswerTemp, 0.001)
}

func TestLoad(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "gh-token")
	t.Setenv("OPENAI_API_KEY", "oa-key")
	t.Setenv("JARVIS_JWT_SECRET", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  listen_addr: ":9000"

github:
  repo: "acme/users-store"
  file_path: "data/users.json"

openai:
  chat_model: "gpt-4o-mini"

media:
  temp_dir: "/tmp/jarvis"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.ListenAddr)
	assert.Equal(t, "acme", cfg.GitHub.Owner())
	assert.Equal(t, "users-store", cfg.GitHub.Name())
	assert.Equal(t, "data/users.json", cfg.GitHub.FilePath)
	assert.Equal(t, "gh-token", cfg.GitHub.Token)
	assert.Equal(t, "oa-key", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.ChatModel)
	assert.Equal(t, "/tmp/jarvis", cfg.Media.TempDir)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	assert.Error(t, err)
}
