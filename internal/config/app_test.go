package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	resetViperForTest(t)
	SetDefaults()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, TransportInProcess, cfg.Tools.Transport)
	assert.Equal(t, 10, cfg.Agent.MaxIterations)
	assert.Equal(t, 200, cfg.Agent.HistoryLimit)
	assert.True(t, cfg.Chat.AlwaysSignalUpdate)
	assert.True(t, cfg.Tasks.Onboarding)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"unknown transport", "tools.transport", "grpc"},
		{"zero iterations", "agent.maxIterations", 0},
		{"port out of range", "server.port", 70000},
		{"bad log level", "log.level", "trace"},
		{"malformed base url", "api.baseURL", "not a url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViperForTest(t)
			SetDefaults()
			viper.Set(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestResolveBaseURL(t *testing.T) {
	tests := []struct {
		name   string
		cfg    AppConfig
		vercel string
		want   string
	}{
		{
			name: "explicit override wins",
			cfg:  AppConfig{API: APIConfig{BaseURL: "https://tasks.example.com/"}},
			want: "https://tasks.example.com",
		},
		{
			name:   "deployment host",
			vercel: "taskmate-abc.vercel.app",
			want:   "https://taskmate-abc.vercel.app",
		},
		{
			name: "local port",
			cfg:  AppConfig{Server: ServerConfig{Port: 8080}},
			want: "http://localhost:8080",
		},
		{
			name: "default port",
			want: "http://localhost:3000",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("VERCEL_URL", tt.vercel)
			assert.Equal(t, tt.want, ResolveBaseURL(tt.cfg))
		})
	}
}

func TestResolveSearchAPIKey(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "tvly-env")
	assert.Equal(t, "tvly-env", ResolveSearchAPIKey(AppConfig{}))
	assert.Equal(t, "tvly-cfg", ResolveSearchAPIKey(AppConfig{Search: SearchConfig{APIKey: "tvly-cfg"}}))
}

func TestGetStateDir(t *testing.T) {
	resetViperForTest(t)
	t.Setenv("XDG_STATE_HOME", "/tmp/state")
	assert.Equal(t, "/tmp/state/taskmate", GetStateDir())

	viper.Set("state.dir", "/var/lib/taskmate")
	assert.Equal(t, "/var/lib/taskmate", GetStateDir())
}
