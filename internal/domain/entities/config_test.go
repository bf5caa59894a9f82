package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidateDefaults(t *testing.T) {
	var cfg Config
	assert.NoError(t, cfg.Validate())
}

func TestServerConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  ServerConfig
		wantErr string
	}{
		{
			name:   "valid",
			config: ServerConfig{Host: "127.0.0.1", Port: 4000},
		},
		{
			name:    "port too large",
			config:  ServerConfig{Port: 70000},
			wantErr: "port",
		},
		{
			name:    "negative read timeout",
			config:  ServerConfig{ReadTimeout: -1},
			wantErr: "read timeout",
		},
		{
			name:    "empty CORS origin",
			config:  ServerConfig{CORSOrigins: []string{""}},
			wantErr: "CORS origin",
		},
		{
			name:    "CORS origin without scheme",
			config:  ServerConfig{CORSOrigins: []string{"localhost:4000"}},
			wantErr: "CORS origin",
		},
		{
			name:   "wildcard CORS origin",
			config: ServerConfig{CORSOrigins: []string{"*"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestRenderConfigValidate(t *testing.T) {
	assert.NoError(t, RenderConfig{}.Validate())
	assert.NoError(t, RenderConfig{Context: "owner/repo"}.Validate())
	assert.ErrorContains(t, RenderConfig{Context: "no-slash"}.Validate(), "render context")
	assert.ErrorContains(t, RenderConfig{Context: "a/b/c"}.Validate(), "render context")
	assert.ErrorContains(t, RenderConfig{Context: "/repo"}.Validate(), "render context")
	assert.ErrorContains(t, RenderConfig{APIURL: "ftp://x"}.Validate(), "API URL")
}

func TestRenderConfigGetAPIURL(t *testing.T) {
	assert.Equal(t, "https://api.github.com", RenderConfig{}.GetAPIURL())
	assert.Equal(t, "https://ghe.local/api/v3", RenderConfig{APIURL: "https://ghe.local/api/v3/"}.GetAPIURL())
}

func TestWatcherConfigDurations(t *testing.T) {
	assert.Equal(t, 200*time.Millisecond, WatcherConfig{}.GetDebounce())
	assert.Equal(t, 50*time.Millisecond, WatcherConfig{DebounceMs: 50}.GetDebounce())
	assert.Equal(t, 30*time.Second, WatcherConfig{}.GetMaxHold())
	assert.Equal(t, 10*time.Second, WatcherConfig{MaxHoldSeconds: 10}.GetMaxHold())

	assert.ErrorContains(t, WatcherConfig{DebounceMs: -1}.Validate(), "debounce")
	assert.ErrorContains(t, WatcherConfig{MaxHoldSeconds: -1}.Validate(), "max hold")
}

func TestLoggingConfigValidate(t *testing.T) {
	assert.NoError(t, LoggingConfig{}.Validate())
	assert.NoError(t, LoggingConfig{Level: "debug"}.Validate())
	assert.ErrorContains(t, LoggingConfig{Level: "loud"}.Validate(), "log level")

	assert.Equal(t, LogLevelInfo, LoggingConfig{}.GetLevel())
	assert.Equal(t, LogLevelWarn, LoggingConfig{Level: "warn"}.GetLevel())
}

func TestServerConfigTimeoutDefaults(t *testing.T) {
	assert.Equal(t, 30*time.Second, ServerConfig{}.GetReadTimeout())
	assert.Equal(t, 60*time.Second, ServerConfig{}.GetWriteTimeout())
	assert.Equal(t, 5*time.Second, ServerConfig{}.GetShutdownTimeout())
	assert.Equal(t, 15*time.Second, ServerConfig{ReadTimeout: 15}.GetReadTimeout())

	origins := ServerConfig{}.GetCORSOrigins()
	assert.Contains(t, origins, "http://localhost:*")
}
