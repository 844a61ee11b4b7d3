package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/rfidgate/internal/common"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg, err := Load(newViper(t))
	require.NoError(t, err)

	assert.Equal(t, 9600, cfg.Serial.Baud)
	assert.Equal(t, 10*time.Millisecond, cfg.Serial.ReadTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Serial.PollInterval)
	assert.Equal(t, 256, cfg.Serial.BufferSize)
	assert.Equal(t, "getRFIDMode", cfg.Serial.InitCommand)
	assert.Equal(t, 2*time.Second, cfg.Serial.InitDelay)
	assert.True(t, cfg.Session.KeepRegistry)
	assert.Empty(t, cfg.Session.Authorized)
	assert.True(t, cfg.Audit.Enabled)
	assert.Equal(t, "default", cfg.TUI.Theme)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, filepath.Join(home, ".local/share/rfidgate/journal.db"), cfg.Database.Path)
}

func TestLoad_FromYAML(t *testing.T) {
	v := newViper(t)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
serial:
  port: /dev/ttyACM0
  baud: 115200
  poll_interval: 50ms
  init_delay: 0s
session:
  keep_registry: false
  authorized:
    - " 04A2B9C1 "
    - 0BADF00D
database:
  path: /tmp/journal.db
logging:
  level: debug
  format: json
`)))

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.Baud)
	assert.Equal(t, 50*time.Millisecond, cfg.Serial.PollInterval)
	assert.Zero(t, cfg.Serial.InitDelay)
	assert.False(t, cfg.Session.KeepRegistry)
	assert.Equal(t, []string{"04A2B9C1", "0BADF00D"}, cfg.Session.Authorized)
	assert.Equal(t, "/tmp/journal.db", cfg.Database.Path)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		value   any
		name    string
		key     string
		wantKey string
	}{
		{name: "log level", key: "logging.level", value: "verbose", wantKey: "logging.level"},
		{name: "log format", key: "logging.format", value: "xml", wantKey: "logging.format"},
		{name: "baud", key: "serial.baud", value: 1234, wantKey: "serial.baud"},
		{name: "buffer too small", key: "serial.buffer_size", value: 1, wantKey: "serial.buffer_size"},
		{name: "zero poll interval", key: "serial.poll_interval", value: "0s", wantKey: "serial.poll_interval"},
		{name: "theme", key: "tui.theme", value: "neon", wantKey: "tui.theme"},
		{name: "empty database path", key: "database.path", value: "", wantKey: "database.path"},
		{name: "blank authorized identifier", key: "session.authorized", value: []string{"A", "  "}, wantKey: "session.authorized[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper(t)
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantKey)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("RFIDGATE_TEST_DIR", "/srv/rfid")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "tilde", in: "~", want: home},
		{name: "tilde path", in: "~/data/journal.db", want: filepath.Join(home, "data/journal.db")},
		{name: "env var", in: "$RFIDGATE_TEST_DIR/journal.db", want: "/srv/rfid/journal.db"},
		{name: "absolute", in: "/var/lib/rfidgate.db", want: "/var/lib/rfidgate.db"},
		{name: "tilde in middle untouched", in: "/tmp/~/x", want: "/tmp/~/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestDir(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	dir, err := Dir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "rfidgate"), dir)
}

func TestRender_RoundTrip(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("session.authorized", []string{"ABC123"})

	data, err := Render(v)
	require.NoError(t, err)
	assert.Contains(t, string(data), "poll_interval: 100ms")
	assert.Contains(t, string(data), "- ABC123")

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteFile(v, path, false))

	err = WriteFile(v, path, false)
	require.ErrorIs(t, err, ErrConfigExists)
	require.NoError(t, WriteFile(v, path, true))

	loaded := viper.New()
	loaded.SetConfigFile(path)
	require.NoError(t, loaded.ReadInConfig())
	cfg, err := Load(loaded)
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, cfg.Serial.PollInterval)
	assert.Equal(t, 2*time.Second, cfg.Serial.InitDelay)
	assert.Equal(t, []string{"ABC123"}, cfg.Session.Authorized)
}
