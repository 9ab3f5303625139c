package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()

	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_CHAT_ID", "4242")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.BotToken)
	assert.Equal(t, int64(4242), cfg.AdminChatID)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "hr_bot.db", cfg.DBPath)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "evidence_files", cfg.EvidenceDir)
	assert.Equal(t, 25.0, cfg.SendRate)
	assert.Equal(t, defaultHRContact, cfg.HRContactInfo)
	assert.True(t, cfg.IsAdmin(4242))
	assert.False(t, cfg.IsAdmin(1))
}

func TestLoad_MissingBotToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("ADMIN_CHAT_ID", "4242")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOT_TOKEN is required")
}

func TestLoad_MissingAdminChatID(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_CHAT_ID", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_CHAT_ID is required")
}

func TestLoad_NonNumericAdminChatID(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_CHAT_ID", "admin")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be numeric")
}

func TestLoad_PostgresRequiresCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("DB_NAME", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoad_UnknownDriver(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_DRIVER", "mysql")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoad_SendRate(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SEND_RATE", "12.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 12.5, cfg.SendRate)

	t.Setenv("SEND_RATE", "fast")

	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SEND_RATE must be a number")

	t.Setenv("SEND_RATE", "0")

	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoad_InvalidWebhookURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("WEBHOOK_URL", "not a url")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_Postgres(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_USER", "hr")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "hr")
	t.Setenv("WEBHOOK_URL", "https://bot.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "https://bot.example.com", cfg.WebhookURL)
}

func TestLoadTeams_Default(t *testing.T) {
	teams, err := LoadTeams("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTeams, teams)
}

func TestLoadTeams_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teams.yaml")
	content := `
teams:
  - Team A
  - "  Team B  "
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	teams, err := LoadTeams(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Team A", "Team B"}, teams)
}

func TestLoadTeams_EmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teams.yaml")
	require.NoError(t, os.WriteFile(path, []byte("teams: []\n"), 0644))

	_, err := LoadTeams(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadTeams_MissingFile(t *testing.T) {
	_, err := LoadTeams(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
