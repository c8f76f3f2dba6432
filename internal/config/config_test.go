package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "a-sufficiently-long-test-secret")
	t.Setenv("DB_PASSWORD", "postgres")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "panel", cfg.Database.Name)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionExpiry)

	assert.Equal(t, 3, cfg.Governor.ChallengeAfter)
	assert.Equal(t, 5, cfg.Governor.LockoutAfter)
	assert.Equal(t, 100*time.Second, cfg.Governor.LockoutFor)

	assert.Equal(t, int64(5*1024*1024), cfg.Upload.MaxImageSize)
	assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxAttachmentSize)
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_PASSWORD", "postgres")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MissingDBPassword(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-sufficiently-long-test-secret")
	t.Setenv("DB_PASSWORD", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_GovernorOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOGIN_CHALLENGE_AFTER", "2")
	t.Setenv("LOGIN_LOCKOUT_AFTER", "4")
	t.Setenv("LOGIN_LOCKOUT_FOR", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Governor.ChallengeAfter)
	assert.Equal(t, 4, cfg.Governor.LockoutAfter)
	assert.Equal(t, 5*time.Minute, cfg.Governor.LockoutFor)
}

func TestLoad_RejectsInvertedThresholds(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOGIN_CHALLENGE_AFTER", "5")
	t.Setenv("LOGIN_LOCKOUT_AFTER", "3")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateJWTSecret(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		env     string
		wantErr bool
	}{
		{"valid development secret", "sixteen-chars-ok", "development", false},
		{"too short for development", "short", "development", true},
		{"development length fails production", "sixteen-chars-ok", "production", true},
		{"valid production secret", "a-thirty-two-character-secret-ok", "production", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateJWTSecret(tt.secret, tt.env)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{
		Host: "localhost", Port: 5432, User: "postgres",
		Password: "pw", Name: "panel", SSLMode: "disable",
	}

	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=pw dbname=panel sslmode=disable",
		db.DSN())
}
