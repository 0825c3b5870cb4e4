package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"storage": map[string]any{
			"sqlitePath": "campus.db",
			"bucketUrl":  "",
		},
		"auth": map[string]any{
			"minPasswordLength": 6,
		},
		"http": map[string]any{
			"timeouts": map[string]any{
				"readTimeout": "10s",
			},
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "STORAGE_SQLITEPATH", want: "storage.sqlitePath"},
		{envKey: "STORAGE_BUCKETURL", want: "storage.bucketUrl"},
		{envKey: "AUTH_MINPASSWORDLENGTH", want: "auth.minPasswordLength"},
		{envKey: "HTTP_TIMEOUTS_READTIMEOUT", want: "http.timeouts.readTimeout"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			assert.Equal(t, tt.want, canonicalizeEnvKey(tt.envKey, existing))
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	assert.Equal(t, defaultHost, cfg.HTTP.Host)
	assert.Equal(t, defaultPort, cfg.HTTP.Port)
	assert.Equal(t, StorageDriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, 3, cfg.Auth.MinUsernameLength)
	assert.Equal(t, 6, cfg.Auth.MinPasswordLength)
	assert.Equal(t, PasswordHashingPlain, cfg.Auth.PasswordHashing)
	require.Len(t, cfg.Rewards, 2)
	assert.Equal(t, "reward1", cfg.Rewards[0].ID)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:    "unknown driver",
			mutate:  func(cfg *Config) { cfg.Storage.Driver = "floppy" },
			wantErr: "unknown storage driver",
		},
		{
			name:    "blob without url",
			mutate:  func(cfg *Config) { cfg.Storage.Driver = StorageDriverBlob },
			wantErr: "bucketUrl",
		},
		{
			name:    "redis without addr",
			mutate:  func(cfg *Config) { cfg.Storage.Driver = StorageDriverRedis },
			wantErr: "redis.addr",
		},
		{
			name:    "postgres without section",
			mutate:  func(cfg *Config) { cfg.Storage.Driver = StorageDriverPostgres },
			wantErr: "postgres section",
		},
		{
			name:    "unknown hashing",
			mutate:  func(cfg *Config) { cfg.Auth.PasswordHashing = "rot13" },
			wantErr: "password hashing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.ApplyDefaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadWithEnv_EnvOverridesYAML(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("AUTH_MINPASSWORDLENGTH", "8")

	cfg, err := LoadWithEnv[Config]("config")
	require.NoError(t, err)

	assert.Equal(t, "campus", cfg.Env.ServiceName)
	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 8, cfg.Auth.MinPasswordLength)
	assert.Equal(t, "10s", cfg.HTTP.Timeouts.ReadTimeout.String())
}
