package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	base := func() *Config {
		c := &Config{}
		c.LoadDefaults()
		return c
	}

	tests := []struct {
		name     string
		args     []string
		expected func() *Config
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{
				"-a", "127.0.0.1:9090", "-m", ":9100", "-d", "db", "-s", "secret", "-l", "debug",
				"-t", "1", "-r", "3", "-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1",
				"-e", "http://endpoint", "-storage", "memory", "-mailer", "s3",
			},
			expected: func() *Config {
				c := base()
				c.EndpointAddrGRPC = "127.0.0.1:9090"
				c.MetricsAddr = ":9100"
				c.DatabaseDSN = "db"
				c.SecretKey = "secret"
				c.LogLevel = "debug"
				c.AccessTokenValidityDuration = 1 * time.Minute
				c.RefreshTokenValidityDuration = 3 * 24 * time.Hour
				c.S3RootUser = "user"
				c.S3RootPassword = "password"
				c.S3Bucket = "bucket"
				c.S3Region = "us-west-1"
				c.S3BaseEndpoint = "http://endpoint"
				c.StorageMode = StorageModeMemory
				c.Mailer = MailerS3
				return c
			},
		},
		{
			name:     "unknown flags ignored",
			args:     []string{"-c", "cfg.json", "-z", "1", "-a", ":1"},
			expected: func() *Config { c := base(); c.EndpointAddrGRPC = ":1"; return c },
		},
		{
			name:    "non-numeric ttl",
			args:    []string{"-t", "soon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			err := parseFlags(c, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected(), c))
		})
	}
}

func TestParseFlags_SubMinuteDurationSurvives(t *testing.T) {
	c := &Config{AccessTokenValidityDuration: 30 * time.Second, RefreshTokenValidityDuration: time.Hour}
	require.NoError(t, parseFlags(c, []string{"-a", ":1"}))

	assert.Equal(t, 30*time.Second, c.AccessTokenValidityDuration)
	assert.Equal(t, time.Hour, c.RefreshTokenValidityDuration)
}
