package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "外帶"}, splitList(" 1, 2,,外帶 "))
	assert.Empty(t, splitList(""))
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("VENUE_TIMEZONE", "Asia/Taipei")
	t.Setenv("TABLES", "")
	t.Setenv("AUTO_PRINT_MODE", "")

	cfg := LoadConfig()
	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, "Asia/Taipei", cfg.Location.String())
	assert.Equal(t, "latest", cfg.AutoPrintMode)
	assert.Equal(t, 10*time.Second, cfg.WriteTimeout)
	assert.Contains(t, cfg.Tables, "外帶")
	assert.Same(t, cfg, AppConfig)
}

func TestLoadConfigFallbacks(t *testing.T) {
	t.Setenv("VENUE_TIMEZONE", "Mars/Olympus")
	t.Setenv("AUTO_PRINT_MODE", "everything")
	t.Setenv("WRITE_TIMEOUT", "soon")
	t.Setenv("AUTO_PRINT", "true")

	cfg := LoadConfig()
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, "latest", cfg.AutoPrintMode)
	assert.Equal(t, 10*time.Second, cfg.WriteTimeout)
	assert.True(t, cfg.AutoPrint)
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "5432", DBName: "n", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/n?sslmode=disable", cfg.DSN())

	cfg.DatabaseURL = "postgres://override"
	assert.Equal(t, "postgres://override", cfg.DSN())
}
