package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.App.Storage)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.False(t, cfg.JWT.Required)
	assert.Equal(t, 10.0, cfg.Sales.DefaultTaxRate)
	assert.Equal(t, 24*time.Hour, cfg.Sales.IdempotencyTTL())
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "stock.movements", cfg.Kafka.MovementsTopic)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("STORAGE", "Postgres")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("AUTH_REQUIRED", "true")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SALES_DEFAULT_TAX_RATE", "20")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.App.Storage)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.True(t, cfg.JWT.Required)
	assert.Equal(t, 20.0, cfg.Sales.DefaultTaxRate)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("storage desconocido", func(t *testing.T) {
		t.Setenv("STORAGE", "mongo")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("auth sin secreto", func(t *testing.T) {
		t.Setenv("STORAGE", "memory")
		t.Setenv("AUTH_REQUIRED", "true")
		t.Setenv("JWT_SECRET", "")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestDSN_EscapesPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "wm", Password: "p@ss/word", DBName: "williammetal", SSLMode: "disable"}
	assert.Equal(t, "postgres://wm:p%40ss%2Fword@db:5432/williammetal?sslmode=disable", c.DSN())
	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
