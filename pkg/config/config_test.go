package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "catalogo-api", cfg.App.Name)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, int32(10), cfg.DB.MaxConns)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, 3, cfg.Catalog.ConflictRetries)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_ValoresDeEntornoComoTexto(t *testing.T) {
	v := viper.New()
	v.Set("HTTP_PORT", "9090")
	v.Set("DB_MAX_CONNS", "25")
	v.Set("DB_AUTO_MIGRATE", "false")
	v.Set("STORE_DRIVER", " Memory ")
	v.Set("CATALOG_CONFLICT_RETRIES", "5")
	v.Set("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, int32(25), cfg.DB.MaxConns)
	assert.False(t, cfg.DB.AutoMigrate)
	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.Equal(t, 5, cfg.Catalog.ConflictRetries)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
}

func TestFromViper_Invalido(t *testing.T) {
	t.Run("driver desconocido", func(t *testing.T) {
		v := viper.New()
		v.Set("STORE_DRIVER", "mongo")
		_, err := fromViper(v)
		assert.Error(t, err)
	})
	t.Run("reintentos negativos", func(t *testing.T) {
		v := viper.New()
		v.Set("CATALOG_CONFLICT_RETRIES", "-1")
		_, err := fromViper(v)
		assert.Error(t, err)
	})
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "catalogo", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/catalogo?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
