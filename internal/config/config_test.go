package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// viper treats empty variables as unset
	for _, key := range keys {
		t.Setenv(key, "")
	}

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "file", cfg.StoreDriver)
	assert.Equal(t, "patients.json", cfg.PatientsFile)
	assert.Equal(t, "local", cfg.ModelDriver)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.True(t, cfg.IsDev())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORE_DRIVER", "Redis")
	t.Setenv("MODEL_DRIVER", "grpc")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "redis", cfg.StoreDriver)
	assert.Equal(t, "grpc", cfg.ModelDriver)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestLoadFromEnvFile(t *testing.T) {
	os.Unsetenv("PATIENTS_FILE")
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("PATIENTS_FILE=/tmp/records.json\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("PATIENTS_FILE") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/records.json", cfg.PatientsFile)
}

func TestLoadRejectsUnknownDrivers(t *testing.T) {
	t.Setenv("STORE_DRIVER", "cassandra")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "STORE_DRIVER")

	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("MODEL_DRIVER", "onnx")
	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "MODEL_DRIVER")
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "5432", DBSSLMode: "disable", DBTimeZone: "UTC"}
	assert.Equal(t,
		"host=db user=u password=p dbname=n port=5432 sslmode=disable application_name=patientms TimeZone=UTC",
		cfg.PostgresDSN())
}
