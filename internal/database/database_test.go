package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appconfig "github.com/GTDGit/taskify_api/internal/config"
)

func TestDSN_EscapesCredentials(t *testing.T) {
	dsn := DSN(&appconfig.DatabaseConfig{
		Host:     "db",
		Port:     "5432",
		User:     "task ify",
		Password: "p@ss/word",
		Name:     "taskify",
		SSLMode:  "disable",
	})
	assert.Equal(t, "postgres://task+ify:p%40ss%2Fword@db:5432/taskify?sslmode=disable", dsn)
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, backoff(1, baseDelay))
	assert.Equal(t, time.Second, backoff(2, baseDelay))
	assert.Equal(t, 4*time.Second, backoff(4, baseDelay))
	assert.Equal(t, 5*time.Second, backoff(5, baseDelay))
}

func TestConnect_NilConfig(t *testing.T) {
	_, err := Connect(nil)
	assert.Error(t, err)
}
