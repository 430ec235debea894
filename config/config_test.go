package config

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Was1f/UrbanFix-sub001/models"
)

func TestNew(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	conf := New()

	assert.NotEmpty(t, conf)
	assert.Equal(t, "mongodb://127.0.0.1:27017", conf.URL)
	assert.Equal(t, "test", conf.DatabaseName)
}

func TestNewAppliesDurationDefaults(t *testing.T) {
	os.Unsetenv("QUERY_TIMEOUT")
	os.Setenv("CODE_TTL", "not-a-duration")
	defer os.Unsetenv("CODE_TTL")

	conf := New()

	assert.Equal(t, 10*time.Second, conf.QueryTimeout)
	assert.Equal(t, 5*time.Minute, conf.CodeTTL)
	assert.Equal(t, 365*24*time.Hour, conf.PointsRetention)
}

func TestNewReadsDurations(t *testing.T) {
	os.Setenv("NOTIFY_TIMEOUT", "2s")
	defer os.Unsetenv("NOTIFY_TIMEOUT")

	conf := New()

	assert.Equal(t, 2*time.Second, conf.NotifyTimeout)
}

func TestErrorStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	ErrorStatus("error it borked", http.StatusBadRequest, rr, errors.New("bad request"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var body models.ErrorMessageResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "error it borked", body.Response.Message)
	assert.Equal(t, "bad request", body.Response.Error)
}

func TestSetLoggerSetsDevelopmentLogger(t *testing.T) {
	l, err := setLogger("development")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(1))
}

func TestSetLoggerSetsProductionLogger(t *testing.T) {
	l, err := setLogger("production")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(2))
}

func TestSetLoggerSetsLocalLogger(t *testing.T) {
	l, err := setLogger("local")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(0))
}
