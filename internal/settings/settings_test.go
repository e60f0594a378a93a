package settings

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	values map[string]string
}

func (m *memStore) GetAll(ctx context.Context) ([]Setting, error) {
	var out []Setting
	for k, v := range m.values {
		out = append(out, Setting{Key: k, Value: v})
	}
	return out, nil
}

func (m *memStore) Set(ctx context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func TestValidate(t *testing.T) {
	tests := []struct {
		key, value string
		ok         bool
	}{
		{KeyImageMigrationCron, "0 3 * * *", true},
		{KeyImageMigrationCron, "", true},
		{KeyImageMigrationCron, "sometimes", false},
		{KeyRateLimitRPS, "2.5", true},
		{KeyRateLimitRPS, "-1", false},
		{KeyRateLimitBurst, "10", true},
		{KeyRateLimitBurst, "0", false},
		{KeyImageMaxBytes, "1048576", true},
		{KeyImageMaxBytes, "lots", false},
		{"region", "TH", false},
	}
	for _, tt := range tests {
		err := Validate(tt.key, tt.value)
		if tt.ok {
			assert.NoError(t, err, "%s=%q", tt.key, tt.value)
		} else {
			assert.Error(t, err, "%s=%q", tt.key, tt.value)
		}
	}
}

func newRouter(store *memStore) http.Handler {
	return NewHandler(store, slog.New(slog.NewTextHandler(io.Discard, nil))).Router()
}

func TestUpdateIsAllOrNothing(t *testing.T) {
	store := &memStore{values: map[string]string{}}
	h := newRouter(store)

	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"rate_limit_rps":"3","rate_limit_burst":"0"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.values)

	req = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"rate_limit_rps":"3","rate_limit_burst":"6"}`))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"rate_limit_rps": "3", "rate_limit_burst": "6"}, store.values)
}

func TestListAndDelete(t *testing.T) {
	store := &memStore{values: map[string]string{KeyImageMigrationCron: "@daily"}}
	h := newRouter(store)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"image_migration_cron":"@daily"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/region", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/"+KeyImageMigrationCron, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, store.values)
}
