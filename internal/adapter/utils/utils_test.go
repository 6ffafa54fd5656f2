package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestGetNewUUID(t *testing.T) {
	a, b := GetNewUUID(), GetNewUUID()
	if a == b {
		t.Fatal("uuids repeat")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("not a uuid: %v", err)
	}
}

func TestNewRouter_MountsMetricsAndSwagger(t *testing.T) {
	r := NewRouter().Router

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/metrics = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger", nil))
	if rec.Code != http.StatusMovedPermanently {
		t.Errorf("/swagger = %d", rec.Code)
	}
}
