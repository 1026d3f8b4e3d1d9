package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	"codebase-ai/internal/vectorstore/mocks"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	okDB := pingerFunc(func(context.Context) error { return nil })
	downDB := pingerFunc(func(context.Context) error { return errors.New("database is locked") })

	tests := []struct {
		name       string
		exists     bool
		storeErr   error
		records    int
		countErr   error
		db         Pinger
		wantStatus int
		wantHealth string
		wantIssues int
	}{
		{name: "healthy", exists: true, records: 42, db: okDB, wantStatus: http.StatusOK, wantHealth: "healthy"},
		{name: "healthy without ledger", exists: true, wantStatus: http.StatusOK, wantHealth: "healthy"},
		{name: "not indexed yet", db: okDB, wantStatus: http.StatusOK, wantHealth: "degraded", wantIssues: 1},
		{
			name:       "vector store down",
			storeErr:   errors.New("connection refused"),
			db:         okDB,
			wantStatus: http.StatusServiceUnavailable,
			wantHealth: "unhealthy",
			wantIssues: 1,
		},
		{
			name:       "record count unavailable",
			exists:     true,
			countErr:   errors.New("count timed out"),
			db:         okDB,
			wantStatus: http.StatusOK,
			wantHealth: "degraded",
			wantIssues: 1,
		},
		{
			name:       "database down",
			exists:     true,
			db:         downDB,
			wantStatus: http.StatusServiceUnavailable,
			wantHealth: "unhealthy",
			wantIssues: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := mocks.NewMockVectorStore(ctrl)
			store.EXPECT().CollectionExists(gomock.Any(), "codebase").Return(tt.exists, tt.storeErr)
			countsRecords := tt.exists && tt.storeErr == nil
			if countsRecords {
				store.EXPECT().Count(gomock.Any(), "codebase").Return(tt.records, tt.countErr)
			}

			w := httptest.NewRecorder()
			NewHealthHandler(store, tt.db, "codebase").
				ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var resp HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != tt.wantHealth {
				t.Errorf("Status = %q, want %q", resp.Status, tt.wantHealth)
			}
			if len(resp.Issues) != tt.wantIssues {
				t.Errorf("Issues = %v, want %d", resp.Issues, tt.wantIssues)
			}
			switch {
			case countsRecords && tt.countErr == nil:
				if resp.Records == nil || *resp.Records != tt.records {
					t.Errorf("Records = %v, want %d", resp.Records, tt.records)
				}
			case resp.Records != nil:
				t.Errorf("Records = %d, want absent", *resp.Records)
			}
		})
	}
}

func TestHealthHandler_MethodNotAllowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	w := httptest.NewRecorder()
	NewHealthHandler(mocks.NewMockVectorStore(ctrl), nil, "codebase").
		ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/health", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}
