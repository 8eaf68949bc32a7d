package create

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/salonsuccess/salon-manager/internal/http/middlewarectx"
	"github.com/salonsuccess/salon-manager/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Create(ctx context.Context, userUID string, req models.DummyTreatment) (int, error) {
	args := m.Called(ctx, userUID, req)
	return args.Int(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		uid            string
		setupMocks     func(*ServiceMock)
		expectedStatus int
		expectedText   string
	}{
		{
			name: "success",
			body: `{"name":"Gel manicure","price":4500,"product_cost":600,"duration_minutes":60}`,
			uid:  "uid-1",
			setupMocks: func(s *ServiceMock) {
				s.On("Create", mock.Anything, "uid-1", models.DummyTreatment{
					Name: "Gel manicure", Price: 4500, ProductCost: 600, DurationMinutes: 60,
				}).Return(7, nil)
			},
			expectedStatus: http.StatusOK,
			expectedText:   `"last_added_id":7`,
		},
		{
			name:           "invalid json",
			body:           `{broken`,
			uid:            "uid-1",
			setupMocks:     func(_ *ServiceMock) {},
			expectedStatus: http.StatusBadRequest,
			expectedText:   "invalid request body",
		},
		{
			name:           "validation error",
			body:           `{"name":"","price":0,"duration_minutes":0}`,
			uid:            "uid-1",
			setupMocks:     func(_ *ServiceMock) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedText:   "required",
		},
		{
			name:           "missing identity",
			body:           `{"name":"Gel manicure","price":4500,"duration_minutes":60}`,
			uid:            "",
			setupMocks:     func(_ *ServiceMock) {},
			expectedStatus: http.StatusUnauthorized,
			expectedText:   "unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(ServiceMock)
			tt.setupMocks(service)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/treatments",
				bytes.NewBufferString(tt.body))
			ctx := context.WithValue(req.Context(), middlewarectx.UserUID, tt.uid)
			rr := httptest.NewRecorder()

			New(newNoopLogger(), service).ServeHTTP(rr, req.WithContext(ctx))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedText)
			service.AssertExpectations(t)
		})
	}
}
