package apply

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/salonsuccess/salon-manager/internal/http/middlewarectx"
	"github.com/salonsuccess/salon-manager/internal/models"
	"github.com/salonsuccess/salon-manager/internal/services/promo"
)

type UsersMock struct {
	mock.Mock
}

func (m *UsersMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ApplyCode(ctx context.Context, user *models.User, code string) (*promo.Grant, error) {
	args := m.Called(ctx, user, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*promo.Grant), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newRequest(t *testing.T, body any, uid string) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/promo/apply", bytes.NewReader(raw))
	ctx := context.WithValue(req.Context(), middlewarectx.UserUID, uid)
	return req.WithContext(ctx)
}

func TestApply(t *testing.T) {
	user := &models.User{UID: "uid-1", SubscriptionStatus: models.StatusInactive}

	tests := []struct {
		name           string
		body           any
		setupMocks     func(*UsersMock, *ServiceMock)
		expectedStatus int
		expectedText   string
	}{
		{
			name: "free access code applied",
			body: Request{Code: "CLIENT6FREE"},
			setupMocks: func(u *UsersMock, s *ServiceMock) {
				u.On("GetUser", mock.Anything, "uid-1").Return(user, nil)
				s.On("ApplyCode", mock.Anything, user, "CLIENT6FREE").
					Return(&promo.Grant{Code: "CLIENT6FREE", FreeDays: 180,
						Message: "6 months free access applied"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedText:   "6 months free access applied",
		},
		{
			name: "unknown code",
			body: Request{Code: "NOPE42"},
			setupMocks: func(u *UsersMock, s *ServiceMock) {
				u.On("GetUser", mock.Anything, "uid-1").Return(user, nil)
				s.On("ApplyCode", mock.Anything, user, "NOPE42").
					Return(nil, promo.ErrInvalidCode)
			},
			expectedStatus: http.StatusBadRequest,
			expectedText:   "invalid promo code",
		},
		{
			name: "grant still active",
			body: Request{Code: "CLIENT6FREE"},
			setupMocks: func(u *UsersMock, s *ServiceMock) {
				u.On("GetUser", mock.Anything, "uid-1").Return(user, nil)
				s.On("ApplyCode", mock.Anything, user, "CLIENT6FREE").
					Return(nil, promo.ErrGrantStillActive)
			},
			expectedStatus: http.StatusConflict,
			expectedText:   "still active",
		},
		{
			name:           "missing code fails validation",
			body:           Request{},
			setupMocks:     func(_ *UsersMock, _ *ServiceMock) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedText:   "required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(UsersMock)
			service := new(ServiceMock)
			tt.setupMocks(users, service)

			rr := httptest.NewRecorder()
			New(newNoopLogger(), users, service).ServeHTTP(rr, newRequest(t, tt.body, "uid-1"))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedText)
			users.AssertExpectations(t)
			service.AssertExpectations(t)
		})
	}
}

func TestApplyUnauthorized(t *testing.T) {
	rr := httptest.NewRecorder()
	New(newNoopLogger(), new(UsersMock), new(ServiceMock)).
		ServeHTTP(rr, newRequest(t, Request{Code: "CLIENT6FREE"}, ""))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
