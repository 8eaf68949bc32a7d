package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/salonsuccess/salon-manager/internal/stripe"
)

const testSecret = "whsec_test"

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ProcessWebhookEvent(ctx context.Context, event *stripe.WebhookEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func signBody(body []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts.Unix())
	mac.Write(body)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestWebhook(t *testing.T) {
	body := []byte(`{"id":"evt_1","type":"customer.subscription.updated",` +
		`"data":{"object":{"id":"sub_1","customer":"cus_1"}}}`)

	tests := []struct {
		name           string
		signature      string
		setupMocks     func(*ServiceMock)
		expectedStatus int
	}{
		{
			name:      "valid event processed",
			signature: signBody(body, testSecret, time.Now()),
			setupMocks: func(s *ServiceMock) {
				s.On("ProcessWebhookEvent", mock.Anything,
					mock.MatchedBy(func(e *stripe.WebhookEvent) bool {
						return e.Type == "customer.subscription.updated" &&
							e.Data.Object.Customer == "cus_1"
					})).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "wrong secret rejected",
			signature:      signBody(body, "whsec_other", time.Now()),
			setupMocks:     func(_ *ServiceMock) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "stale timestamp rejected",
			signature:      signBody(body, testSecret, time.Now().Add(-time.Hour)),
			setupMocks:     func(_ *ServiceMock) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:      "processing error returns 500 for retry",
			signature: signBody(body, testSecret, time.Now()),
			setupMocks: func(s *ServiceMock) {
				s.On("ProcessWebhookEvent", mock.Anything, mock.Anything).
					Return(errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(ServiceMock)
			tt.setupMocks(service)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(body))
			req.Header.Set("Stripe-Signature", tt.signature)
			rr := httptest.NewRecorder()

			New(newNoopLogger(), service, testSecret).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			service.AssertExpectations(t)
		})
	}
}
