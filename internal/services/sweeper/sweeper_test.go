package sweeper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/salonsuccess/salon-manager/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ExpireLapsedEntitlements(ctx context.Context, now time.Time) ([]*models.User, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestSweep(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(*MockRepository)
	}{
		{
			name: "no lapsed entitlements",
			setupMocks: func(r *MockRepository) {
				r.On("ExpireLapsedEntitlements", mock.Anything, mock.Anything).
					Return([]*models.User{}, nil).Once()
			},
		},
		{
			name: "repository error is logged, not returned",
			setupMocks: func(r *MockRepository) {
				r.On("ExpireLapsedEntitlements", mock.Anything, mock.Anything).
					Return(nil, errors.New("db error")).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMocks(repo)

			service := New(repo, newNoopLogger())
			service.sweep(context.Background(), nil)

			repo.AssertExpectations(t)
		})
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ExpireLapsedEntitlements", mock.Anything, mock.Anything).
		Return([]*models.User{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	service := New(repo, newNoopLogger())
	go func() {
		service.Run(ctx, nil, time.Hour)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}
