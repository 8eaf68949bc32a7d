package treatment

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/salonsuccess/salon-manager/internal/models"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) CreateTreatment(ctx context.Context, t models.Treatment) (int, error) {
	args := m.Called(ctx, t)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ListTreatments(ctx context.Context, userUID string, limit, offset int) ([]*models.Treatment, error) {
	args := m.Called(ctx, userUID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Treatment), args.Error(1)
}

func (m *RepoMock) UpdateTreatment(ctx context.Context, t models.Treatment, id int, userUID string) (int, error) {
	args := m.Called(ctx, t, id, userUID)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) RemoveTreatment(ctx context.Context, id int, userUID string) (int, error) {
	args := m.Called(ctx, id, userUID)
	return args.Int(0), args.Error(1)
}

type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestCreate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		repo.On("CreateTreatment", mock.Anything, mock.MatchedBy(func(tr models.Treatment) bool {
			return tr.UserUID == "uid-1" && tr.Name == "Gel manicure" && tr.Price == 4500
		})).Return(7, nil)
		cache.On("Invalidate", "treatments:uid-1").Return(nil)

		service := New(repo, cache, discardLogger())
		id, err := service.Create(context.Background(), "uid-1", models.DummyTreatment{
			Name:            "Gel manicure",
			Price:           4500,
			ProductCost:     600,
			DurationMinutes: 60,
		})
		require.NoError(t, err)
		assert.Equal(t, 7, id)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("Repository error", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		repo.On("CreateTreatment", mock.Anything, mock.Anything).
			Return(0, errors.New("connection refused"))

		service := New(repo, cache, discardLogger())
		_, err := service.Create(context.Background(), "uid-1", models.DummyTreatment{
			Name: "Gel manicure", Price: 4500, DurationMinutes: 60,
		})
		assert.Error(t, err)
		cache.AssertNotCalled(t, "Invalidate", mock.Anything)
	})
}

func TestList(t *testing.T) {
	treatments := []*models.Treatment{
		{ID: 1, UserUID: "uid-1", Name: "Cut and blow dry", Price: 3500},
	}

	t.Run("Cache hit", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		cache.On("Get", "treatments:uid-1", mock.Anything).
			Run(func(args mock.Arguments) {
				ptr := args.Get(1).(*[]*models.Treatment)
				*ptr = treatments
			}).Return(true, nil)

		service := New(repo, cache, discardLogger())
		result, err := service.List(context.Background(), "uid-1", 10, 0)
		require.NoError(t, err)
		assert.Len(t, result, 1)
		repo.AssertNotCalled(t, "ListTreatments", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Cache miss goes to repository", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		cache.On("Get", "treatments:uid-1", mock.Anything).Return(false, nil)
		repo.On("ListTreatments", mock.Anything, "uid-1", 10, 0).Return(treatments, nil)
		cache.On("Set", "treatments:uid-1", treatments, time.Hour).Return(nil)

		service := New(repo, cache, discardLogger())
		result, err := service.List(context.Background(), "uid-1", 10, 0)
		require.NoError(t, err)
		assert.Equal(t, treatments, result)
		cache.AssertExpectations(t)
	})

	t.Run("Second page skips cache", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		repo.On("ListTreatments", mock.Anything, "uid-1", 10, 10).Return(treatments, nil)

		service := New(repo, cache, discardLogger())
		_, err := service.List(context.Background(), "uid-1", 10, 10)
		require.NoError(t, err)
		cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})
}

func TestUpdate(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	repo.On("UpdateTreatment", mock.Anything, mock.Anything, 7, "uid-1").Return(1, nil)
	cache.On("Invalidate", "treatments:uid-1").Return(nil)

	service := New(repo, cache, discardLogger())
	count, err := service.Update(context.Background(), models.DummyTreatment{
		Name: "Gel manicure", Price: 5000, DurationMinutes: 60,
	}, 7, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	cache.AssertExpectations(t)
}

func TestRemove(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	cache.On("Invalidate", "treatments:uid-1").Return(nil)
	repo.On("RemoveTreatment", mock.Anything, 7, "uid-1").Return(1, nil)

	service := New(repo, cache, discardLogger())
	count, err := service.Remove(context.Background(), 7, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
