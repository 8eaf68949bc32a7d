package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/salonsuccess/salon-manager/internal/lib/jwt"
	"github.com/salonsuccess/salon-manager/internal/lib/password"
	"github.com/salonsuccess/salon-manager/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *RepoMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestRegister_CreatesInactiveUser(t *testing.T) {
	repo := new(RepoMock)
	repo.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Email == "owner@salon.example" &&
			u.Username == "owner" &&
			u.Role == "user" &&
			u.SubscriptionStatus == models.StatusInactive &&
			u.SubscriptionEndDate == nil &&
			u.PasswordHash != "" &&
			u.PasswordHash != "secret123"
	})).Return("uid-1", nil).Once()

	svc := New(repo, jwt.NewJWTMaker("secret", time.Hour))

	uid, err := svc.Register(context.Background(), "owner@salon.example", "owner", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", uid)
	repo.AssertExpectations(t)
}

func TestLogin(t *testing.T) {
	hash, err := password.GetHash("secret123")
	require.NoError(t, err)

	user := &models.User{
		UID:          "uid-1",
		Username:     "owner",
		PasswordHash: hash,
		Role:         "user",
	}

	tests := []struct {
		name      string
		username  string
		password  string
		setupMock func(r *RepoMock)
		wantErr   bool
	}{
		{
			name:     "успешный вход",
			username: "owner",
			password: "secret123",
			setupMock: func(r *RepoMock) {
				r.On("GetUserByUsername", mock.Anything, "owner").Return(user, nil).Once()
			},
			wantErr: false,
		},
		{
			name:     "неверный пароль",
			username: "owner",
			password: "wrong",
			setupMock: func(r *RepoMock) {
				r.On("GetUserByUsername", mock.Anything, "owner").Return(user, nil).Once()
			},
			wantErr: true,
		},
		{
			name:     "пользователь не найден",
			username: "ghost",
			password: "secret123",
			setupMock: func(r *RepoMock) {
				r.On("GetUserByUsername", mock.Anything, "ghost").
					Return(nil, errors.New("no rows")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMock(repo)

			maker := jwt.NewJWTMaker("secret", time.Hour)
			svc := New(repo, maker)

			token, role, err := svc.Login(context.Background(), tt.username, tt.password)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, token)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user", role)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)
			assert.Equal(t, "owner", claims.Username)
			assert.Equal(t, "uid-1", claims.UserUID)
		})
	}
}
