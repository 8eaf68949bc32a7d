package promo

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/salonsuccess/salon-manager/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) UpdateSubscriptionState(ctx context.Context, userUID string,
	status models.SubscriptionStatus, endDate *time.Time, cancelAtPeriodEnd bool) error {
	args := m.Called(ctx, userUID, status, endDate, cancelAtPeriodEnd)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newService(repo *RepoMock, now time.Time) *Service {
	svc := New(repo, newNoopLogger())
	svc.now = func() time.Time { return now }
	return svc
}

func TestApplyCode_FreeAccessGrant(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	wantEnd := now.AddDate(0, 0, 180)

	repo := new(RepoMock)
	repo.On("UpdateSubscriptionState", mock.Anything, "uid-1", models.StatusFreeAccess,
		mock.MatchedBy(func(end *time.Time) bool {
			return end != nil && end.Equal(wantEnd)
		}), false).Return(nil).Once()

	svc := newService(repo, now)
	user := &models.User{UID: "uid-1", SubscriptionStatus: models.StatusInactive}

	grant, err := svc.ApplyCode(context.Background(), user, "CLIENT6FREE")
	require.NoError(t, err)

	assert.Equal(t, 180, grant.FreeDays)
	assert.Equal(t, models.StatusFreeAccess, user.SubscriptionStatus)
	require.NotNil(t, user.SubscriptionEndDate)
	assert.True(t, user.SubscriptionEndDate.Equal(wantEnd))

	repo.AssertExpectations(t)
}

func TestApplyCode_CaseInsensitiveWithWhitespace(t *testing.T) {
	repo := new(RepoMock)
	repo.On("UpdateSubscriptionState", mock.Anything, "uid-1", models.StatusFreeAccess,
		mock.Anything, false).Return(nil).Once()

	svc := newService(repo, time.Now())
	user := &models.User{UID: "uid-1", SubscriptionStatus: models.StatusInactive}

	grant, err := svc.ApplyCode(context.Background(), user, "  client6free ")
	require.NoError(t, err)
	assert.Equal(t, "CLIENT6FREE", grant.Code)
}

func TestApplyCode_UnknownCode(t *testing.T) {
	repo := new(RepoMock)
	svc := newService(repo, time.Now())
	user := &models.User{UID: "uid-1", SubscriptionStatus: models.StatusInactive}

	grant, err := svc.ApplyCode(context.Background(), user, "TOTALLYFAKE")
	assert.ErrorIs(t, err, ErrInvalidCode)
	assert.Nil(t, grant)
	assert.Equal(t, models.StatusInactive, user.SubscriptionStatus)
	repo.AssertNotCalled(t, "UpdateSubscriptionState",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApplyCode_RepeatedApplicationDoesNotExtendWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	wantEnd := now.AddDate(0, 0, 180)

	repo := new(RepoMock)
	repo.On("UpdateSubscriptionState", mock.Anything, "uid-1", models.StatusFreeAccess,
		mock.Anything, false).Return(nil).Once()

	svc := newService(repo, now)
	user := &models.User{UID: "uid-1", SubscriptionStatus: models.StatusInactive}

	_, err := svc.ApplyCode(context.Background(), user, "CLIENT6FREE")
	require.NoError(t, err)

	// повторная отправка формы: грант ещё действует, окно не продлевается
	grant, err := svc.ApplyCode(context.Background(), user, "CLIENT6FREE")
	assert.ErrorIs(t, err, ErrGrantStillActive)
	assert.Nil(t, grant)
	assert.True(t, user.SubscriptionEndDate.Equal(wantEnd), "end date must not move past the original 180 days")

	repo.AssertExpectations(t)
}

func TestApplyCode_ExpiredGrantCanBeReapplied(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	expired := now.AddDate(0, 0, -1)

	repo := new(RepoMock)
	repo.On("UpdateSubscriptionState", mock.Anything, "uid-1", models.StatusFreeAccess,
		mock.Anything, false).Return(nil).Once()

	svc := newService(repo, now)
	user := &models.User{
		UID:                 "uid-1",
		SubscriptionStatus:  models.StatusFreeAccess,
		SubscriptionEndDate: &expired,
	}

	grant, err := svc.ApplyCode(context.Background(), user, "SALONFREE30")
	require.NoError(t, err)
	assert.Equal(t, 30, grant.FreeDays)
	assert.True(t, user.SubscriptionEndDate.After(now))
}

func TestApplyCode_DiscountCodeDoesNotMutateUser(t *testing.T) {
	repo := new(RepoMock)
	svc := newService(repo, time.Now())
	user := &models.User{UID: "uid-1", SubscriptionStatus: models.StatusInactive}

	grant, err := svc.ApplyCode(context.Background(), user, "LAUNCH20")
	require.NoError(t, err)
	assert.Equal(t, "promo_launch20", grant.PromotionCode)
	assert.Zero(t, grant.FreeDays)
	assert.Equal(t, models.StatusInactive, user.SubscriptionStatus)
	repo.AssertNotCalled(t, "UpdateSubscriptionState",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApplyCode_OverridesDormantStripeState(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	subID := "sub_dormant"

	repo := new(RepoMock)
	repo.On("UpdateSubscriptionState", mock.Anything, "uid-1", models.StatusFreeAccess,
		mock.Anything, false).Return(nil).Once()

	svc := newService(repo, now)
	user := &models.User{
		UID:                  "uid-1",
		SubscriptionStatus:   models.StatusCancelled,
		StripeSubscriptionID: &subID,
	}

	_, err := svc.ApplyCode(context.Background(), user, "CLIENT6FREE")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFreeAccess, user.SubscriptionStatus)
	// внешние ссылки сохраняются, бесплатный доступ живёт рядом со спящей подпиской
	assert.Equal(t, &subID, user.StripeSubscriptionID)
}
