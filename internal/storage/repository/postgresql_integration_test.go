package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonsuccess/salon-manager/internal/models"
)

func TestStorage_RegisterUser(t *testing.T) {
	type args struct {
		ctx  context.Context
		user models.User
	}

	tests := []struct {
		name    string
		args    args
		wantErr bool
		setup   func(t *testing.T, factory *TestDataFactory)
	}{
		{
			name: "successful register user",
			args: args{
				ctx: context.Background(),
				user: models.User{
					Email:              "test@example.com",
					Username:           "testuser",
					PasswordHash:       "hashedpassword",
					Role:               "user",
					SubscriptionStatus: models.StatusInactive,
				},
			},
			wantErr: false,
			setup:   func(_ *testing.T, _ *TestDataFactory) {},
		},
		{
			name: "register user with duplicate username",
			args: args{
				ctx: context.Background(),
				user: models.User{
					Email:              "test2@example.com",
					Username:           "testuser",
					PasswordHash:       "hashedpassword2",
					Role:               "user",
					SubscriptionStatus: models.StatusInactive,
				},
			},
			wantErr: true,
			setup: func(t *testing.T, factory *TestDataFactory) {
				userUID := uuid.New().String()
				factory.CreateUser(t, userUID, "testuser", "test@example.com", "hashedpassword", "user")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			tt.setup(t, factory)

			uid, err := storage.RegisterUser(tt.args.ctx, tt.args.user)

			if tt.wantErr {
				require.Error(t, err)
				assert.Empty(t, uid)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, uid)

			verification := NewTestVerification(storage)
			verification.VerifyUserExists(t, uid)
			verification.VerifyUserSubscriptionStatus(t, uid, "inactive")
		})
	}
}

func TestStorage_GetUser(t *testing.T) {
	endDate := time.Now().AddDate(0, 1, 0).UTC().Truncate(time.Second)

	tests := []struct {
		name    string
		want    *models.User
		wantErr bool
		setup   func(t *testing.T, factory *TestDataFactory) string
	}{
		{
			name: "successful get user by UID",
			want: &models.User{
				Email:               "test@example.com",
				Username:            "testuser",
				PasswordHash:        "hashedpassword",
				Role:                "user",
				SubscriptionStatus:  models.StatusTrial,
				SubscriptionEndDate: &endDate,
			},
			wantErr: false,
			setup: func(t *testing.T, factory *TestDataFactory) string {
				userUID := uuid.New().String()
				factory.CreateUserWithSubscription(t, userUID, "testuser", "test@example.com",
					"hashedpassword", "user", "trial", &endDate)
				return userUID
			},
		},
		{
			name:    "get non-existing user by UID",
			want:    nil,
			wantErr: true,
			setup: func(_ *testing.T, _ *TestDataFactory) string {
				return uuid.New().String()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			userUID := tt.setup(t, factory)
			if tt.want != nil {
				tt.want.UID = userUID
			}

			got, err := storage.GetUser(context.Background(), userUID)

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want.UID, got.UID)
			assert.Equal(t, tt.want.Email, got.Email)
			assert.Equal(t, tt.want.Username, got.Username)
			assert.Equal(t, tt.want.PasswordHash, got.PasswordHash)
			assert.Equal(t, tt.want.Role, got.Role)
			assert.Equal(t, tt.want.SubscriptionStatus, got.SubscriptionStatus)
			require.NotNil(t, got.SubscriptionEndDate)
			assert.True(t, endDate.Equal(*got.SubscriptionEndDate))
		})
	}
}

func TestStorage_GetUserByUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
		setup    func(t *testing.T, factory *TestDataFactory) string
	}{
		{
			name:     "successful get user by username",
			username: "testuser",
			wantErr:  false,
			setup: func(t *testing.T, factory *TestDataFactory) string {
				userUID := uuid.New().String()
				factory.CreateUser(t, userUID, "testuser", "test@example.com", "hashedpassword", "user")
				return userUID
			},
		},
		{
			name:     "get non-existing user",
			username: "nonexistent",
			wantErr:  true,
			setup:    func(_ *testing.T, _ *TestDataFactory) string { return "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			userUID := tt.setup(t, factory)

			got, err := storage.GetUserByUsername(context.Background(), tt.username)

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, userUID, got.UID)
			assert.Equal(t, tt.username, got.Username)
		})
	}
}

func TestStorage_GetUserByStripeCustomerID(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := uuid.New().String()
	factory.CreateUser(t, userUID, "testuser", "test@example.com", "hashedpassword", "user")

	err := storage.UpdateStripeRefs(context.Background(), userUID, "cus_123", "sub_456")
	require.NoError(t, err)

	got, err := storage.GetUserByStripeCustomerID(context.Background(), "cus_123")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, userUID, got.UID)
	require.NotNil(t, got.StripeCustomerID)
	assert.Equal(t, "cus_123", *got.StripeCustomerID)
	require.NotNil(t, got.StripeSubscriptionID)
	assert.Equal(t, "sub_456", *got.StripeSubscriptionID)

	_, err = storage.GetUserByStripeCustomerID(context.Background(), "cus_unknown")
	require.Error(t, err)
}

func TestStorage_UpdateSubscriptionState(t *testing.T) {
	endDate := time.Now().AddDate(0, 1, 0).UTC().Truncate(time.Second)

	tests := []struct {
		name    string
		status  models.SubscriptionStatus
		endDate *time.Time
		cancel  bool
		wantErr bool
		setup   func(t *testing.T, factory *TestDataFactory) string
	}{
		{
			name:    "successful update to active",
			status:  models.StatusActive,
			endDate: &endDate,
			cancel:  false,
			wantErr: false,
			setup: func(t *testing.T, factory *TestDataFactory) string {
				userUID := uuid.New().String()
				factory.CreateUser(t, userUID, "testuser", "test@example.com", "hashedpassword", "user")
				return userUID
			},
		},
		{
			name:    "update non-existing user",
			status:  models.StatusActive,
			endDate: &endDate,
			cancel:  false,
			wantErr: true,
			setup: func(_ *testing.T, _ *TestDataFactory) string {
				return uuid.New().String()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			userUID := tt.setup(t, factory)

			err := storage.UpdateSubscriptionState(context.Background(), userUID, tt.status, tt.endDate, tt.cancel)

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			verification := NewTestVerification(storage)
			verification.VerifyUserSubscriptionState(t, userUID, string(tt.status), tt.endDate, tt.cancel)
		})
	}
}

func TestStorage_UpdateSubscriptionState_ConcurrentReads(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	userUID := uuid.New().String()

	trialEnd := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	activeEnd := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	factory.CreateUserWithSubscription(t, userUID, "testuser", "test@example.com",
		"hashedpassword", "user", "trial", &trialEnd)

	// Писатель переключает состояние между двумя полными снимками,
	// читатель в это время не должен увидеть смесь полей из разных снимков
	writeErr := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			var err error
			if i%2 == 0 {
				err = storage.UpdateSubscriptionState(ctx, userUID, models.StatusActive, &activeEnd, true)
			} else {
				err = storage.UpdateSubscriptionState(ctx, userUID, models.StatusTrial, &trialEnd, false)
			}
			if err != nil {
				select {
				case writeErr <- err:
				default:
				}
				return
			}
		}
	}()

	reading := true
	for reading {
		select {
		case <-done:
			reading = false
		default:
		}

		got, err := storage.GetUser(ctx, userUID)
		require.NoError(t, err)
		require.NotNil(t, got.SubscriptionEndDate)

		switch got.SubscriptionStatus {
		case models.StatusActive:
			assert.True(t, activeEnd.Equal(*got.SubscriptionEndDate),
				"active status with stale end date %v", got.SubscriptionEndDate)
			assert.True(t, got.CancelAtPeriodEnd, "active status with stale cancel flag")
		case models.StatusTrial:
			assert.True(t, trialEnd.Equal(*got.SubscriptionEndDate),
				"trial status with stale end date %v", got.SubscriptionEndDate)
			assert.False(t, got.CancelAtPeriodEnd, "trial status with stale cancel flag")
		default:
			t.Fatalf("observed state from neither snapshot: %q", got.SubscriptionStatus)
		}
	}

	select {
	case err := <-writeErr:
		require.NoError(t, err)
	default:
	}
}

func TestStorage_ListUsers(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	factory.CreateUser(t, uuid.New().String(), "alice", "alice@example.com", "hash1", "user")
	factory.CreateUser(t, uuid.New().String(), "bob", "bob@example.com", "hash2", "user")
	factory.CreateUser(t, uuid.New().String(), "carol", "carol@example.com", "hash3", "admin")

	got, err := storage.ListUsers(context.Background(), 2, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].Username)
	assert.Equal(t, "bob", got[1].Username)

	got, err = storage.ListUsers(context.Background(), 10, 2)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "carol", got[0].Username)
}

func TestStorage_ExpireLapsedEntitlements(t *testing.T) {
	now := time.Now().UTC()
	pastDate := now.AddDate(0, 0, -1)
	futureDate := now.AddDate(0, 0, 7)

	tests := []struct {
		name      string
		wantCount int
		setup     func(t *testing.T, factory *TestDataFactory) map[string]string
	}{
		{
			name:      "expired trial and free_access become inactive",
			wantCount: 2,
			setup: func(t *testing.T, factory *TestDataFactory) map[string]string {
				lapsedTrial := uuid.New().String()
				lapsedFree := uuid.New().String()
				factory.CreateUserWithSubscription(t, lapsedTrial, "trialuser", "trial@example.com",
					"hash", "user", "trial", &pastDate)
				factory.CreateUserWithSubscription(t, lapsedFree, "freeuser", "free@example.com",
					"hash", "user", "free_access", &pastDate)
				return map[string]string{lapsedTrial: "inactive", lapsedFree: "inactive"}
			},
		},
		{
			name:      "active and future-dated users untouched",
			wantCount: 0,
			setup: func(t *testing.T, factory *TestDataFactory) map[string]string {
				activeUser := uuid.New().String()
				futureTrial := uuid.New().String()
				factory.CreateUserWithSubscription(t, activeUser, "activeuser", "active@example.com",
					"hash", "user", "active", &pastDate)
				factory.CreateUserWithSubscription(t, futureTrial, "futureuser", "future@example.com",
					"hash", "user", "trial", &futureDate)
				return map[string]string{activeUser: "active", futureTrial: "trial"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			wantStatuses := tt.setup(t, factory)

			got, err := storage.ExpireLapsedEntitlements(context.Background(), now)
			require.NoError(t, err)
			assert.Len(t, got, tt.wantCount)

			verification := NewTestVerification(storage)
			for uid, status := range wantStatuses {
				verification.VerifyUserSubscriptionStatus(t, uid, status)
			}
		})
	}
}

func TestStorage_TreatmentCRUD(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	userUID := uuid.New().String()
	factory.CreateUser(t, userUID, "testuser", "test@example.com", "hashedpassword", "user")

	id, err := storage.CreateTreatment(ctx, models.Treatment{
		UserUID:         userUID,
		Name:            "Gel Manicure",
		Price:           4500,
		ProductCost:     600,
		DurationMinutes: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	verification := NewTestVerification(storage)
	verification.VerifyTreatmentExists(t, id)

	list, err := storage.ListTreatments(ctx, userUID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Gel Manicure", list[0].Name)
	assert.Equal(t, 4500, list[0].Price)

	updated, err := storage.UpdateTreatment(ctx, models.Treatment{
		Name:            "Gel Manicure Deluxe",
		Price:           5500,
		ProductCost:     800,
		DurationMinutes: 75,
	}, id, userUID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	// Чужой пользователь не видит и не может удалить запись
	otherUID := uuid.New().String()
	factory.CreateUser(t, otherUID, "otheruser", "other@example.com", "hash", "user")
	otherList, err := storage.ListTreatments(ctx, otherUID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, otherList)

	removed, err := storage.RemoveTreatment(ctx, id, otherUID)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	removed, err = storage.RemoveTreatment(ctx, id, userUID)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	verification.VerifyTreatmentDeleted(t, id)
}

func TestStorage_MoneyPotCRUD(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	userUID := uuid.New().String()
	factory.CreateUser(t, userUID, "testuser", "test@example.com", "hashedpassword", "user")

	id, err := storage.CreateMoneyPot(ctx, models.MoneyPot{
		UserUID:     userUID,
		Name:        "Tax",
		Percent:     20,
		TargetCents: 500000,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	updated, err := storage.UpdateMoneyPot(ctx, models.MoneyPot{
		Name:        "Tax",
		Percent:     25,
		TargetCents: 500000,
		SavedCents:  120000,
	}, id, userUID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	list, err := storage.ListMoneyPots(ctx, userUID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 25, list[0].Percent)
	assert.Equal(t, 120000, list[0].SavedCents)

	removed, err := storage.RemoveMoneyPot(ctx, id, userUID)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestStorage_SumStockPurchasesSince(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	userUID := uuid.New().String()
	factory.CreateUser(t, userUID, "testuser", "test@example.com", "hashedpassword", "user")

	monthStart := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	// Две закупки в текущем месяце и одна в прошлом
	factory.CreateStockPurchase(t, userUID, "Beauty Supplies Ltd", 12000, monthStart.AddDate(0, 0, 4))
	factory.CreateStockPurchase(t, userUID, "Nail Art Co", 8000, monthStart.AddDate(0, 0, 10))
	factory.CreateStockPurchase(t, userUID, "Beauty Supplies Ltd", 30000, monthStart.AddDate(0, 0, -5))

	total, err := storage.SumStockPurchasesSince(ctx, userUID, monthStart)
	require.NoError(t, err)
	assert.Equal(t, 20000, total)

	// У пользователя без закупок сумма нулевая
	otherUID := uuid.New().String()
	factory.CreateUser(t, otherUID, "otheruser", "other@example.com", "hash", "user")
	total, err = storage.SumStockPurchasesSince(ctx, otherUID, monthStart)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestStorage_StockPurchaseListAndRemove(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	userUID := uuid.New().String()
	factory.CreateUser(t, userUID, "testuser", "test@example.com", "hashedpassword", "user")

	first := factory.CreateStockPurchase(t, userUID, "Beauty Supplies Ltd", 12000,
		time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))
	factory.CreateStockPurchase(t, userUID, "Nail Art Co", 8000,
		time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC))

	list, err := storage.ListStockPurchases(ctx, userUID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// Сортировка по дате закупки, сначала новые
	assert.Equal(t, "Nail Art Co", list[0].Supplier)
	assert.Equal(t, "Beauty Supplies Ltd", list[1].Supplier)

	removed, err := storage.RemoveStockPurchase(ctx, first, userUID)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	list, err = storage.ListStockPurchases(ctx, userUID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestCheckDatabaseReady(t *testing.T) {
	tests := []struct {
		name         string
		setup        func(t *testing.T, storage *Storage)
		wantError    bool
		errorContain string
	}{
		{
			name: "table exists",
			setup: func(_ *testing.T, _ *Storage) {
				// Таблицы уже созданы в setupTestDatabase
			},
			wantError: false,
		},
		{
			name: "table missing",
			setup: func(t *testing.T, storage *Storage) {
				_, err := storage.DB.Exec(`DROP TABLE IF EXISTS stock_purchases CASCADE`)
				require.NoError(t, err)
				_, err = storage.DB.Exec(`DROP TABLE IF EXISTS money_pots CASCADE`)
				require.NoError(t, err)
				_, err = storage.DB.Exec(`DROP TABLE IF EXISTS treatments CASCADE`)
				require.NoError(t, err)
				_, err = storage.DB.Exec(`DROP TABLE IF EXISTS users CASCADE`)
				require.NoError(t, err)
			},
			wantError:    true,
			errorContain: "missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()
			tt.setup(t, storage)

			err := CheckDatabaseReady(storage)
			if tt.wantError {
				require.Error(t, err)
				if tt.errorContain != "" {
					assert.Contains(t, err.Error(), tt.errorContain)
				}
			} else {
				require.NoError(t, err)
			}
		})
	}
}
