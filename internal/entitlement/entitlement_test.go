package entitlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/salonsuccess/salon-manager/internal/models"
)

func datePtr(t time.Time) *time.Time { return &t }

func TestEvaluate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		user          models.User
		wantAccess    bool
		wantTrial     bool
		wantDaysLeft  *int
		wantLabelPart string
	}{
		{
			name: "active subscription has access",
			user: models.User{
				SubscriptionStatus:  models.StatusActive,
				SubscriptionEndDate: datePtr(now.AddDate(0, 1, 0)),
			},
			wantAccess:    true,
			wantLabelPart: "active",
		},
		{
			name: "active with past end date still has access",
			user: models.User{
				SubscriptionStatus:  models.StatusActive,
				SubscriptionEndDate: datePtr(now.AddDate(0, 0, -5)),
			},
			wantAccess:    true,
			wantLabelPart: "active",
		},
		{
			name: "active with pending cancellation has access until period end",
			user: models.User{
				SubscriptionStatus:  models.StatusActive,
				SubscriptionEndDate: datePtr(now.AddDate(0, 0, 10)),
				CancelAtPeriodEnd:   true,
			},
			wantAccess:    true,
			wantLabelPart: "until period end",
		},
		{
			name: "free access before expiry",
			user: models.User{
				SubscriptionStatus:  models.StatusFreeAccess,
				SubscriptionEndDate: datePtr(now.AddDate(0, 0, 30)),
			},
			wantAccess:    true,
			wantDaysLeft:  intPtr(30),
			wantLabelPart: "free access",
		},
		{
			name: "free access expired",
			user: models.User{
				SubscriptionStatus:  models.StatusFreeAccess,
				SubscriptionEndDate: datePtr(now.AddDate(0, 0, -1)),
			},
			wantAccess:    false,
			wantLabelPart: "expired",
		},
		{
			name: "free access without end date fails closed",
			user: models.User{
				SubscriptionStatus: models.StatusFreeAccess,
			},
			wantAccess:    false,
			wantLabelPart: "contact support",
		},
		{
			name: "trial with 2 days 3 hours left rounds up to 3",
			user: models.User{
				SubscriptionStatus:  models.StatusTrial,
				SubscriptionEndDate: datePtr(now.Add(51 * time.Hour)),
			},
			wantAccess:    true,
			wantTrial:     true,
			wantDaysLeft:  intPtr(3),
			wantLabelPart: "trial",
		},
		{
			name: "trial expired",
			user: models.User{
				SubscriptionStatus:  models.StatusTrial,
				SubscriptionEndDate: datePtr(now.Add(-time.Hour)),
			},
			wantAccess:    false,
			wantTrial:     true,
			wantLabelPart: "expired",
		},
		{
			name: "trial without end date fails closed",
			user: models.User{
				SubscriptionStatus: models.StatusTrial,
			},
			wantAccess: false,
			wantTrial:  true,
		},
		{
			name:       "inactive",
			user:       models.User{SubscriptionStatus: models.StatusInactive},
			wantAccess: false,
		},
		{
			name:          "past due gets actionable message",
			user:          models.User{SubscriptionStatus: models.StatusPastDue},
			wantAccess:    false,
			wantLabelPart: "payment failed",
		},
		{
			name:          "cancelled",
			user:          models.User{SubscriptionStatus: models.StatusCancelled},
			wantAccess:    false,
			wantLabelPart: "cancelled",
		},
		{
			name:       "unknown status fails closed",
			user:       models.User{SubscriptionStatus: "premium_forever"},
			wantAccess: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(&tt.user, now)

			assert.Equal(t, tt.wantAccess, got.HasAccess)
			assert.Equal(t, tt.wantTrial, got.IsTrial)
			if tt.wantDaysLeft != nil {
				if assert.NotNil(t, got.DaysLeft) {
					assert.Equal(t, *tt.wantDaysLeft, *got.DaysLeft)
				}
			}
			if tt.wantLabelPart != "" {
				assert.Contains(t, got.StatusLabel, tt.wantLabelPart)
			}
		})
	}
}

func TestDaysLeft_FlooredAtZero(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, daysLeft(now, now.Add(-time.Minute)))
	assert.Equal(t, 0, daysLeft(now, now))
	assert.Equal(t, 1, daysLeft(now, now.Add(time.Minute)))
}

func intPtr(v int) *int { return &v }
