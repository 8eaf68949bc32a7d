package stripe

// SubscriptionStatus статус подписки на стороне Stripe.
//
// Набор известных значений фиксирован; всё, что в него не входит,
// при сверке трактуется как неизвестный статус, а не пробрасывается дальше.
type SubscriptionStatus string

const (
	StatusTrialing          SubscriptionStatus = "trialing"
	StatusActive            SubscriptionStatus = "active"
	StatusPastDue           SubscriptionStatus = "past_due"
	StatusCanceled          SubscriptionStatus = "canceled"
	StatusUnpaid            SubscriptionStatus = "unpaid"
	StatusIncomplete        SubscriptionStatus = "incomplete"
	StatusIncompleteExpired SubscriptionStatus = "incomplete_expired"
)

// Subscription срез полей объекта подписки Stripe, используемых при сверке.
type Subscription struct {
	ID                string             `json:"id"`
	Status            SubscriptionStatus `json:"status"`
	CancelAtPeriodEnd bool               `json:"cancel_at_period_end"`
	CurrentPeriodEnd  int64              `json:"current_period_end"` // unix-время конца оплаченного периода
	Customer          string             `json:"customer"`
	Plan              *Plan              `json:"plan,omitempty"`
}

// Plan тарифный план подписки.
type Plan struct {
	Amount   int64  `json:"amount"`   // сумма за период в минимальных единицах валюты
	Currency string `json:"currency"` // валюта, например "gbp"
}

// CheckoutSession сессия оплаты Stripe Checkout.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"` // адрес страницы оплаты для редиректа
}

// CheckoutParams параметры создания сессии оплаты.
type CheckoutParams struct {
	CustomerEmail string
	PriceID       string
	TrialDays     int
	PromotionCode string // ID промокода Stripe, опционально
	SuccessURL    string
	CancelURL     string
	ClientRefID   string // наш UID пользователя для связвания webhook-событий
}

// WebhookEvent срез полей события webhook.
type WebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID           string `json:"id"`
			Customer     string `json:"customer"`
			Subscription string `json:"subscription"`
			ClientRefID  string `json:"client_reference_id"`
		} `json:"object"`
	} `json:"data"`
}
