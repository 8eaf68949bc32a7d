// Package stripe реализует клиент Stripe API, ограниченный операциями,
// которые нужны биллингу: чтение подписки, создание checkout-сессии,
// отложенная отмена и проверка подписи webhook-событий.
package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client клиент Stripe API. Запросы аутентифицируются секретным ключом,
// тело POST-запросов кодируется как form-data, как того требует API.
type Client struct {
	secretKey  string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент Stripe.
func NewClient(secretKey string) *Client {
	return &Client{
		secretKey:  secretKey,
		apiURL:     "https://api.stripe.com/v1",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientWithURL создаёт клиент с нестандартным адресом API. Используется в тестах.
func NewClientWithURL(secretKey, apiURL string) *Client {
	c := NewClient(secretKey)
	c.apiURL = apiURL
	return c
}

func (c *Client) newRequest(ctx context.Context, method, path string, form url.Values) (*http.Request, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return errors.New("unexpected status: " + resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// GetSubscription возвращает объект подписки по её ID.
func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	const op = "stripe.GetSubscription"
	req, err := c.newRequest(ctx, http.MethodGet, "/subscriptions/"+subscriptionID, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var sub Subscription
	if err := c.do(req, &sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sub, nil
}

// CreateCheckoutSession создаёт checkout-сессию режима subscription.
func (c *Client) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	const op = "stripe.CreateCheckoutSession"
	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("customer_email", params.CustomerEmail)
	form.Set("line_items[0][price]", params.PriceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	form.Set("client_reference_id", params.ClientRefID)
	if params.TrialDays > 0 {
		form.Set("subscription_data[trial_period_days]", strconv.Itoa(params.TrialDays))
	}
	if params.PromotionCode != "" {
		form.Set("discounts[0][promotion_code]", params.PromotionCode)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/checkout/sessions", form)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var session CheckoutSession
	if err := c.do(req, &session); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &session, nil
}

// CancelAtPeriodEnd помечает подписку на отмену в конце оплаченного периода.
// Доступ сохраняется до конца периода, возвращается обновлённая подписка.
func (c *Client) CancelAtPeriodEnd(ctx context.Context, subscriptionID string) (*Subscription, error) {
	const op = "stripe.CancelAtPeriodEnd"
	form := url.Values{}
	form.Set("cancel_at_period_end", "true")

	req, err := c.newRequest(ctx, http.MethodPost, "/subscriptions/"+subscriptionID, form)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var sub Subscription
	if err := c.do(req, &sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sub, nil
}

// VerifyWebhookSignature проверяет заголовок Stripe-Signature для тела события.
//
// Заголовок имеет вид "t=<unix>,v1=<hex hmac>"; подписывается строка
// "<t>.<body>" ключом endpoint-а. Метка времени, отстоящая от now больше
// чем на tolerance в любую сторону, отклоняется.
func VerifyWebhookSignature(body []byte, header, secret string, tolerance time.Duration, now time.Time) error {
	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			timestamp = v
		case "v1":
			signatures = append(signatures, v)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return errors.New("malformed signature header")
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return errors.New("malformed signature timestamp")
	}
	if skew := now.Sub(time.Unix(ts, 0)); skew > tolerance || skew < -tolerance {
		return errors.New("signature timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return errors.New("no matching signature")
}
