package gateway

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

	"github.com/asing407/foodie-barcart/config"
)

// Event kinds delivered by Stripe that order management reacts to.
// Anything else is acknowledged without effect.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
	EventPaymentSucceeded  = "payment_intent.succeeded"
	EventPaymentFailed     = "payment_intent.payment_failed"
)

var (
	ErrSignature  = errors.New("webhook signature verification failed")
	ErrNoOrderRef = errors.New("no order id found in event metadata")
)

// signatureTolerance bounds how old a signed webhook timestamp may be.
const signatureTolerance = 5 * time.Minute

// SessionLineItem is one display line on the hosted payment page.
// UnitAmount is in minor units (cents).
type SessionLineItem struct {
	Name        string
	Description string
	ImageURL    string
	UnitAmount  int64
	Quantity    int
}

// SessionParams describes the checkout session to create. OrderID is
// carried in the session metadata as the correlation token that links
// webhook events back to the order.
type SessionParams struct {
	LineItems     []SessionLineItem
	OrderID       string
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
}

// Session is the created checkout session.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Event is a verified, parsed webhook event.
type Event struct {
	Kind          string
	OrderID       string
	FailureReason string
}

// StripeService talks to the Stripe HTTP API directly.
type StripeService struct {
	config     *config.StripeConfig
	httpClient *http.Client
	baseURL    string
	now        func() time.Time
}

// NewStripeService creates a StripeService from configuration.
func NewStripeService(cfg *config.StripeConfig) *StripeService {
	return &StripeService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: "https://api.stripe.com",
		now:     time.Now,
	}
}

// CreateCheckoutSession creates a hosted checkout session for a set of
// line items and returns its id and redirect URL.
func (ss *StripeService) CreateCheckoutSession(ctx context.Context, params SessionParams) (*Session, error) {
	if ss.config.SecretKey == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY is not set")
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	form.Set("metadata[order_id]", params.OrderID)
	if params.CustomerEmail != "" {
		form.Set("customer_email", params.CustomerEmail)
	}

	for i, item := range params.LineItems {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", "usd")
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		if item.Description != "" {
			form.Set(prefix+"[price_data][product_data][description]", item.Description)
		}
		if item.ImageURL != "" {
			form.Set(prefix+"[price_data][product_data][images][0]", item.ImageURL)
		}
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.UnitAmount, 10))
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
	}

	endpoint := ss.baseURL + "/v1/checkout/sessions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+ss.config.SecretKey)

	resp, err := ss.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("stripe API error: %s", apiErr.Error.Message)
		}
		return nil, fmt.Errorf("stripe API error: %s", string(body))
	}

	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("error unmarshaling response: %w", err)
	}
	if session.URL == "" {
		return nil, fmt.Errorf("no checkout URL received from stripe")
	}

	return &session, nil
}

// VerifyAndParseEvent authenticates a raw webhook payload against the
// webhook secret and parses it into a typed Event. The signature is
// checked before any of the payload is interpreted.
func (ss *StripeService) VerifyAndParseEvent(payload []byte, signatureHeader string) (*Event, error) {
	if err := ss.verifySignature(payload, signatureHeader); err != nil {
		return nil, err
	}

	var raw struct {
		Type string `json:"type"`
		Data struct {
			Object struct {
				Metadata         map[string]string `json:"metadata"`
				LastPaymentError *struct {
					Message string `json:"message"`
				} `json:"last_payment_error"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("error parsing event payload: %w", err)
	}

	event := &Event{
		Kind:    raw.Type,
		OrderID: raw.Data.Object.Metadata["order_id"],
	}
	if raw.Data.Object.LastPaymentError != nil {
		event.FailureReason = raw.Data.Object.LastPaymentError.Message
	}
	return event, nil
}

// verifySignature implements the Stripe-Signature scheme: the header
// carries a timestamp and one or more HMAC-SHA256 signatures over
// "<timestamp>.<payload>" keyed with the webhook secret.
func (ss *StripeService) verifySignature(payload []byte, header string) error {
	if ss.config.WebhookSecret == "" {
		return fmt.Errorf("%w: webhook secret not configured", ErrSignature)
	}
	if header == "" {
		return fmt.Errorf("%w: missing signature header", ErrSignature)
	}

	var timestamp int64
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		pair := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(pair) != 2 {
			continue
		}
		switch pair[0] {
		case "t":
			ts, err := strconv.ParseInt(pair[1], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: bad timestamp", ErrSignature)
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, pair[1])
		}
	}

	if timestamp == 0 || len(signatures) == 0 {
		return fmt.Errorf("%w: malformed signature header", ErrSignature)
	}

	age := ss.now().Sub(time.Unix(timestamp, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", ErrSignature)
	}

	expected := ComputeSignature(timestamp, payload, ss.config.WebhookSecret)
	for _, sig := range signatures {
		provided, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(provided, expected) {
			return nil
		}
	}
	return fmt.Errorf("%w: no matching signature", ErrSignature)
}

// ComputeSignature returns the HMAC-SHA256 signature Stripe would send
// for the given timestamp and payload.
func ComputeSignature(timestamp int64, payload []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return mac.Sum(nil)
}
