package payments

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	config "github.com/etuitionbd/etuition_backend/configs"
)

// CheckoutSession is the slice of the gateway's session object the backend
// cares about. Metadata is the only channel that links a session back to the
// application and tuition it pays for.
type CheckoutSession struct {
	ID              string            `json:"id"`
	URL             string            `json:"url"`
	PaymentStatus   string            `json:"payment_status"`
	PaymentIntentID string            `json:"payment_intent"`
	AmountTotal     int64             `json:"amount_total"`
	Currency        string            `json:"currency"`
	CustomerEmail   string            `json:"customer_email"`
	Metadata        map[string]string `json:"metadata"`
}

type CreateSessionParams struct {
	Description   string
	Amount        int
	Currency      string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

type CheckoutProvider interface {
	CreateSession(params CreateSessionParams) (*CheckoutSession, error)
	RetrieveSession(sessionID string) (*CheckoutSession, error)
}

// Checkout is the active gateway client. Set by InitStripe; tests swap in a
// stub.
var Checkout CheckoutProvider

type StripeService struct {
	APIBase   string
	SecretKey string
	client    *http.Client
}

func InitStripe() {
	secretKey := config.Config("STRIPE_SECRET_KEY")
	if secretKey == "" {
		fmt.Println("⚠️ STRIPE_SECRET_KEY not configured, checkout disabled")
		return
	}

	apiBase := config.Config("STRIPE_API_BASE_URL")
	if apiBase == "" {
		apiBase = "https://api.stripe.com"
	}

	Checkout = &StripeService{
		APIBase:   apiBase,
		SecretKey: secretKey,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
	fmt.Println("✅ Stripe checkout client initialized")
}

func (s *StripeService) CreateSession(params CreateSessionParams) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	form.Set("customer_email", params.CustomerEmail)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(params.Currency))
	form.Set("line_items[0][price_data][product_data][name]", params.Description)
	// Stripe amounts are in the smallest currency unit.
	form.Set("line_items[0][price_data][unit_amount]", strconv.Itoa(params.Amount*100))
	for key, value := range params.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}

	req, err := http.NewRequest("POST", fmt.Sprintf("%s/v1/checkout/sessions", s.APIBase), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.SecretKey))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to create checkout session: %s", string(respBody))
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *StripeService) RetrieveSession(sessionID string) (*CheckoutSession, error) {
	req, err := http.NewRequest("GET", fmt.Sprintf("%s/v1/checkout/sessions/%s", s.APIBase, url.PathEscape(sessionID)), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.SecretKey))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to retrieve checkout session: %s", string(respBody))
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, err
	}
	return &session, nil
}
