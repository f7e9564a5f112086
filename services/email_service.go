package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/asing407/foodie-barcart/config"
	"github.com/asing407/foodie-barcart/models"
)

// EmailService sends order confirmation emails through the Resend API.
type EmailService struct {
	config     *config.ResendConfig
	httpClient *http.Client
	baseURL    string
}

func NewEmailService(cfg *config.ResendConfig) *EmailService {
	return &EmailService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: "https://api.resend.com",
	}
}

// SendOrderConfirmation emails a summary of the order to the given
// address.
func (es *EmailService) SendOrderConfirmation(ctx context.Context, to string, order *models.Order) error {
	if es.config.APIKey == "" {
		return fmt.Errorf("RESEND_API_KEY is not set")
	}

	var itemLines bytes.Buffer
	for _, item := range order.OrderItems {
		fmt.Fprintf(&itemLines, "%dx %s - $%.2f<br>",
			item.Quantity, item.MenuItemID, item.PriceAtTime*float64(item.Quantity))
	}

	html := fmt.Sprintf(`<h1>Order Confirmation</h1>
<p>Thank you for your order! Your food will be served quickly.</p>
<h2>Order Details:</h2>
%s
<h3>Total: $%.2f</h3>`, itemLines.String(), order.TotalAmount)

	payload := map[string]interface{}{
		"from":    es.config.FromAddress,
		"to":      to,
		"subject": "Order Confirmation",
		"html":    html,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, es.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+es.config.APIKey)

	resp, err := es.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return nil
}
