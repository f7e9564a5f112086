package services

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/asing407/foodie-barcart/gateway"
	"github.com/asing407/foodie-barcart/models"
	"github.com/asing407/foodie-barcart/store"
	"github.com/asing407/foodie-barcart/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

// stubGateway stands in for the Stripe client.
type stubGateway struct {
	session    *gateway.Session
	createErr  error
	lastParams gateway.SessionParams

	event     *gateway.Event
	verifyErr error
}

func (g *stubGateway) CreateCheckoutSession(ctx context.Context, params gateway.SessionParams) (*gateway.Session, error) {
	g.lastParams = params
	if g.createErr != nil {
		return nil, g.createErr
	}
	return g.session, nil
}

func (g *stubGateway) VerifyAndParseEvent(payload []byte, signatureHeader string) (*gateway.Event, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return g.event, nil
}

func setupServiceDB(t *testing.T) (*gorm.DB, *store.OrderStore) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Order{},
		&models.OrderItem{},
		&models.StatusUpdate{},
		&models.PaymentConfirmation{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db, store.NewOrderStore(db)
}

func TestCreateCheckout(t *testing.T) {
	db, orderStore := setupServiceDB(t)
	gw := &stubGateway{session: &gateway.Session{ID: "cs_test_1", URL: "https://checkout.stripe.com/pay/cs_test_1"}}
	svc := NewCheckoutService(orderStore, gw)

	cart := []CartItem{
		{ItemID: "A", Name: "Old Fashioned", Price: 10.00, Quantity: 2},
		{ItemID: "B", Name: "Fries", Price: 5.50, Quantity: 1},
	}

	url, err := svc.CreateCheckout(context.Background(), cart, "user-1", "user@example.com", "https://shop.example.com/")
	assert.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_test_1", url)

	var orders []models.Order
	assert.NoError(t, db.Preload("OrderItems").Find(&orders).Error)
	assert.Len(t, orders, 1)
	assert.Equal(t, 25.50, orders[0].TotalAmount)
	assert.Equal(t, models.OrderStatusPending, orders[0].Status)
	assert.Len(t, orders[0].OrderItems, 2)

	// Session carries the order id as correlation token and the
	// callback URLs derive from the origin.
	assert.Equal(t, orders[0].ID, gw.lastParams.OrderID)
	assert.Equal(t, "https://shop.example.com/success?order_id="+orders[0].ID, gw.lastParams.SuccessURL)
	assert.Equal(t, "https://shop.example.com/?canceled=true", gw.lastParams.CancelURL)
	assert.Equal(t, "user@example.com", gw.lastParams.CustomerEmail)
	assert.Len(t, gw.lastParams.LineItems, 2)
	assert.Equal(t, int64(1000), gw.lastParams.LineItems[0].UnitAmount)
	assert.Equal(t, int64(550), gw.lastParams.LineItems[1].UnitAmount)
}

func TestCreateCheckoutCentAccurateTotal(t *testing.T) {
	_, orderStore := setupServiceDB(t)
	gw := &stubGateway{session: &gateway.Session{ID: "cs", URL: "https://example.com"}}
	svc := NewCheckoutService(orderStore, gw)

	// 0.1+0.2 style drift must not leak into the total.
	cart := []CartItem{
		{ItemID: "A", Name: "Espresso", Price: 0.10, Quantity: 3},
		{ItemID: "B", Name: "Biscuit", Price: 0.20, Quantity: 3},
	}

	_, err := svc.CreateCheckout(context.Background(), cart, "user-1", "", "https://shop.example.com")
	assert.NoError(t, err)

	order, err := orderStore.FindOrder(context.Background(), gw.lastParams.OrderID)
	assert.NoError(t, err)
	assert.Equal(t, 0.90, order.TotalAmount)
}

func TestCreateCheckoutInvalidCart(t *testing.T) {
	_, orderStore := setupServiceDB(t)
	gw := &stubGateway{}
	svc := NewCheckoutService(orderStore, gw)

	tests := []struct {
		name string
		cart []CartItem
	}{
		{"empty cart", nil},
		{"zero quantity", []CartItem{{ItemID: "A", Name: "x", Price: 1.00, Quantity: 0}}},
		{"negative price", []CartItem{{ItemID: "A", Name: "x", Price: -1.00, Quantity: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateCheckout(context.Background(), tt.cart, "user-1", "", "https://shop.example.com")
			assert.ErrorIs(t, err, ErrInvalidCart)
		})
	}
}

func TestCreateCheckoutUnauthorized(t *testing.T) {
	_, orderStore := setupServiceDB(t)
	svc := NewCheckoutService(orderStore, &stubGateway{})

	_, err := svc.CreateCheckout(context.Background(), []CartItem{{ItemID: "A", Name: "x", Price: 1, Quantity: 1}}, "", "", "https://shop.example.com")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreateCheckoutRollsBackOnGatewayFailure(t *testing.T) {
	db, orderStore := setupServiceDB(t)
	gw := &stubGateway{createErr: errors.New("stripe API error: expired key")}
	svc := NewCheckoutService(orderStore, gw)

	cart := []CartItem{
		{ItemID: "A", Name: "x", Price: 4.00, Quantity: 1},
		{ItemID: "B", Name: "y", Price: 3.00, Quantity: 1},
		{ItemID: "C", Name: "z", Price: 2.00, Quantity: 1},
	}

	_, err := svc.CreateCheckout(context.Background(), cart, "user-2", "", "https://shop.example.com")
	assert.ErrorIs(t, err, ErrGateway)

	// Nothing may survive the failed checkout.
	var orderCount, itemCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	db.Model(&models.OrderItem{}).Count(&itemCount)
	assert.Zero(t, orderCount)
	assert.Zero(t, itemCount)
}
