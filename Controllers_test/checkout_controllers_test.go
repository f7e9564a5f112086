package Controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/asing407/foodie-barcart/gateway"
	"github.com/asing407/foodie-barcart/models"
	"github.com/asing407/foodie-barcart/router"
	"github.com/asing407/foodie-barcart/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// fakeGateway satisfies services.PaymentGateway for HTTP-level tests.
type fakeGateway struct {
	session    *gateway.Session
	createErr  error
	lastParams gateway.SessionParams

	verify func(payload []byte, signatureHeader string) (*gateway.Event, error)
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, params gateway.SessionParams) (*gateway.Session, error) {
	g.lastParams = params
	if g.createErr != nil {
		return nil, g.createErr
	}
	return g.session, nil
}

func (g *fakeGateway) VerifyAndParseEvent(payload []byte, signatureHeader string) (*gateway.Event, error) {
	return g.verify(payload, signatureHeader)
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.OrderItem{},
		&models.StatusUpdate{},
		&models.PaymentConfirmation{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func registerAndLogin(t *testing.T, r *gin.Engine) string {
	payload := map[string]string{
		"name":     "Test User",
		"email":    "test@example.com",
		"password": "password123",
	}
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	login := map[string]string{
		"email":    "test@example.com",
		"password": "password123",
	}
	body, _ = json.Marshal(login)
	req, _ = http.NewRequest("POST", "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	token, ok := data["token"].(string)
	assert.True(t, ok)
	return token
}

func TestCreateCheckoutEndpoint(t *testing.T) {
	db := setupTestDB(t)
	gw := &fakeGateway{session: &gateway.Session{ID: "cs_1", URL: "https://checkout.stripe.com/pay/cs_1"}}
	r := router.SetupRouter(db, gw)
	token := registerAndLogin(t, r)

	payload := map[string]interface{}{
		"cartItems": []map[string]interface{}{
			{"id": "A", "name": "Old Fashioned", "price": 10.00, "quantity": 2},
			{"id": "B", "name": "Fries", "price": 5.50, "quantity": 1},
		},
	}
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", "/checkout", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Origin", "https://shop.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_1", resp["url"])

	var orders []models.Order
	assert.NoError(t, db.Preload("OrderItems").Find(&orders).Error)
	assert.Len(t, orders, 1)
	assert.Equal(t, 25.50, orders[0].TotalAmount)
	assert.Len(t, orders[0].OrderItems, 2)
	assert.Equal(t, orders[0].ID, gw.lastParams.OrderID)
}

func TestCreateCheckoutRequiresAuth(t *testing.T) {
	db := setupTestDB(t)
	r := router.SetupRouter(db, &fakeGateway{})

	payload := map[string]interface{}{
		"cartItems": []map[string]interface{}{
			{"id": "A", "name": "x", "price": 1.00, "quantity": 1},
		},
	}
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", "/checkout", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var orderCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	assert.Zero(t, orderCount)
}

func TestCreateCheckoutEmptyCart(t *testing.T) {
	db := setupTestDB(t)
	r := router.SetupRouter(db, &fakeGateway{})
	token := registerAndLogin(t, r)

	body := []byte(`{"cartItems": []}`)
	req, _ := http.NewRequest("POST", "/checkout", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
