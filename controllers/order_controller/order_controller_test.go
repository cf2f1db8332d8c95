package order_controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nexkart/marketplace/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.InitLoggers()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// stubGateway implements clients.RazorpayClientWrapper for tests.
type stubGateway struct {
	orderID        string
	createErr      error
	checkoutValid  bool
	webhookValid   bool
	verifiedOrders []string
}

func (g *stubGateway) CreateOrder(data map[string]interface{}) (map[string]interface{}, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	return map[string]interface{}{"id": g.orderID}, nil
}

func (g *stubGateway) VerifyCheckoutSignature(orderID, paymentID, signature string) bool {
	g.verifiedOrders = append(g.verifiedOrders, orderID)
	return g.checkoutValid
}

func (g *stubGateway) VerifyWebhookSignature(body, signature string) bool {
	return g.webhookValid
}

func setupRouter(gateway *stubGateway, authedUser string) *gin.Engine {
	r := gin.New()
	controller := NewOrderController(nil, gateway)

	if authedUser != "" {
		r.Use(func(c *gin.Context) {
			c.Set("sub", authedUser)
			c.Next()
		})
	}

	r.POST("/orders", controller.CreateOrder)
	r.POST("/orders/verify", controller.VerifyPayment)
	r.POST("/payments/webhook", controller.PaymentWebhook)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, _ := http.NewRequest("POST", path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateOrderValidation(t *testing.T) {
	t.Run("RejectsUnauthenticated", func(t *testing.T) {
		r := setupRouter(&stubGateway{}, "")
		w := postJSON(t, r, "/orders", gin.H{"product_id": uuid.NewString()})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("RejectsMissingProductID", func(t *testing.T) {
		r := setupRouter(&stubGateway{}, uuid.NewString())
		w := postJSON(t, r, "/orders", gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("RejectsMalformedProductID", func(t *testing.T) {
		r := setupRouter(&stubGateway{}, uuid.NewString())
		w := postJSON(t, r, "/orders", gin.H{"product_id": "not-a-uuid"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestVerifyPayment(t *testing.T) {
	t.Run("RejectsMissingFields", func(t *testing.T) {
		r := setupRouter(&stubGateway{checkoutValid: true}, uuid.NewString())
		w := postJSON(t, r, "/orders/verify", gin.H{"razorpay_order_id": "order_1"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("RejectsInvalidSignature", func(t *testing.T) {
		gateway := &stubGateway{checkoutValid: false}
		r := setupRouter(gateway, uuid.NewString())

		w := postJSON(t, r, "/orders/verify", gin.H{
			"razorpay_order_id":   "order_1",
			"razorpay_payment_id": "pay_1",
			"razorpay_signature":  "forged",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid signature")
		// The order was checked against the gateway, never trusted blindly.
		assert.Equal(t, []string{"order_1"}, gateway.verifiedOrders)
	})
}

func TestPaymentWebhook(t *testing.T) {
	t.Run("RejectsMissingSignatureHeader", func(t *testing.T) {
		r := setupRouter(&stubGateway{webhookValid: true}, "")
		req, _ := http.NewRequest("POST", "/payments/webhook", bytes.NewBufferString(`{"event":"payment.captured"}`))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("RejectsBadSignature", func(t *testing.T) {
		r := setupRouter(&stubGateway{webhookValid: false}, "")
		req, _ := http.NewRequest("POST", "/payments/webhook", bytes.NewBufferString(`{"event":"payment.captured"}`))
		req.Header.Set("X-Razorpay-Signature", "forged")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("RejectsMalformedBody", func(t *testing.T) {
		r := setupRouter(&stubGateway{webhookValid: true}, "")
		req, _ := http.NewRequest("POST", "/payments/webhook", bytes.NewBufferString(`{not json`))
		req.Header.Set("X-Razorpay-Signature", "sig")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
