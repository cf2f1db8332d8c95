package clients

import (
	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

// RazorpayClientWrapper provides an interface for Razorpay operations.
// This interface allows for easier testing by mocking Razorpay interactions.
type RazorpayClientWrapper interface {
	CreateOrder(data map[string]interface{}) (map[string]interface{}, error)
	VerifyCheckoutSignature(orderID, paymentID, signature string) bool
	VerifyWebhookSignature(body, signature string) bool
}

// RazorpayClient implements RazorpayClientWrapper using the actual Razorpay SDK.
type RazorpayClient struct {
	Client        *razorpay.Client
	keySecret     string
	webhookSecret string
}

// NewRazorpayClient creates a new RazorpayClient with the given API key pair
// and webhook secret.
func NewRazorpayClient(keyID, keySecret, webhookSecret string) *RazorpayClient {
	return &RazorpayClient{
		Client:        razorpay.NewClient(keyID, keySecret),
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
	}
}

// CreateOrder creates a new order in Razorpay. It takes a map of order data
// (amount, currency, receipt) and returns the created order details.
func (r *RazorpayClient) CreateOrder(data map[string]interface{}) (map[string]interface{}, error) {
	return r.Client.Order.Create(data, nil)
}

// VerifyCheckoutSignature verifies the signature returned by the hosted
// checkout after a payment (HMAC over "order_id|payment_id").
func (r *RazorpayClient) VerifyCheckoutSignature(orderID, paymentID, signature string) bool {
	params := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}
	return utils.VerifyPaymentSignature(params, signature, r.keySecret)
}

// VerifyWebhookSignature verifies the authenticity of a Razorpay webhook
// delivery against the configured webhook secret.
func (r *RazorpayClient) VerifyWebhookSignature(body, signature string) bool {
	return utils.VerifyWebhookSignature(body, signature, r.webhookSecret)
}
