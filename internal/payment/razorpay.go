package payment

import (
	"context"
	"fmt"

	"app/internal/domain/model"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

type RazorpayGateway struct {
	client *razorpay.Client
	keyID  string
	secret string
}

func NewRazorpayGateway(cfg model.PaymentGatewayConfig) Gateway {
	return &RazorpayGateway{
		client: razorpay.NewClient(cfg.KeyID, cfg.KeySecret),
		keyID:  cfg.KeyID,
		secret: cfg.KeySecret,
	}
}

// ルピー→パイサ（最小通貨単位）
func toPaise(amount int64) int {
	return int(amount * 100)
}

func (g *RazorpayGateway) FetchPayment(ctx context.Context, paymentID string) (Payment, error) {
	body, err := g.client.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		return Payment{}, fmt.Errorf("fetch payment %s: %w", paymentID, err)
	}

	p := Payment{}
	if s, ok := body["status"].(string); ok {
		p.Status = PaymentState(s)
	}
	if c, ok := body["captured"].(bool); ok {
		p.Captured = c
	}
	if a, ok := body["amount"].(float64); ok && p.Captured {
		p.CapturedAmount = int64(a)
	}
	return p, nil
}

func (g *RazorpayGateway) CapturePayment(ctx context.Context, paymentID string, amount int64, currency string) error {
	data := map[string]interface{}{
		"currency": currency,
	}
	if _, err := g.client.Payment.Capture(paymentID, toPaise(amount), data, nil); err != nil {
		return fmt.Errorf("capture payment %s: %w", paymentID, err)
	}
	return nil
}

func (g *RazorpayGateway) RefundPayment(ctx context.Context, paymentID string, amount int64, notes map[string]string) (RefundResult, error) {
	data := map[string]interface{}{}
	if len(notes) > 0 {
		n := make(map[string]interface{}, len(notes))
		for k, v := range notes {
			n[k] = v
		}
		data["notes"] = n
	}

	body, err := g.client.Payment.Refund(paymentID, toPaise(amount), data, nil)
	if err != nil {
		return RefundResult{}, fmt.Errorf("refund payment %s: %w", paymentID, err)
	}

	res := RefundResult{}
	if id, ok := body["id"].(string); ok {
		res.RefundID = id
	}
	return res, nil
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount int64, currency string, receipt string) (GatewayOrder, error) {
	data := map[string]interface{}{
		"amount":   toPaise(amount),
		"currency": currency,
		"receipt":  receipt,
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return GatewayOrder{}, fmt.Errorf("create gateway order: %w", err)
	}

	id, _ := body["id"].(string)
	return GatewayOrder{OrderID: id, KeyID: g.keyID}, nil
}

func (g *RazorpayGateway) VerifySignature(gatewayOrderID string, paymentID string, signature string) bool {
	params := map[string]interface{}{
		"razorpay_order_id":   gatewayOrderID,
		"razorpay_payment_id": paymentID,
	}
	return utils.VerifyPaymentSignature(params, signature, g.secret)
}
