package payment

import (
	"context"

	"app/internal/domain/model"
)

// ゲートウェイ側の支払いステータス
type PaymentState string

const (
	PaymentStateCreated    PaymentState = "created"
	PaymentStateAuthorized PaymentState = "authorized"
	PaymentStateCaptured   PaymentState = "captured"
	PaymentStateFailed     PaymentState = "failed"
)

// ゲートウェイから取得した支払いの現在状態
type Payment struct {
	Status   PaymentState
	Captured bool
	//確定済み金額（最小通貨単位）
	CapturedAmount int64
}

type RefundResult struct {
	RefundID string
}

type GatewayOrder struct {
	OrderID string
	KeyID   string
}

// 決済ゲートウェイとの約束。金額はルピー単位で渡し、最小通貨単位への変換は実装側が持つ
type Gateway interface {
	FetchPayment(ctx context.Context, paymentID string) (Payment, error)
	CapturePayment(ctx context.Context, paymentID string, amount int64, currency string) error
	RefundPayment(ctx context.Context, paymentID string, amount int64, notes map[string]string) (RefundResult, error)

	//チェックアウト前にゲートウェイ側の注文を作る
	CreateOrder(ctx context.Context, amount int64, currency string, receipt string) (GatewayOrder, error)

	//チェックアウト時の署名検証
	VerifySignature(gatewayOrderID string, paymentID string, signature string) bool
}

// 設定（DBに保存されたキー）からゲートウェイを組み立てる。
// キーは管理画面でいつでも差し替えられるため、呼び出しごとに作り直す
type GatewayFactory func(cfg model.PaymentGatewayConfig) Gateway
