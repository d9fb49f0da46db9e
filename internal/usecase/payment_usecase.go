package usecase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"app/internal/payment"
	repo "app/internal/repository"

	"go.uber.org/zap"
)

// チェックアウト前にゲートウェイ側の注文を作る
type PaymentUsecase struct {
	settings   repo.CompanyDetailsRepository
	newGateway payment.GatewayFactory
	log        *zap.SugaredLogger
}

func NewPaymentUsecase(settings repo.CompanyDetailsRepository, newGateway payment.GatewayFactory, log *zap.SugaredLogger) *PaymentUsecase {
	return &PaymentUsecase{settings: settings, newGateway: newGateway, log: log}
}

type CreateGatewayOrderInput struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type CreateGatewayOrderOutput struct {
	OrderID string `json:"order_id"`
	KeyID   string `json:"key_id"`
}

func (u *PaymentUsecase) CreateGatewayOrder(ctx context.Context, in CreateGatewayOrderInput) (CreateGatewayOrderOutput, error) {
	if in.Amount <= 0 {
		return CreateGatewayOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid amount")
	}
	currency := in.Currency
	if currency == "" {
		currency = "INR"
	}

	details, err := u.settings.Get(ctx)
	if err != nil {
		return CreateGatewayOrderOutput{}, ErrInternalDB
	}
	if !details.PaymentGateway.IsActive || !details.PaymentGateway.Configured() {
		return CreateGatewayOrderOutput{}, ErrGatewayNotConfigured
	}

	gw := u.newGateway(details.PaymentGateway)
	receipt := fmt.Sprintf("rcpt_%d", time.Now().UnixMilli())

	order, err := gw.CreateOrder(ctx, in.Amount, currency, receipt)
	if err != nil {
		u.log.Errorw("gateway order create failed", "amount", in.Amount, "error", err)
		return CreateGatewayOrderOutput{}, NewHTTPError(http.StatusBadGateway, "gateway error")
	}

	return CreateGatewayOrderOutput{OrderID: order.OrderID, KeyID: order.KeyID}, nil
}
