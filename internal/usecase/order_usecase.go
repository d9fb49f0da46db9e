package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/payment"
	repo "app/internal/repository"

	"go.uber.org/zap"
)

type OrderUsecase struct {
	tx         repo.TransactionManager
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	settings   repo.CompanyDetailsRepository
	newGateway payment.GatewayFactory
	log        *zap.SugaredLogger
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	orderItems repo.OrderItemRepository,
	settings repo.CompanyDetailsRepository,
	newGateway payment.GatewayFactory,
	log *zap.SugaredLogger,
) *OrderUsecase {
	return &OrderUsecase{
		tx:         tx,
		orders:     orders,
		orderItems: orderItems,
		settings:   settings,
		newGateway: newGateway,
		log:        log,
	}
}

type PlaceOrderItemInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type PlaceOrderInput struct {
	Customer              model.OrderCustomer
	Items                 []PlaceOrderItemInput
	PreferredDeliveryDate *time.Time

	//オンライン決済のときだけ入る（無ければ代引き扱いでpaymentStatus=pending）
	PaymentID        string
	GatewayOrderID   string
	GatewaySignature string
}

type PlaceOrderOutput struct {
	OrderID string `json:"order_id"`
}

type OrderItemOutput struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	GstAmount int64  `json:"gst_amount"`
	Quantity  int64  `json:"quantity"`
}

type OrderOutput struct {
	OrderID             string                    `json:"order_id"`
	Customer            model.OrderCustomer       `json:"customer"`
	Status              string                    `json:"status"`
	PaymentStatus       string                    `json:"payment_status"`
	TotalAmount         int64                     `json:"total_amount"`
	GstAmount           int64                     `json:"gst_amount"`
	Dates               model.OrderDates          `json:"dates"`
	CancellationRequest model.CancellationRequest `json:"cancellation_request,omitempty"`
	CreatedAt           time.Time                 `json:"created_at"`
	Items               []OrderItemOutput         `json:"items"`
}

// 公開注文IDの採番（ORD-<ミリ秒>-<乱数3桁>）
func newOrderID() string {
	return fmt.Sprintf("ORD-%d-%d", time.Now().UnixMilli(), rand.Intn(1000))
}

// 税込み価格からGST分を逆算する（price*qtyに対する税額）
func gstFromInclusive(lineTotal int64, gstPercentage int64) int64 {
	if gstPercentage <= 0 {
		return 0
	}
	base := lineTotal * 100 / (100 + gstPercentage)
	return lineTotal - base
}

// PlaceOrderはチェックアウトを確定する。
// オンライン決済が付いている場合は署名検証→captureをしてから注文を作る。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, in PlaceOrderInput) (PlaceOrderOutput, error) {
	if strings.TrimSpace(in.Customer.Name) == "" ||
		strings.TrimSpace(in.Customer.Mobile) == "" ||
		strings.TrimSpace(in.Customer.Address) == "" {
		return PlaceOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order data")
	}
	if len(in.Items) == 0 {
		return PlaceOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order data")
	}
	for _, it := range in.Items {
		if it.ProductID <= 0 || it.Quantity <= 0 {
			return PlaceOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order data")
		}
	}

	var out PlaceOrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//商品を取り直して価格・税額をスナップショットする（クライアント申告の価格は信用しない）
		ids := make([]int64, 0, len(in.Items))
		for _, it := range in.Items {
			ids = append(ids, it.ProductID)
		}
		products, err := r.Products().FindByIDs(ctx, ids)
		if err != nil {
			return ErrInternalDB
		}
		byID := make(map[int64]model.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		now := time.Now()
		orderItems := make([]model.OrderItem, 0, len(in.Items))
		var total int64 = 0
		var totalGst int64 = 0

		for _, it := range in.Items {
			p, ok := byID[it.ProductID]
			if !ok || !p.IsActive {
				return NewHTTPError(http.StatusBadRequest, "invalid order data")
			}

			//在庫減算（足りないなら false）
			enough, err := r.Products().DecreaseStockIfEnough(ctx, p.ID, it.Quantity)
			if err != nil {
				return ErrInternalDB
			}
			if !enough {
				return NewHTTPError(http.StatusBadRequest, "out of stock")
			}

			price := p.Price
			if p.OfferPrice > 0 && p.OfferPrice < p.Price {
				price = p.OfferPrice
			}
			lineTotal := price * it.Quantity
			gst := gstFromInclusive(lineTotal, p.GstPercentage)

			orderItems = append(orderItems, model.OrderItem{
				ProductID:           p.ID,
				ProductNameSnapshot: p.Name,
				UnitPriceSnapshot:   price,
				GstAmountSnapshot:   gst,
				Quantity:            it.Quantity,
				CreatedAt:           now,
			})
			total += lineTotal
			totalGst += gst
		}

		//オンライン決済なら署名検証とcaptureを先に済ませる
		paymentStatus := model.PaymentStatusPending
		if in.PaymentID != "" {
			if err := u.verifyAndCapture(ctx, in, total); err != nil {
				return err
			}
			paymentStatus = model.PaymentStatusSuccess
		}

		order := model.Order{
			OrderID:          newOrderID(),
			Customer:         in.Customer,
			TotalAmount:      total,
			GstAmount:        totalGst,
			Status:           model.OrderStatusPlaced,
			PaymentStatus:    paymentStatus,
			PaymentID:        in.PaymentID,
			GatewayOrderID:   in.GatewayOrderID,
			GatewaySignature: in.GatewaySignature,
			Dates: model.OrderDates{
				BookingDate:           now,
				PreferredDeliveryDate: in.PreferredDeliveryDate,
			},
			CreatedAt: now,
			UpdatedAt: now,
		}

		id, err := r.Orders().Create(ctx, order)
		if err != nil {
			return ErrInternalDB
		}
		if err := r.OrderItems().CreateBulk(ctx, id, orderItems); err != nil {
			return ErrInternalDB
		}

		out = PlaceOrderOutput{OrderID: order.OrderID}
		return nil
	})

	if err != nil {
		return PlaceOrderOutput{}, err
	}

	u.log.Infow("order placed", "order_id", out.OrderID, "items", len(in.Items))
	return out, nil
}

// 署名を検証し、必要ならcaptureする。すでにcapture済みのエラーは成功扱い
func (u *OrderUsecase) verifyAndCapture(ctx context.Context, in PlaceOrderInput, total int64) error {
	details, err := u.settings.Get(ctx)
	if err != nil {
		return ErrInternalDB
	}
	if !details.PaymentGateway.Configured() {
		//キー未設定なら検証のしようがないのでそのまま通す（原本の挙動）
		return nil
	}
	gw := u.newGateway(details.PaymentGateway)

	if !gw.VerifySignature(in.GatewayOrderID, in.PaymentID, in.GatewaySignature) {
		return NewHTTPError(http.StatusBadRequest, "payment verification failed")
	}

	if err := gw.CapturePayment(ctx, in.PaymentID, total, "INR"); err != nil {
		if strings.Contains(err.Error(), "already been captured") {
			u.log.Infow("payment was already captured", "payment_id", in.PaymentID)
			return nil
		}
		u.log.Errorw("payment capture failed at checkout", "payment_id", in.PaymentID, "error", err)
		return NewHTTPError(http.StatusBadRequest, "payment capture failed")
	}
	return nil
}

func (u *OrderUsecase) ListOrdersByUser(ctx context.Context, userID string) ([]OrderOutput, error) {
	if strings.TrimSpace(userID) == "" {
		return []OrderOutput{}, nil
	}

	orders, err := u.orders.ListByCustomerUserID(ctx, userID)
	if err != nil {
		return []OrderOutput{}, ErrInternalDB
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		items, err := u.orderItems.ListByOrderID(ctx, o.ID)
		if err != nil {
			return []OrderOutput{}, ErrInternalDB
		}
		outs = append(outs, toOrderOutput(o, items))
	}
	return outs, nil
}

func (u *OrderUsecase) GetOrderDetail(ctx context.Context, orderID string) (OrderOutput, error) {
	o, err := u.orders.FindByOrderID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, ErrOrderNotFound
	}
	if err != nil {
		return OrderOutput{}, ErrInternalDB
	}

	items, err := u.orderItems.ListByOrderID(ctx, o.ID)
	if err != nil {
		return OrderOutput{}, ErrInternalDB
	}

	return toOrderOutput(o, items), nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			Price:     it.UnitPriceSnapshot,
			GstAmount: it.GstAmountSnapshot,
			Quantity:  it.Quantity,
		})
	}

	return OrderOutput{
		OrderID:             o.OrderID,
		Customer:            o.Customer,
		Status:              string(o.Status),
		PaymentStatus:       string(o.PaymentStatus),
		TotalAmount:         o.TotalAmount,
		GstAmount:           o.GstAmount,
		Dates:               o.Dates,
		CancellationRequest: o.CancellationRequest,
		CreatedAt:           o.CreatedAt,
		Items:               outItems,
	}
}
