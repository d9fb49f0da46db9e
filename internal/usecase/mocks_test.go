package usecase

import (
	"context"
	"time"

	"app/internal/domain/model"
	"app/internal/payment"
	repo "app/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type orderRepoMock struct{ mock.Mock }

func (m *orderRepoMock) FindByOrderID(ctx context.Context, orderID string) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *orderRepoMock) FindByID(ctx context.Context, id int64) (model.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *orderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *orderRepoMock) UpdateIf(ctx context.Context, orderID string, pred repo.OrderPredicate, patch repo.OrderPatch) (model.Order, error) {
	args := m.Called(ctx, orderID, pred, patch)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *orderRepoMock) ListByCustomerUserID(ctx context.Context, userID string) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	os, _ := args.Get(0).([]model.Order)
	return os, args.Error(1)
}

func (m *orderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	os, _ := args.Get(0).([]model.Order)
	return os, args.Get(1).(int64), args.Error(2)
}

func (m *orderRepoMock) CountAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *orderRepoMock) CountByStatus(ctx context.Context, status model.OrderStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *orderRepoMock) SumAmountByStatus(ctx context.Context, status model.OrderStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *orderRepoMock) SumAmountExcludingStatus(ctx context.Context, status model.OrderStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *orderRepoMock) ListSinceExcludingStatus(ctx context.Context, from time.Time, exclude model.OrderStatus) ([]model.Order, error) {
	args := m.Called(ctx, from, exclude)
	os, _ := args.Get(0).([]model.Order)
	return os, args.Error(1)
}

type orderItemRepoMock struct{ mock.Mock }

func (m *orderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *orderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type productRepoMock struct{ mock.Mock }

func (m *productRepoMock) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *productRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *productRepoMock) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	ps, _ := args.Get(0).([]model.Product)
	return ps, args.Error(1)
}

func (m *productRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *productRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *productRepoMock) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *productRepoMock) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *productRepoMock) CountByCategory(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).(map[string]int64)
	return counts, args.Error(1)
}

func (m *productRepoMock) CountAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type settingsRepoMock struct{ mock.Mock }

func (m *settingsRepoMock) Get(ctx context.Context) (model.CompanyDetails, error) {
	args := m.Called(ctx)
	d, _ := args.Get(0).(model.CompanyDetails)
	return d, args.Error(1)
}

func (m *settingsRepoMock) Save(ctx context.Context, details model.CompanyDetails) (model.CompanyDetails, error) {
	args := m.Called(ctx, details)
	d, _ := args.Get(0).(model.CompanyDetails)
	return d, args.Error(1)
}

type auditRepoMock struct{ mock.Mock }

func (m *auditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *auditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

type userRepoMock struct{ mock.Mock }

func (m *userRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *userRepoMock) FindByUserID(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type gatewayMock struct{ mock.Mock }

func (m *gatewayMock) FetchPayment(ctx context.Context, paymentID string) (payment.Payment, error) {
	args := m.Called(ctx, paymentID)
	p, _ := args.Get(0).(payment.Payment)
	return p, args.Error(1)
}

func (m *gatewayMock) CapturePayment(ctx context.Context, paymentID string, amount int64, currency string) error {
	args := m.Called(ctx, paymentID, amount, currency)
	return args.Error(0)
}

func (m *gatewayMock) RefundPayment(ctx context.Context, paymentID string, amount int64, notes map[string]string) (payment.RefundResult, error) {
	args := m.Called(ctx, paymentID, amount, notes)
	r, _ := args.Get(0).(payment.RefundResult)
	return r, args.Error(1)
}

func (m *gatewayMock) CreateOrder(ctx context.Context, amount int64, currency string, receipt string) (payment.GatewayOrder, error) {
	args := m.Called(ctx, amount, currency, receipt)
	o, _ := args.Get(0).(payment.GatewayOrder)
	return o, args.Error(1)
}

func (m *gatewayMock) VerifySignature(gatewayOrderID string, paymentID string, signature string) bool {
	args := m.Called(gatewayOrderID, paymentID, signature)
	return args.Bool(0)
}

// 固定のモックを返すファクトリ
func fixedGateway(gw payment.Gateway) payment.GatewayFactory {
	return func(cfg model.PaymentGatewayConfig) payment.Gateway {
		return gw
	}
}

// txを開かずにそのまま実行するTransactionManager
type txManagerFake struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	products   repo.ProductRepository
}

func (t *txManagerFake) Orders() repo.OrderRepository         { return t.orders }
func (t *txManagerFake) OrderItems() repo.OrderItemRepository { return t.orderItems }
func (t *txManagerFake) Products() repo.ProductRepository     { return t.products }

func (t *txManagerFake) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(t)
}

// ゲートウェイ設定済みの店舗設定
func configuredSettings() model.CompanyDetails {
	return model.CompanyDetails{
		ID:   1,
		Name: "My Shop",
		PaymentGateway: model.PaymentGatewayConfig{
			Provider:  "Razorpay",
			IsActive:  true,
			KeyID:     "rzp_test_key",
			KeySecret: "secret",
		},
	}
}
