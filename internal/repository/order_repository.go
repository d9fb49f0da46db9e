package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 条件付き更新の前提条件が成立しなかった（他の操作と競合した）
var ErrConditionFailed = errors.New("condition failed")

// 条件付き更新の述語。ゼロ値のフィールドは条件に含めない。
// 述語はUPDATE文のWHERE句として評価される（読み取り後の別書き込みにしない）
type OrderPredicate struct {
	//statusがこの中に含まれること
	StatusIn []model.OrderStatus
	//キャンセル申請ステータスが一致すること
	CancellationStatusIs *model.CancellationStatus
	//pendingのキャンセル申請が存在しないこと
	NoPendingCancellation bool
}

// 条件付き更新で書き込むフィールド。nilのフィールドは触らない。
type OrderPatch struct {
	Status        *model.OrderStatus
	PaymentStatus *model.PaymentStatus

	ConfirmedDate *time.Time
	PackedDate    *time.Time
	ShippedDate   *time.Time
	DeliveredDate *time.Time

	CancellationReason      *string
	CancellationStatus      *model.CancellationStatus
	CancellationRequestedAt *time.Time
	CancellationProcessedAt *time.Time
}

type AdminOrderListFilter struct {
	Page          int
	Limit         int
	Status        string
	PaymentStatus string
	From          *time.Time
	To            *time.Time
	//pendingのキャンセル申請がある注文だけに絞る
	CancellationPendingOnly bool
}

type OrderRepository interface {
	FindByOrderID(ctx context.Context, orderID string) (model.Order, error)
	FindByID(ctx context.Context, id int64) (model.Order, error)
	Create(ctx context.Context, order model.Order) (int64, error)

	//述語が成立するときだけpatchを適用し、更新後の注文を返す。
	//注文が無ければErrNotFound、述語が不成立ならErrConditionFailed。
	UpdateIf(ctx context.Context, orderID string, pred OrderPredicate, patch OrderPatch) (model.Order, error)

	ListByCustomerUserID(ctx context.Context, userID string) ([]model.Order, error)
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)

	//ダッシュボード用の集計
	CountAll(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status model.OrderStatus) (int64, error)
	SumAmountByStatus(ctx context.Context, status model.OrderStatus) (int64, error)
	SumAmountExcludingStatus(ctx context.Context, status model.OrderStatus) (int64, error)
	ListSinceExcludingStatus(ctx context.Context, from time.Time, exclude model.OrderStatus) ([]model.Order, error)
}
