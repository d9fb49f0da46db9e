package usecase

import (
	"context"
	"errors"
	"net/http"

	repo "app/internal/repository"
)

// 管理画面の注文一覧・詳細。ステータス変更はOrderWorkflowUsecase側
type AdminOrderUsecase struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
}

func NewAdminOrderUsecase(orders repo.OrderRepository, orderItems repo.OrderItemRepository) *AdminOrderUsecase {
	return &AdminOrderUsecase{orders: orders, orderItems: orderItems}
}

type AdminOrderListOutput struct {
	Orders []OrderOutput `json:"orders"`
	Total  int64         `json:"total"`
}

func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) (AdminOrderListOutput, error) {
	// page/limitの最低限チェック
	if f.Page < 1 {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	orders, total, err := u.orders.ListAdmin(ctx, f)
	if err != nil {
		return AdminOrderListOutput{}, ErrInternalDB
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		items, err := u.orderItems.ListByOrderID(ctx, o.ID)
		if err != nil {
			return AdminOrderListOutput{}, ErrInternalDB
		}
		outs = append(outs, toOrderOutput(o, items))
	}

	return AdminOrderListOutput{Orders: outs, Total: total}, nil
}

func (u *AdminOrderUsecase) GetDetail(ctx context.Context, orderID string) (OrderOutput, error) {
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
