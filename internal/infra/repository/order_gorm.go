package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) FindByOrderID(ctx context.Context, orderID string) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) FindByID(ctx context.Context, id int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return 0, err
	}
	return order.ID, nil
}

// 述語をWHERE句に畳み込んだ1回のUPDATEで更新する。
// 先に読んでから書く方式だと同じ注文への同時操作で後勝ちになるため、ここでは分けない。
func (r *OrderGormRepository) UpdateIf(ctx context.Context, orderID string, pred repo.OrderPredicate, patch repo.OrderPatch) (model.Order, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{}).Where("order_id = ?", orderID)

	if len(pred.StatusIn) > 0 {
		q = q.Where("status IN ?", pred.StatusIn)
	}
	if pred.CancellationStatusIs != nil {
		q = q.Where("cancellation_status = ?", *pred.CancellationStatusIs)
	}
	if pred.NoPendingCancellation {
		q = q.Where("(cancellation_status IS NULL OR cancellation_status <> ?)", model.CancellationStatusPending)
	}

	updates := map[string]interface{}{}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if patch.PaymentStatus != nil {
		updates["payment_status"] = *patch.PaymentStatus
	}
	if patch.ConfirmedDate != nil {
		updates["confirmed_date"] = *patch.ConfirmedDate
	}
	if patch.PackedDate != nil {
		updates["packed_date"] = *patch.PackedDate
	}
	if patch.ShippedDate != nil {
		updates["shipped_date"] = *patch.ShippedDate
	}
	if patch.DeliveredDate != nil {
		updates["delivered_date"] = *patch.DeliveredDate
	}
	if patch.CancellationReason != nil {
		updates["cancellation_reason"] = *patch.CancellationReason
	}
	if patch.CancellationStatus != nil {
		updates["cancellation_status"] = *patch.CancellationStatus
	}
	if patch.CancellationRequestedAt != nil {
		updates["cancellation_requested_at"] = *patch.CancellationRequestedAt
	}
	if patch.CancellationProcessedAt != nil {
		updates["cancellation_processed_at"] = *patch.CancellationProcessedAt
	}

	res := q.Updates(updates)
	if res.Error != nil {
		return model.Order{}, res.Error
	}

	if res.RowsAffected == 0 {
		//注文が無いのか、述語が不成立だったのかを読み分ける
		var o model.Order
		err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&o).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Order{}, repo.ErrNotFound
		}
		if err != nil {
			return model.Order{}, err
		}
		return model.Order{}, repo.ErrConditionFailed
	}

	//更新後の注文を返す
	var o model.Order
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&o).Error; err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) ListByCustomerUserID(ctx context.Context, userID string) ([]model.Order, error) {
	var items []model.Order
	err := r.db.WithContext(ctx).
		Where("customer_user_id = ?", userID).
		Order("created_at desc").
		Find(&items).Error
	if err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

func (r *OrderGormRepository) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.Order{})

	//status 絞り込み
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.PaymentStatus != "" {
		q = q.Where("payment_status = ?", f.PaymentStatus)
	}
	if f.CancellationPendingOnly {
		q = q.Where("cancellation_status = ?", model.CancellationStatusPending)
	}

	//期間絞り込み
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	var items []model.Order
	offset := (f.Page - 1) * f.Limit
	if err := q.Order("id desc").Limit(f.Limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.Order{}, 0, err
	}

	return items, total, nil
}

func (r *OrderGormRepository) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).Count(&n).Error
	return n, err
}

func (r *OrderGormRepository) CountByStatus(ctx context.Context, status model.OrderStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("status = ?", status).
		Count(&n).Error
	return n, err
}

func (r *OrderGormRepository) SumAmountByStatus(ctx context.Context, status model.OrderStatus) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("status = ?", status).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *OrderGormRepository) SumAmountExcludingStatus(ctx context.Context, status model.OrderStatus) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("status <> ?", status).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *OrderGormRepository) ListSinceExcludingStatus(ctx context.Context, from time.Time, exclude model.OrderStatus) ([]model.Order, error) {
	var items []model.Order
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND status <> ?", from, exclude).
		Order("created_at asc").
		Find(&items).Error
	if err != nil {
		return []model.Order{}, err
	}
	return items, nil
}
