package repository

import (
	"context"

	"app/internal/domain/model"
)

// 一覧検索
type ProductListQuery struct {
	Page     int
	Limit    int
	Q        string
	Category string
	//trueなら非公開商品も含める（管理画面用）
	IncludeInactive bool
	SliderOnly      bool
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id int64) error

	//在庫が足りるときだけ減算（チェックアウト時の競合対策）
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)

	//カテゴリごとの商品数（ダッシュボード用）
	CountByCategory(ctx context.Context) (map[string]int64, error)
	CountAll(ctx context.Context) (int64, error)
}
