package repository

import (
	"context"

	"app/internal/domain/model"
)

// 店舗設定は1レコードだけ。無ければデフォルトを作って返す
type CompanyDetailsRepository interface {
	Get(ctx context.Context) (model.CompanyDetails, error)
	Save(ctx context.Context, details model.CompanyDetails) (model.CompanyDetails, error)
}
