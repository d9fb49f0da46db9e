package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
	auditRepo   repo.AuditLogRepository
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository, auditRepo repo.AuditLogRepository) *ProductUsecase {
	return &ProductUsecase{productRepo: productRepo, auditRepo: auditRepo}
}

type ListProductsInput struct {
	Page       int
	Limit      int
	Q          string
	Category   string
	SliderOnly bool
	//管理画面なら非公開も含める
	IncludeInactive bool
}

type ProductListOutput struct {
	Products []model.Product `json:"products"`
	Total    int64           `json:"total"`
}

func (u *ProductUsecase) List(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}

	items, total, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Page:            in.Page,
		Limit:           in.Limit,
		Q:               in.Q,
		Category:        in.Category,
		SliderOnly:      in.SliderOnly,
		IncludeInactive: in.IncludeInactive,
	})
	if err != nil {
		return ProductListOutput{}, ErrInternalDB
	}

	return ProductListOutput{Products: items, Total: total}, nil
}

func (u *ProductUsecase) Detail(ctx context.Context, id int64) (model.Product, error) {
	if id <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := u.productRepo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, ErrInternalDB
	}
	return p, nil
}

type SaveProductInput struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Price         int64  `json:"price"`
	OfferPrice    int64  `json:"offer_price"`
	Images        string `json:"images"`
	Category      string `json:"category"`
	GstPercentage int64  `json:"gst_percentage"`
	Stock         int64  `json:"stock"`
	IsActive      bool   `json:"is_active"`
	ShowInSlider  bool   `json:"show_in_slider"`
}

func (in SaveProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		return NewHTTPError(http.StatusBadRequest, "category is required")
	}
	if in.Price <= 0 {
		return NewHTTPError(http.StatusBadRequest, "price must be > 0")
	}
	if in.OfferPrice < 0 || in.Stock < 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid value")
	}
	if in.GstPercentage < 0 || in.GstPercentage > 100 {
		return NewHTTPError(http.StatusBadRequest, "invalid gst_percentage")
	}
	return nil
}

func (u *ProductUsecase) Create(ctx context.Context, actorAdminUserID string, in SaveProductInput) (model.Product, error) {
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}

	created, err := u.productRepo.Create(ctx, model.Product{
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		Price:         in.Price,
		OfferPrice:    in.OfferPrice,
		Images:        in.Images,
		Category:      strings.TrimSpace(in.Category),
		GstPercentage: in.GstPercentage,
		Stock:         in.Stock,
		IsActive:      in.IsActive,
		ShowInSlider:  in.ShowInSlider,
	})
	if err != nil {
		return model.Product{}, ErrInternalDB
	}

	u.auditProduct(ctx, actorAdminUserID, model.AuditActionCreateProduct, created.ID, "", created)
	return created, nil
}

func (u *ProductUsecase) Update(ctx context.Context, actorAdminUserID string, id int64, in SaveProductInput) (model.Product, error) {
	if id <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}

	before, err := u.productRepo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, ErrInternalDB
	}

	p := before
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Price = in.Price
	p.OfferPrice = in.OfferPrice
	p.Images = in.Images
	p.Category = strings.TrimSpace(in.Category)
	p.GstPercentage = in.GstPercentage
	p.Stock = in.Stock
	p.IsActive = in.IsActive
	p.ShowInSlider = in.ShowInSlider

	if err := u.productRepo.Update(ctx, p); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return model.Product{}, ErrInternalDB
	}

	beforeJSON, _ := json.Marshal(before)
	u.auditProduct(ctx, actorAdminUserID, model.AuditActionUpdateProduct, id, string(beforeJSON), p)
	return p, nil
}

func (u *ProductUsecase) Delete(ctx context.Context, actorAdminUserID string, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := u.productRepo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return ErrInternalDB
	}

	u.auditProduct(ctx, actorAdminUserID, model.AuditActionDeleteProduct, id, "", nil)
	return nil
}

func (u *ProductUsecase) auditProduct(ctx context.Context, actorUserID string, action model.AuditAction, productID int64, beforeJSON string, after interface{}) {
	if actorUserID == "" {
		return
	}
	afterJSON := ""
	if after != nil {
		b, _ := json.Marshal(after)
		afterJSON = string(b)
	}
	//監査ログの失敗で操作自体は落とさない
	_ = u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       action,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   strconv.FormatInt(productID, 10),
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
		CreatedAt:    time.Now(),
	})
}
