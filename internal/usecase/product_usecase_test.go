package usecase

import (
	"context"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestProductList_InvalidPage(t *testing.T) {
	uc := NewProductUsecase(new(productRepoMock), new(auditRepoMock))

	_, err := uc.List(context.Background(), ListProductsInput{Page: 0, Limit: 20})
	assert.Error(t, err)
}

func TestProductList_InvalidLimit(t *testing.T) {
	uc := NewProductUsecase(new(productRepoMock), new(auditRepoMock))

	_, err := uc.List(context.Background(), ListProductsInput{Page: 1, Limit: 101})
	assert.Error(t, err)
}

func TestProductList_Success(t *testing.T) {
	products := new(productRepoMock)
	uc := NewProductUsecase(products, new(auditRepoMock))

	q := repo.ProductListQuery{Page: 1, Limit: 20, Q: "tea", Category: "beverages"}
	products.On("List", mock.Anything, q).Return([]model.Product{{ID: 1, Name: "Tea"}}, int64(1), nil)

	out, err := uc.List(context.Background(), ListProductsInput{Page: 1, Limit: 20, Q: "tea", Category: "beverages"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)
	assert.Len(t, out.Products, 1)
}

func TestProductCreate_Validation(t *testing.T) {
	uc := NewProductUsecase(new(productRepoMock), new(auditRepoMock))

	cases := []SaveProductInput{
		{Name: "", Category: "c", Price: 100},
		{Name: "A", Category: "", Price: 100},
		{Name: "A", Category: "c", Price: 0},
		{Name: "A", Category: "c", Price: 100, GstPercentage: 120},
		{Name: "A", Category: "c", Price: 100, Stock: -1},
	}
	for _, in := range cases {
		_, err := uc.Create(context.Background(), "admin-1", in)
		assert.Error(t, err)
	}
}

func TestProductCreate_WritesAuditLog(t *testing.T) {
	products := new(productRepoMock)
	audit := new(auditRepoMock)
	uc := NewProductUsecase(products, audit)

	created := model.Product{ID: 7, Name: "Tea", Category: "beverages", Price: 100, IsActive: true}
	products.On("Create", mock.Anything, mock.Anything).Return(created, nil)

	var gotLog model.AuditLog
	audit.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotLog = args.Get(1).(model.AuditLog)
		}).
		Return(nil)

	out, err := uc.Create(context.Background(), "admin-1", SaveProductInput{
		Name: "Tea", Category: "beverages", Price: 100, IsActive: true,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(7), out.ID)

	assert.Equal(t, "admin-1", gotLog.ActorUserID)
	assert.Equal(t, model.AuditActionCreateProduct, gotLog.Action)
	assert.Equal(t, "7", gotLog.ResourceID)
}

func TestProductUpdate_NotFound(t *testing.T) {
	products := new(productRepoMock)
	uc := NewProductUsecase(products, new(auditRepoMock))

	products.On("FindByID", mock.Anything, int64(99)).Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.Update(context.Background(), "admin-1", 99, SaveProductInput{
		Name: "A", Category: "c", Price: 100,
	})
	assert.Error(t, err)
	he, _ := AsHTTPError(err)
	assert.Equal(t, 404, he.Status)
}

func TestProductDelete_Success(t *testing.T) {
	products := new(productRepoMock)
	audit := new(auditRepoMock)
	uc := NewProductUsecase(products, audit)

	products.On("SoftDelete", mock.Anything, int64(3)).Return(nil)
	audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := uc.Delete(context.Background(), "admin-1", 3)
	assert.NoError(t, err)
	products.AssertExpectations(t)
	audit.AssertExpectations(t)
}
