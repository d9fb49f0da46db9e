package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 会社情報と決済ゲートウェイ設定
type SettingsUsecase struct {
	settings  repo.CompanyDetailsRepository
	auditRepo repo.AuditLogRepository
}

func NewSettingsUsecase(settings repo.CompanyDetailsRepository, auditRepo repo.AuditLogRepository) *SettingsUsecase {
	return &SettingsUsecase{settings: settings, auditRepo: auditRepo}
}

// 公開用（keySecretは返さない。json:"-"で落ちる）
func (u *SettingsUsecase) Get(ctx context.Context) (model.CompanyDetails, error) {
	d, err := u.settings.Get(ctx)
	if err != nil {
		return model.CompanyDetails{}, ErrInternalDB
	}
	return d, nil
}

type UpdateCompanyInput struct {
	Name        string `json:"name"`
	LogoURL     string `json:"logo_url"`
	Mobile      string `json:"mobile"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	GstNumber   string `json:"gst_number"`
	FssaiNumber string `json:"fssai_number"`
}

func (u *SettingsUsecase) UpdateCompany(ctx context.Context, actorAdminUserID string, in UpdateCompanyInput) (model.CompanyDetails, error) {
	if strings.TrimSpace(in.Name) == "" {
		return model.CompanyDetails{}, NewHTTPError(http.StatusBadRequest, "name is required")
	}

	d, err := u.settings.Get(ctx)
	if err != nil {
		return model.CompanyDetails{}, ErrInternalDB
	}

	d.Name = strings.TrimSpace(in.Name)
	d.LogoURL = in.LogoURL
	d.Mobile = in.Mobile
	d.Email = in.Email
	d.Address = in.Address
	d.GstNumber = in.GstNumber
	d.FssaiNumber = in.FssaiNumber

	saved, err := u.settings.Save(ctx, d)
	if err != nil {
		return model.CompanyDetails{}, ErrInternalDB
	}

	u.auditSettings(ctx, actorAdminUserID, saved)
	return saved, nil
}

type UpdatePaymentGatewayInput struct {
	Provider string `json:"provider"`
	IsActive bool   `json:"is_active"`
	KeyID    string `json:"key_id"`
	//空なら既存のシークレットを維持する
	KeySecret string `json:"key_secret"`
}

func (u *SettingsUsecase) UpdatePaymentGateway(ctx context.Context, actorAdminUserID string, in UpdatePaymentGatewayInput) (model.CompanyDetails, error) {
	d, err := u.settings.Get(ctx)
	if err != nil {
		return model.CompanyDetails{}, ErrInternalDB
	}

	if in.Provider != "" {
		d.PaymentGateway.Provider = in.Provider
	}
	d.PaymentGateway.IsActive = in.IsActive
	d.PaymentGateway.KeyID = strings.TrimSpace(in.KeyID)
	if in.KeySecret != "" {
		d.PaymentGateway.KeySecret = in.KeySecret
	}

	saved, err := u.settings.Save(ctx, d)
	if err != nil {
		return model.CompanyDetails{}, ErrInternalDB
	}

	u.auditSettings(ctx, actorAdminUserID, saved)
	return saved, nil
}

func (u *SettingsUsecase) auditSettings(ctx context.Context, actorUserID string, after model.CompanyDetails) {
	if actorUserID == "" {
		return
	}
	//シークレットは監査ログにも残さない
	b, _ := json.Marshal(map[string]interface{}{
		"name":             after.Name,
		"gateway_provider": after.PaymentGateway.Provider,
		"gateway_active":   after.PaymentGateway.IsActive,
		"gateway_key_id":   after.PaymentGateway.KeyID,
	})
	_ = u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       model.AuditActionUpdateSettings,
		ResourceType: model.AuditResourceSettings,
		ResourceID:   "company",
		AfterJSON:    string(b),
		CreatedAt:    time.Now(),
	})
}
