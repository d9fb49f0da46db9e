package model

import "time"

// 決済ゲートウェイ設定（管理画面から編集する）
type PaymentGatewayConfig struct {
	Provider  string `gorm:"column:gateway_provider;type:varchar(50);not null;default:'Razorpay'" json:"provider"`
	IsActive  bool   `gorm:"column:gateway_is_active;not null;default:false" json:"is_active"`
	KeyID     string `gorm:"column:gateway_key_id;type:varchar(128)" json:"key_id"`
	KeySecret string `gorm:"column:gateway_key_secret;type:varchar(128)" json:"-"`
}

// 設定済みかどうか（キーが両方入っているか）
func (g PaymentGatewayConfig) Configured() bool {
	return g.KeyID != "" && g.KeySecret != ""
}

// 会社情報＋店舗設定。1レコードだけ持つ
type CompanyDetails struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(255);not null;default:'My Shop'" json:"name"`
	LogoURL     string `gorm:"type:text" json:"logo_url,omitempty"`
	Mobile      string `gorm:"type:varchar(20)" json:"mobile"`
	Email       string `gorm:"type:varchar(255)" json:"email"`
	Address     string `gorm:"type:text" json:"address"`
	GstNumber   string `gorm:"type:varchar(50)" json:"gst_number,omitempty"`
	FssaiNumber string `gorm:"type:varchar(50)" json:"fssai_number,omitempty"`

	PaymentGateway PaymentGatewayConfig `gorm:"embedded" json:"payment_gateway"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
