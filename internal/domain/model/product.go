package model

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Price       int64  `gorm:"not null" json:"price"`
	//セール価格（0なら未設定）
	OfferPrice int64 `gorm:"not null;default:0" json:"offer_price,omitempty"`
	//カンマ区切りの画像URL
	Images   string `gorm:"type:text" json:"images"`
	Category string `gorm:"type:varchar(100);not null;index" json:"category"`
	//GST率（%）。明細の税額スナップショット計算に使う
	GstPercentage int64          `gorm:"not null;default:0" json:"gst_percentage"`
	Stock         int64          `gorm:"not null;default:0" json:"stock"`
	IsActive      bool           `gorm:"not null;default:true" json:"is_active"`
	ShowInSlider  bool           `gorm:"not null;default:false" json:"show_in_slider"`
	CreatedAt     time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
