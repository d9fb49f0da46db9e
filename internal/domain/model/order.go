package model

import "time"

// 配送ステータス（前進のみ。cancelledはplaced/confirmed/packedからだけ到達できる）
type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPacked    OrderStatus = "packed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// 支払いステータス（配送ステータスとは独立した軸）
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusSuccess  PaymentStatus = "success"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
	//キャンセル承認済みだが返金APIが失敗した状態。手動返金が必要
	PaymentStatusRefundPending PaymentStatus = "refund_pending"
)

// キャンセル申請のステータス
type CancellationStatus string

const (
	CancellationStatusPending  CancellationStatus = "pending"
	CancellationStatusApproved CancellationStatus = "approved"
	CancellationStatusRejected CancellationStatus = "rejected"
)

// 注文時の顧客スナップショット（注文後は変更しない）
type OrderCustomer struct {
	UserID  string `gorm:"column:customer_user_id;type:varchar(64);index" json:"user_id,omitempty"`
	Name    string `gorm:"column:customer_name;type:varchar(255);not null" json:"name"`
	Mobile  string `gorm:"column:customer_mobile;type:varchar(20);not null" json:"mobile"`
	Email   string `gorm:"column:customer_email;type:varchar(255)" json:"email,omitempty"`
	Address string `gorm:"column:customer_address;type:text;not null" json:"address"`
}

// ライフサイクルの各時点（各フィールドは一度だけ書く）
type OrderDates struct {
	BookingDate           time.Time  `gorm:"column:booking_date;not null" json:"booking_date"`
	PreferredDeliveryDate *time.Time `gorm:"column:preferred_delivery_date" json:"preferred_delivery_date,omitempty"`
	ConfirmedDate         *time.Time `gorm:"column:confirmed_date" json:"confirmed_date,omitempty"`
	PackedDate            *time.Time `gorm:"column:packed_date" json:"packed_date,omitempty"`
	ShippedDate           *time.Time `gorm:"column:shipped_date" json:"shipped_date,omitempty"`
	DeliveredDate         *time.Time `gorm:"column:delivered_date" json:"delivered_date,omitempty"`
}

// キャンセル申請。一度も申請されていなければStatusは空（サブエンティティ不在扱い）
type CancellationRequest struct {
	Reason      string             `gorm:"column:cancellation_reason;type:text" json:"reason,omitempty"`
	Status      CancellationStatus `gorm:"column:cancellation_status;type:varchar(20)" json:"status,omitempty"`
	RequestedAt *time.Time         `gorm:"column:cancellation_requested_at" json:"requested_at,omitempty"`
	ProcessedAt *time.Time         `gorm:"column:cancellation_processed_at" json:"processed_at,omitempty"`
}

// 申請が一度でも作られたか
func (c CancellationRequest) Exists() bool {
	return c.Status != ""
}

type Order struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"-"`

	//公開用の注文ID（ORD-xxx形式。作成時に採番、不変）
	OrderID string `gorm:"type:varchar(64);not null;uniqueIndex" json:"order_id"`

	Customer OrderCustomer `gorm:"embedded" json:"customer"`

	//合計金額（ルピー単位の整数）
	TotalAmount int64 `gorm:"not null" json:"total_amount"`
	//注文全体のGST額
	GstAmount int64 `gorm:"not null;default:0" json:"gst_amount"`

	Status        OrderStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;index" json:"payment_status"`

	//決済ゲートウェイの支払いID（支払い試行後に入る）
	PaymentID string `gorm:"type:varchar(64)" json:"payment_id,omitempty"`
	//ゲートウェイ側の注文IDと署名（チェックアウト検証の記録）
	GatewayOrderID   string `gorm:"type:varchar(64)" json:"gateway_order_id,omitempty"`
	GatewaySignature string `gorm:"type:varchar(128)" json:"-"`

	Dates OrderDates `gorm:"embedded" json:"dates"`

	CancellationRequest CancellationRequest `gorm:"embedded" json:"cancellation_request,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
