package model

import "time"

// 管理者操作の種類
type AuditAction string

const (
	//注文ステータスを更新した操作
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
	//キャンセル申請を承認して返金した操作
	AuditActionApproveCancellation AuditAction = "APPROVE_CANCELLATION"
	//キャンセル申請を却下した操作
	AuditActionRejectCancellation AuditAction = "REJECT_CANCELLATION"
	//商品を作成・更新・削除した操作
	AuditActionCreateProduct AuditAction = "CREATE_PRODUCT"
	AuditActionUpdateProduct AuditAction = "UPDATE_PRODUCT"
	AuditActionDeleteProduct AuditAction = "DELETE_PRODUCT"
	//店舗設定を更新した操作
	AuditActionUpdateSettings AuditAction = "UPDATE_SETTINGS"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceProduct  AuditResourceType = "product"
	AuditResourceOrder    AuditResourceType = "order"
	AuditResourceSettings AuditResourceType = "settings"
)

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作した管理者の公開ID（super_userの場合もある）
	ActorUserID string `gorm:"type:varchar(64);not null;index" json:"actor_user_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	//対象のID（注文は公開order_id、商品は数値ID）
	ResourceID string `gorm:"type:varchar(64);not null;index" json:"resource_id"`

	//変更前後をJSON文字列で保存する
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
