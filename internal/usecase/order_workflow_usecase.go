package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/payment"
	repo "app/internal/repository"

	"go.uber.org/zap"
)

// 注文ステータスと返金のワークフロー。
// 書き込みはすべてUpdateIf（述語付き1回更新）経由で行い、読み取りはエラーの区別にだけ使う。
type OrderWorkflowUsecase struct {
	orders     repo.OrderRepository
	settings   repo.CompanyDetailsRepository
	newGateway payment.GatewayFactory
	auditRepo  repo.AuditLogRepository
	log        *zap.SugaredLogger
}

func NewOrderWorkflowUsecase(
	orders repo.OrderRepository,
	settings repo.CompanyDetailsRepository,
	newGateway payment.GatewayFactory,
	auditRepo repo.AuditLogRepository,
	log *zap.SugaredLogger,
) *OrderWorkflowUsecase {
	return &OrderWorkflowUsecase{
		orders:     orders,
		settings:   settings,
		newGateway: newGateway,
		auditRepo:  auditRepo,
		log:        log,
	}
}

// 配送ステータスの次の段階。terminal（delivered/cancelled）は載せない
var nextStatus = map[model.OrderStatus]model.OrderStatus{
	model.OrderStatusPlaced:    model.OrderStatusConfirmed,
	model.OrderStatusConfirmed: model.OrderStatusPacked,
	model.OrderStatusPacked:    model.OrderStatusShipped,
	model.OrderStatusShipped:   model.OrderStatusDelivered,
}

// cancelledに飛べるのは発送前だけ
func cancellable(s model.OrderStatus) bool {
	switch s {
	case model.OrderStatusPlaced, model.OrderStatusConfirmed, model.OrderStatusPacked:
		return true
	}
	return false
}

// AdvanceStatusは配送ステータスを1段階進める（またはcancelledへ落とす）。
// マイルストーン時刻はステータスと同じ1回の更新で書く。
func (u *OrderWorkflowUsecase) AdvanceStatus(ctx context.Context, actorAdminUserID string, orderID string, target model.OrderStatus) (model.Order, error) {
	switch target {
	case model.OrderStatusConfirmed, model.OrderStatusPacked, model.OrderStatusShipped,
		model.OrderStatusDelivered, model.OrderStatusCancelled:
		// OK
	default:
		return model.Order{}, ErrInvalidTransition
	}

	o, err := u.orders.FindByOrderID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return model.Order{}, ErrInternalDB
	}

	if target == model.OrderStatusCancelled {
		if !cancellable(o.Status) {
			return model.Order{}, ErrInvalidTransition
		}
	} else {
		if nextStatus[o.Status] != target {
			return model.Order{}, ErrInvalidTransition
		}
		//キャンセル申請がpendingの間は前進させない（申請を却下すれば再開できる）
		if o.CancellationRequest.Status == model.CancellationStatusPending {
			return model.Order{}, ErrCancellationPending
		}
	}

	now := time.Now()
	patch := repo.OrderPatch{Status: &target}
	switch target {
	case model.OrderStatusConfirmed:
		patch.ConfirmedDate = &now
	case model.OrderStatusPacked:
		patch.PackedDate = &now
	case model.OrderStatusShipped:
		patch.ShippedDate = &now
	case model.OrderStatusDelivered:
		patch.DeliveredDate = &now
	}

	pred := repo.OrderPredicate{StatusIn: []model.OrderStatus{o.Status}}
	if target == model.OrderStatusCancelled && o.CancellationRequest.Status == model.CancellationStatusPending {
		//直接キャンセルでpendingの申請を宙に浮かせない。同じ1回の更新で申請も閉じる
		pending := model.CancellationStatusPending
		approved := model.CancellationStatusApproved
		pred.CancellationStatusIs = &pending
		patch.CancellationStatus = &approved
		patch.CancellationProcessedAt = &now
	} else {
		pred.NoPendingCancellation = true
	}

	updated, err := u.orders.UpdateIf(ctx, orderID, pred, patch)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, ErrOrderNotFound
	}
	if errors.Is(err, repo.ErrConditionFailed) {
		//事前チェックと書き込みの間で別の操作が入った
		return model.Order{}, ErrConflict
	}
	if err != nil {
		return model.Order{}, ErrInternalDB
	}

	u.audit(ctx, actorAdminUserID, model.AuditActionUpdateOrderStatus, orderID,
		statusJSON(o.Status), statusJSON(updated.Status))

	return updated, nil
}

// RequestCancellationは顧客からのキャンセル申請を受け付ける。
// 配送ステータスは変えない（管理者が承認/却下するまで注文は生きている）。
func (u *OrderWorkflowUsecase) RequestCancellation(ctx context.Context, orderID string, reason string) error {
	o, err := u.orders.FindByOrderID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return ErrInternalDB
	}

	if o.Status == model.OrderStatusCancelled {
		return ErrAlreadyCancelled
	}
	if !cancellable(o.Status) {
		return ErrTooLateToCancel
	}
	if o.CancellationRequest.Status == model.CancellationStatusPending {
		return ErrDuplicateRequest
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "No reason provided"
	}

	now := time.Now()
	pending := model.CancellationStatusPending
	_, err = u.orders.UpdateIf(ctx, orderID,
		repo.OrderPredicate{
			StatusIn:              []model.OrderStatus{model.OrderStatusPlaced, model.OrderStatusConfirmed, model.OrderStatusPacked},
			NoPendingCancellation: true,
		},
		repo.OrderPatch{
			CancellationReason:      &reason,
			CancellationStatus:      &pending,
			CancellationRequestedAt: &now,
		},
	)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrOrderNotFound
	}
	if errors.Is(err, repo.ErrConditionFailed) {
		//競合した側の状態を読み直してエラーを出し分ける
		o2, err2 := u.orders.FindByOrderID(ctx, orderID)
		if err2 != nil {
			return ErrConflict
		}
		if o2.Status == model.OrderStatusCancelled {
			return ErrAlreadyCancelled
		}
		if !cancellable(o2.Status) {
			return ErrTooLateToCancel
		}
		return ErrDuplicateRequest
	}
	if err != nil {
		return ErrInternalDB
	}

	u.log.Infow("cancellation requested", "order_id", orderID, "reason", reason)
	return nil
}

// RejectCancellationは申請を却下して配送を再開できる状態に戻す。ゲートウェイには触らない。
func (u *OrderWorkflowUsecase) RejectCancellation(ctx context.Context, actorAdminUserID string, orderID string) error {
	o, err := u.orders.FindByOrderID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return ErrInternalDB
	}

	//cancelled済みの注文を却下でconfirmedに蘇生させない
	if o.Status == model.OrderStatusCancelled {
		return ErrAlreadyCancelled
	}
	if o.CancellationRequest.Status != model.CancellationStatusPending {
		return ErrNoRequestFound
	}

	now := time.Now()
	pending := model.CancellationStatusPending
	rejected := model.CancellationStatusRejected
	confirmed := model.OrderStatusConfirmed

	_, err = u.orders.UpdateIf(ctx, orderID,
		repo.OrderPredicate{
			StatusIn:             []model.OrderStatus{model.OrderStatusPlaced, model.OrderStatusConfirmed, model.OrderStatusPacked},
			CancellationStatusIs: &pending,
		},
		repo.OrderPatch{
			Status:                  &confirmed,
			CancellationStatus:      &rejected,
			CancellationProcessedAt: &now,
		},
	)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrOrderNotFound
	}
	if errors.Is(err, repo.ErrConditionFailed) {
		//競合した側の状態を読み直してエラーを出し分ける
		o2, err2 := u.orders.FindByOrderID(ctx, orderID)
		if err2 != nil {
			return ErrConflict
		}
		if o2.Status == model.OrderStatusCancelled {
			return ErrAlreadyCancelled
		}
		return ErrNoRequestFound
	}
	if err != nil {
		return ErrInternalDB
	}

	u.audit(ctx, actorAdminUserID, model.AuditActionRejectCancellation, orderID,
		`{"cancellation_status":"pending"}`, `{"cancellation_status":"rejected"}`)

	return nil
}

type ApproveCancellationOutput struct {
	Cancelled bool `json:"cancelled"`
	//返金API呼び出しが失敗し、手動返金が必要かどうか
	ManualRefundRequired bool `json:"manual_refund_required"`
}

// ApproveCancellationAndRefundはキャンセルを承認して全額返金する。
//
// 方針（非対称な分岐）:
//   - ゲートウェイへの状態照会が失敗しても中断しない（照会できないだけで返金を止めない）
//   - capture（支払い確定）が失敗したら中断する。未確定の支払いへの返金は意味がないため、
//     注文には何も書かずに返す
//   - 返金自体の失敗では中断しない。承認された以上フルフィルメントは止めるべきで、
//     注文はcancelledにしてpaymentStatusをrefund_pendingに落とし、手動返金が必要なことを返す
func (u *OrderWorkflowUsecase) ApproveCancellationAndRefund(ctx context.Context, actorAdminUserID string, orderID string) (ApproveCancellationOutput, error) {
	o, err := u.orders.FindByOrderID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return ApproveCancellationOutput{}, ErrOrderNotFound
	}
	if err != nil {
		return ApproveCancellationOutput{}, ErrInternalDB
	}

	if o.Status == model.OrderStatusCancelled {
		return ApproveCancellationOutput{}, ErrAlreadyCancelled
	}
	if !cancellable(o.Status) {
		return ApproveCancellationOutput{}, ErrTooLateToCancel
	}

	//返金対象の支払いが無ければここで終わり（代引きなど）
	if o.PaymentStatus != model.PaymentStatusSuccess || o.PaymentID == "" {
		return ApproveCancellationOutput{}, ErrNoPaymentToRefund
	}

	details, err := u.settings.Get(ctx)
	if err != nil {
		return ApproveCancellationOutput{}, ErrInternalDB
	}
	if !details.PaymentGateway.Configured() {
		return ApproveCancellationOutput{}, ErrGatewayNotConfigured
	}
	gw := u.newGateway(details.PaymentGateway)

	u.log.Infow("refund attempt", "order_id", orderID, "payment_id", o.PaymentID, "amount", o.TotalAmount)

	//支払いの現在状態を照会。照会自体の失敗は返金を止める理由にしない
	p, fetchErr := gw.FetchPayment(ctx, o.PaymentID)
	if fetchErr != nil {
		u.log.Warnw("payment fetch failed, proceeding with refund attempt",
			"order_id", orderID, "payment_id", o.PaymentID, "error", fetchErr)
	} else if !p.Captured || p.Status != payment.PaymentStateCaptured {
		if p.Status != payment.PaymentStateAuthorized {
			return ApproveCancellationOutput{}, ErrPaymentNotCaptured
		}
		//authorizedなら先に確定する。確定に失敗したら注文には何も書かず中断
		if err := gw.CapturePayment(ctx, o.PaymentID, o.TotalAmount, "INR"); err != nil {
			u.log.Errorw("capture before refund failed",
				"order_id", orderID, "payment_id", o.PaymentID, "error", err)
			return ApproveCancellationOutput{}, ErrCaptureFailed
		}
		u.log.Infow("payment captured before refund", "order_id", orderID, "payment_id", o.PaymentID)
	}

	reason := o.CancellationRequest.Reason
	if reason == "" {
		reason = "Approved by admin"
	}

	refundProcessed := true
	refund, refundErr := gw.RefundPayment(ctx, o.PaymentID, o.TotalAmount, map[string]string{
		"orderId": o.OrderID,
		"reason":  reason,
	})
	if refundErr != nil {
		//返金失敗でもキャンセルは確定させる。残すと返金に失敗した注文が発送されてしまう
		u.log.Errorw("gateway refund failed, cancelling order anyway",
			"order_id", orderID, "payment_id", o.PaymentID, "error", refundErr)
		refundProcessed = false
	} else {
		u.log.Infow("gateway refund succeeded", "order_id", orderID, "refund_id", refund.RefundID)
	}

	//キャンセルと支払い結果を1回の更新で書く
	now := time.Now()
	cancelled := model.OrderStatusCancelled
	payStatus := model.PaymentStatusRefunded
	if !refundProcessed {
		payStatus = model.PaymentStatusRefundPending
	}
	patch := repo.OrderPatch{
		Status:        &cancelled,
		PaymentStatus: &payStatus,
	}
	if o.CancellationRequest.Exists() {
		approved := model.CancellationStatusApproved
		patch.CancellationStatus = &approved
		patch.CancellationProcessedAt = &now
	}

	updated, err := u.orders.UpdateIf(ctx, orderID,
		repo.OrderPredicate{
			StatusIn: []model.OrderStatus{model.OrderStatusPlaced, model.OrderStatusConfirmed, model.OrderStatusPacked},
		},
		patch,
	)
	if errors.Is(err, repo.ErrNotFound) {
		return ApproveCancellationOutput{}, ErrOrderNotFound
	}
	if errors.Is(err, repo.ErrConditionFailed) {
		return ApproveCancellationOutput{}, ErrConflict
	}
	if err != nil {
		return ApproveCancellationOutput{}, ErrInternalDB
	}

	u.audit(ctx, actorAdminUserID, model.AuditActionApproveCancellation, orderID,
		orderStateJSON(o), orderStateJSON(updated))

	return ApproveCancellationOutput{
		Cancelled:            true,
		ManualRefundRequired: !refundProcessed,
	}, nil
}

func (u *OrderWorkflowUsecase) audit(ctx context.Context, actorUserID string, action model.AuditAction, orderID string, before string, after string) {
	if actorUserID == "" {
		return
	}
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       action,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   orderID,
		BeforeJSON:   before,
		AfterJSON:    after,
		CreatedAt:    time.Now(),
	}); err != nil {
		//監査ログの失敗で操作自体は落とさない
		u.log.Warnw("audit log write failed", "order_id", orderID, "action", action, "error", err)
	}
}

func statusJSON(s model.OrderStatus) string {
	return `{"status":"` + string(s) + `"}`
}

func orderStateJSON(o model.Order) string {
	b, _ := json.Marshal(map[string]string{
		"status":              string(o.Status),
		"payment_status":      string(o.PaymentStatus),
		"cancellation_status": string(o.CancellationRequest.Status),
	})
	return string(b)
}
