package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sanosuguru/go-event-checkin/internal/domain/instance"
	"github.com/sanosuguru/go-event-checkin/internal/domain/registration"
	"github.com/sanosuguru/go-event-checkin/internal/domain/schedule"
	"github.com/sanosuguru/go-event-checkin/internal/domain/transaction"
	"github.com/sanosuguru/go-event-checkin/internal/domain/visitor"
	redisinfra "github.com/sanosuguru/go-event-checkin/internal/infrastructure/redis"
	"github.com/sanosuguru/go-event-checkin/internal/pkg/metrics"
)

// registrationCountTTL は登録数キャッシュの有効期間
const registrationCountTTL = 30 * time.Second

// RegistrationService は訪問者の参加登録ライフサイクルを管理する
// 訪問者の識別は電話番号のみで行う（認証ではなくケーパビリティチェック）
type RegistrationService struct {
	txManager        transaction.Manager
	registrationRepo registration.Repository
	instanceRepo     instance.Repository
	visitorDir       visitor.Directory
	lockManager      *redisinfra.LockManager
	countCache       *redisinfra.RegistrationCountCache
	metrics          *metrics.Metrics
}

// NewRegistrationService はRegistrationServiceを作成する
// lockManager / countCache / metrics は nil の場合スキップされる
func NewRegistrationService(
	tm transaction.Manager,
	rr registration.Repository,
	ir instance.Repository,
	vd visitor.Directory,
	lm *redisinfra.LockManager,
	cc *redisinfra.RegistrationCountCache,
	m *metrics.Metrics,
) *RegistrationService {
	return &RegistrationService{
		txManager:        tm,
		registrationRepo: rr,
		instanceRepo:     ir,
		visitorDir:       vd,
		lockManager:      lm,
		countCache:       cc,
		metrics:          m,
	}
}

// RegisterInput は参加登録の入力
type RegisterInput struct {
	InstanceID string
	Phone      string
	Notes      string
}

// Register は訪問者をインスタンスに登録する
// 同一 (訪問者, インスタンス) の登録はキャンセル済みの行が残っている場合も拒否される
func (s *RegistrationService) Register(ctx context.Context, input RegisterInput) (*registration.Registration, error) {
	// 分散ロックで同一訪問者の同時登録を直列化する（DB一意制約が最終的な安全機構）
	if s.lockManager != nil {
		lock, err := s.lockManager.AcquireWithRetry(ctx,
			redisinfra.RegistrationLockKey(input.InstanceID, input.Phone),
			10*time.Second, 3, 100*time.Millisecond)
		if err != nil {
			if errors.Is(err, redisinfra.ErrLockNotAcquired) {
				return nil, s.countRegistration("conflict", registration.ErrAlreadyRegistered)
			}
			return nil, fmt.Errorf("ロック取得に失敗しました: %w", err)
		}
		defer lock.Release(ctx)
	}

	inst, err := s.instanceRepo.GetByID(ctx, input.InstanceID)
	if err != nil {
		return nil, s.countRegistration("not_found", err)
	}
	if !inst.IsSchedulable() || inst.EventStatus == string(schedule.StatusCancelled) {
		return nil, s.countRegistration("invalid_state", registration.ErrInstanceNotOpen)
	}

	// ディレクトリへの登録が前提条件：見つからない場合は作成せずに失敗する
	v, err := s.visitorDir.GetByPhone(ctx, input.Phone)
	if err != nil {
		return nil, s.countRegistration("visitor_not_found", err)
	}

	// 既存登録の事前チェックは親切なエラーメッセージのための最適化
	if _, err := s.registrationRepo.GetByVisitorAndInstance(ctx, v.ID, input.InstanceID); err == nil {
		return nil, s.countRegistration("already_registered", registration.ErrAlreadyRegistered)
	} else if !errors.Is(err, registration.ErrRegistrationNotFound) {
		return nil, err
	}

	reg := registration.NewRegistration(v.ID, input.InstanceID, input.Notes)

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	if err := s.registrationRepo.Create(ctx, tx, reg); err != nil {
		if errors.Is(err, registration.ErrAlreadyRegistered) {
			return nil, s.countRegistration("already_registered", err)
		}
		return nil, s.countRegistration("error", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗しました: %w", err)
	}

	s.invalidateCount(ctx, input.InstanceID)
	if s.metrics != nil {
		s.metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	}

	// レスポンス用の関連情報を補完する
	reg.VisitorName = v.FullName()
	reg.VisitorPhone = v.Phone
	reg.VisitorEmail = v.Email
	reg.EventName = inst.EventName
	reg.EventStartDate = inst.StartDate
	reg.EventEndDate = inst.EndDate
	return reg, nil
}

// CancelInput は登録キャンセルの入力
type CancelInput struct {
	RegistrationID string
	Phone          string
}

// Cancel は登録をキャンセルする
// 電話番号の照合は本人確認ではなく誤操作防止のためのケーパビリティチェック
// 行は削除せず status のみ変更するため、キャンセル後の再登録はできない
func (s *RegistrationService) Cancel(ctx context.Context, input CancelInput) (*registration.Registration, error) {
	reg, err := s.registrationRepo.GetByID(ctx, input.RegistrationID)
	if err != nil {
		return nil, err
	}

	if reg.VisitorPhone != input.Phone {
		return nil, registration.ErrPhoneMismatch
	}
	if reg.InstanceStatus == string(instance.StatusCompleted) || reg.InstanceStatus == string(instance.StatusCancelled) {
		return nil, registration.ErrInstanceNotOpen
	}
	if reg.EventStartDate.Before(time.Now()) {
		return nil, registration.ErrInstanceStarted
	}
	if err := reg.Cancel(); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	if err := s.registrationRepo.UpdateStatus(ctx, tx, reg); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗しました: %w", err)
	}

	s.invalidateCount(ctx, reg.EventInstanceID)
	return reg, nil
}

// ListByVisitor は訪問者の全登録をインスタンス開始日時の降順で取得する
func (s *RegistrationService) ListByVisitor(ctx context.Context, phone string) ([]*registration.Registration, error) {
	v, err := s.visitorDir.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	return s.registrationRepo.ListByVisitor(ctx, v.ID)
}

// ListByInstance はインスタンスの全登録を訪問者情報付きで取得する（ホスト向け）
func (s *RegistrationService) ListByInstance(ctx context.Context, instanceID string) ([]*registration.Registration, error) {
	if _, err := s.instanceRepo.GetByID(ctx, instanceID); err != nil {
		return nil, err
	}
	return s.registrationRepo.ListByInstance(ctx, instanceID)
}

// ListVisitorEvents は未来の開催可能インスタンスを訪問者の登録状況付きで取得する
func (s *RegistrationService) ListVisitorEvents(ctx context.Context, phone string) ([]*instance.VisitorEvent, error) {
	v, err := s.visitorDir.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	return s.instanceRepo.ListFutureForVisitor(ctx, v.ID, time.Now())
}

// CountByInstance はインスタンスの有効登録数を取得する（キャッシュ付き）
func (s *RegistrationService) CountByInstance(ctx context.Context, instanceID string) (int, error) {
	if s.countCache != nil {
		if count, err := s.countCache.GetCount(ctx, instanceID); err == nil {
			return count, nil
		}
	}
	count, err := s.registrationRepo.CountActiveByInstance(ctx, instanceID)
	if err != nil {
		return 0, err
	}
	if s.countCache != nil {
		// キャッシュ保存の失敗は致命的ではない
		_ = s.countCache.SetCount(ctx, instanceID, count, registrationCountTTL)
	}
	return count, nil
}

func (s *RegistrationService) invalidateCount(ctx context.Context, instanceID string) {
	if s.countCache != nil {
		_ = s.countCache.Invalidate(ctx, instanceID)
	}
}

func (s *RegistrationService) countRegistration(status string, err error) error {
	if s.metrics != nil {
		s.metrics.RegistrationsTotal.WithLabelValues(status).Inc()
	}
	return err
}
