package application

import (
	"context"
	"time"

	"github.com/sanosuguru/go-event-checkin/internal/domain/instance"
)

// InstanceService はインスタンス単体の状態遷移を管理する
// scheduled → completed / cancelled の遷移のみ許可され、終端状態からは遷移できない
type InstanceService struct {
	instanceRepo instance.Repository
}

// NewInstanceService はInstanceServiceを作成する
func NewInstanceService(ir instance.Repository) *InstanceService {
	return &InstanceService{instanceRepo: ir}
}

// CompleteInstance はインスタンスを完了状態にする（ホスト操作）
func (s *InstanceService) CompleteInstance(ctx context.Context, id string) (*instance.EventInstance, error) {
	inst, err := s.instanceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := inst.Complete(); err != nil {
		return nil, err
	}
	if err := s.instanceRepo.UpdateStatus(ctx, inst); err != nil {
		return nil, err
	}
	return inst, nil
}

// CancelInstance はインスタンスをキャンセル状態にする（ホスト操作）
func (s *InstanceService) CancelInstance(ctx context.Context, id string) (*instance.EventInstance, error) {
	inst, err := s.instanceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := inst.Cancel(); err != nil {
		return nil, err
	}
	if err := s.instanceRepo.UpdateStatus(ctx, inst); err != nil {
		return nil, err
	}
	return inst, nil
}

// GetInstance はインスタンスを親イベント情報付きで取得する
func (s *InstanceService) GetInstance(ctx context.Context, id string) (*instance.EventInstance, error) {
	return s.instanceRepo.GetByID(ctx, id)
}

// CompletePastInstances は終了日時が過ぎた scheduled インスタンスを completed にする
// バックグラウンドワーカーから定期的に呼び出される
func (s *InstanceService) CompletePastInstances(ctx context.Context) (int, error) {
	return s.instanceRepo.CompletePast(ctx, time.Now())
}
