package application

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-event-checkin/internal/domain/instance"
	"github.com/sanosuguru/go-event-checkin/internal/domain/registration"
	"github.com/sanosuguru/go-event-checkin/internal/domain/schedule"
	"github.com/sanosuguru/go-event-checkin/internal/domain/transaction"
	"github.com/sanosuguru/go-event-checkin/internal/domain/visitor"
)

// MockTx は transaction.Tx のモック
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	return m.Called().Error(0)
}

func (m *MockTx) Rollback() error {
	return m.Called().Error(0)
}

// MockTxManager は transaction.Manager のモック
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(transaction.Tx), args.Error(1)
}

// newTxManager はコミット・ロールバック可能なモックトランザクションを返す
func newTxManager() *MockTxManager {
	tx := new(MockTx)
	tx.On("Commit").Return(nil)
	tx.On("Rollback").Return(nil)
	tm := new(MockTxManager)
	tm.On("Begin", mock.Anything).Return(tx, nil)
	return tm
}

// MockScheduleRepository は schedule.Repository のモック
type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) Create(ctx context.Context, tx transaction.Tx, e *schedule.ScheduledEvent) error {
	return m.Called(ctx, tx, e).Error(0)
}

func (m *MockScheduleRepository) GetByID(ctx context.Context, id string) (*schedule.ScheduledEvent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedule.ScheduledEvent), args.Error(1)
}

func (m *MockScheduleRepository) List(ctx context.Context, filter schedule.ListFilter) ([]*schedule.ScheduledEvent, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*schedule.ScheduledEvent), args.Error(1)
}

func (m *MockScheduleRepository) Update(ctx context.Context, tx transaction.Tx, e *schedule.ScheduledEvent) error {
	return m.Called(ctx, tx, e).Error(0)
}

func (m *MockScheduleRepository) Delete(ctx context.Context, tx transaction.Tx, id string) error {
	return m.Called(ctx, tx, id).Error(0)
}

// MockInstanceRepository は instance.Repository のモック
type MockInstanceRepository struct {
	mock.Mock
}

func (m *MockInstanceRepository) CreateBulk(ctx context.Context, tx transaction.Tx, instances []*instance.EventInstance) error {
	return m.Called(ctx, tx, instances).Error(0)
}

func (m *MockInstanceRepository) GetByID(ctx context.Context, id string) (*instance.EventInstance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*instance.EventInstance), args.Error(1)
}

func (m *MockInstanceRepository) ListByScheduledEvent(ctx context.Context, scheduledEventID string) ([]*instance.EventInstance, error) {
	args := m.Called(ctx, scheduledEventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*instance.EventInstance), args.Error(1)
}

func (m *MockInstanceRepository) DeleteFuture(ctx context.Context, tx transaction.Tx, scheduledEventID string, now time.Time) error {
	return m.Called(ctx, tx, scheduledEventID, now).Error(0)
}

func (m *MockInstanceRepository) UpdateStatus(ctx context.Context, inst *instance.EventInstance) error {
	return m.Called(ctx, inst).Error(0)
}

func (m *MockInstanceRepository) CompletePast(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *MockInstanceRepository) ListFutureForVisitor(ctx context.Context, visitorID string, now time.Time) ([]*instance.VisitorEvent, error) {
	args := m.Called(ctx, visitorID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*instance.VisitorEvent), args.Error(1)
}

// MockRegistrationRepository は registration.Repository のモック
type MockRegistrationRepository struct {
	mock.Mock
}

func (m *MockRegistrationRepository) Create(ctx context.Context, tx transaction.Tx, reg *registration.Registration) error {
	return m.Called(ctx, tx, reg).Error(0)
}

func (m *MockRegistrationRepository) GetByID(ctx context.Context, id string) (*registration.Registration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registration.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) GetByVisitorAndInstance(ctx context.Context, visitorID, instanceID string) (*registration.Registration, error) {
	args := m.Called(ctx, visitorID, instanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registration.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) ListByVisitor(ctx context.Context, visitorID string) ([]*registration.Registration, error) {
	args := m.Called(ctx, visitorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*registration.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) ListByInstance(ctx context.Context, instanceID string) ([]*registration.Registration, error) {
	args := m.Called(ctx, instanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*registration.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) UpdateStatus(ctx context.Context, tx transaction.Tx, reg *registration.Registration) error {
	return m.Called(ctx, tx, reg).Error(0)
}

func (m *MockRegistrationRepository) CountActiveByInstance(ctx context.Context, instanceID string) (int, error) {
	args := m.Called(ctx, instanceID)
	return args.Int(0), args.Error(1)
}

// MockVisitorDirectory は visitor.Directory のモック
type MockVisitorDirectory struct {
	mock.Mock
}

func (m *MockVisitorDirectory) GetByPhone(ctx context.Context, phone string) (*visitor.Visitor, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*visitor.Visitor), args.Error(1)
}
