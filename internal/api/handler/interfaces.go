package handler

import (
	"context"

	"github.com/sanosuguru/go-event-checkin/internal/application"
	"github.com/sanosuguru/go-event-checkin/internal/domain/instance"
	"github.com/sanosuguru/go-event-checkin/internal/domain/registration"
	"github.com/sanosuguru/go-event-checkin/internal/domain/schedule"
)

// ScheduleServiceInterface はスケジュールイベントサービスのインターフェース
type ScheduleServiceInterface interface {
	CreateSchedule(ctx context.Context, input application.CreateScheduleInput) (*schedule.ScheduledEvent, error)
	GetSchedule(ctx context.Context, id string) (*schedule.ScheduledEvent, []*instance.EventInstance, error)
	ListSchedules(ctx context.Context, filter schedule.ListFilter) ([]*schedule.ScheduledEvent, error)
	UpdateSchedule(ctx context.Context, input application.UpdateScheduleInput) (*schedule.ScheduledEvent, error)
	DeleteSchedule(ctx context.Context, id string) error
}

// InstanceServiceInterface はインスタンスサービスのインターフェース
type InstanceServiceInterface interface {
	GetInstance(ctx context.Context, id string) (*instance.EventInstance, error)
	CompleteInstance(ctx context.Context, id string) (*instance.EventInstance, error)
	CancelInstance(ctx context.Context, id string) (*instance.EventInstance, error)
}

// RegistrationServiceInterface は参加登録サービスのインターフェース
type RegistrationServiceInterface interface {
	Register(ctx context.Context, input application.RegisterInput) (*registration.Registration, error)
	Cancel(ctx context.Context, input application.CancelInput) (*registration.Registration, error)
	ListByVisitor(ctx context.Context, phone string) ([]*registration.Registration, error)
	ListByInstance(ctx context.Context, instanceID string) ([]*registration.Registration, error)
	ListVisitorEvents(ctx context.Context, phone string) ([]*instance.VisitorEvent, error)
	CountByInstance(ctx context.Context, instanceID string) (int, error)
}
