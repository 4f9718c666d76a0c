package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/course-backoffice-api/internal/models"
	"github.com/noah-isme/course-backoffice-api/pkg/jobs"
)

const (
	jobTeacherAttached = "teacher_attached"
	jobCapacityAlert   = "capacity_alert"
)

type teacherWebhookClient interface {
	NotifyTeacherAttached(ctx context.Context, webhookURL, targetPath string, studentVKID, teacherVKID int64, teacherType models.TeacherType) error
}

type alertClient interface {
	SendMessage(ctx context.Context, text string) error
}

// TeacherAttachedEvent is the payload of the enrollment webhook.
type TeacherAttachedEvent struct {
	WebhookURL  string
	TargetPath  string
	StudentVKID int64
	TeacherVKID int64
	TeacherType models.TeacherType
}

// CapacityAlertEvent is sent to the messenger channel when a teacher
// product exceeds its max students.
type CapacityAlertEvent struct {
	TeacherName string
	TeacherVKID int64
	MaxStudents int
	ProductID   int64
}

// Notifier runs post-commit side-effects on a background queue. Delivery is
// best-effort: the clients own their retry policy, the queue never feeds a
// failure back into the originating request.
type Notifier struct {
	webhooks teacherWebhookClient
	alerts   alertClient
	queue    *jobs.Queue
	logger   *zap.Logger
}

// NewNotifier builds a Notifier with the given number of queue workers.
func NewNotifier(webhooks teacherWebhookClient, alerts alertClient, workers int, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &Notifier{webhooks: webhooks, alerts: alerts, logger: logger}
	n.queue = jobs.NewQueue("side-effects", n.handle, jobs.QueueConfig{
		Workers: workers,
		Logger:  logger,
	})
	return n
}

// Start begins consuming queued side-effects.
func (n *Notifier) Start(ctx context.Context) {
	n.queue.Start(ctx)
}

// Stop drains the workers.
func (n *Notifier) Stop() {
	n.queue.Stop()
}

// TeacherAttached schedules the enrollment webhook.
func (n *Notifier) TeacherAttached(event TeacherAttachedEvent) {
	n.enqueue(jobTeacherAttached, event)
}

// CapacityAlert schedules a capacity-overflow messenger alert.
func (n *Notifier) CapacityAlert(event CapacityAlertEvent) {
	n.enqueue(jobCapacityAlert, event)
}

func (n *Notifier) enqueue(jobType string, payload interface{}) {
	if err := n.queue.Enqueue(jobs.Job{Type: jobType, Payload: payload}); err != nil {
		n.logger.Error("failed to enqueue side-effect", zap.String("type", jobType), zap.Error(err))
	}
}

// handle dispatches one queued side-effect. Errors are logged and swallowed
// so an undeliverable notification is never retried past its client policy.
func (n *Notifier) handle(ctx context.Context, job jobs.Job) error {
	switch event := job.Payload.(type) {
	case TeacherAttachedEvent:
		if event.WebhookURL == "" {
			return nil
		}
		err := n.webhooks.NotifyTeacherAttached(ctx, event.WebhookURL, event.TargetPath,
			event.StudentVKID, event.TeacherVKID, event.TeacherType)
		if err != nil {
			n.logger.Warn("enrollment webhook failed",
				zap.Int64("student_vk_id", event.StudentVKID), zap.Error(err))
		}
	case CapacityAlertEvent:
		text := fmt.Sprintf("Teacher %s (vk %d) exceeded max students %d on product %d",
			event.TeacherName, event.TeacherVKID, event.MaxStudents, event.ProductID)
		if err := n.alerts.SendMessage(ctx, text); err != nil {
			n.logger.Warn("capacity alert failed",
				zap.Int64("teacher_vk_id", event.TeacherVKID), zap.Error(err))
		}
	default:
		n.logger.Error("unknown side-effect job", zap.String("type", job.Type))
	}
	return nil
}
