package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-backoffice-api/internal/models"
	"github.com/noah-isme/course-backoffice-api/internal/repository"
	appErrors "github.com/noah-isme/course-backoffice-api/pkg/errors"
)

// ExpulsionService removes a student from a product while keeping the
// assignment history intact.
type ExpulsionService struct {
	factory repository.Factory
	logger  *zap.Logger
	now     func() time.Time
}

// NewExpulsionService constructs an ExpulsionService.
func NewExpulsionService(factory repository.Factory, logger *zap.Logger) *ExpulsionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpulsionService{factory: factory, logger: logger, now: time.Now}
}

// ExpulseStudentByProduct marks the student product expulsed, detaches the
// teacher and closes the live assignment. When the history lost track of
// the live link a closed audit row is appended instead, dated back to the
// enrollment, so the history still shows the teacher was there.
func (s *ExpulsionService) ExpulseStudentByProduct(ctx context.Context, studentVKID, productID int64) (*models.StudentProduct, error) {
	uow, err := s.factory.Begin(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to open transaction")
	}
	defer uow.Rollback() //nolint:errcheck

	student, err := uow.Students().FindByVKID(ctx, studentVKID)
	if err != nil {
		return nil, notFoundOr(err, appErrors.ErrStudentNotFound, "failed to fetch student")
	}
	if _, err := uow.Products().FindByID(ctx, productID); err != nil {
		return nil, notFoundOr(err, appErrors.ErrProductNotFound, "failed to fetch product")
	}
	sp, err := uow.StudentProducts().FindByStudentAndProduct(ctx, student.ID, productID)
	if err != nil {
		return nil, notFoundOr(err, appErrors.ErrStudentProductNotFound, "failed to fetch student product")
	}
	if !sp.IsActive() {
		return nil, appErrors.ErrStudentProductAlreadyExpulsed
	}

	prior := sp.TeacherState()
	expulsedAt := s.now()
	sp.ExpulsionAt = &expulsedAt
	sp.SetTeacherState(models.Alone())
	if err := uow.StudentProducts().Update(ctx, sp); err != nil {
		return nil, err
	}

	if prior.IsAttached() {
		lastTP, err := uow.TeacherAssignments().FindLastTeacherProductID(ctx, sp.ID)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to read assignment history")
		}
		if lastTP != nil {
			if err := uow.TeacherAssignments().ExpulseStudentSafely(ctx, sp.ID, *lastTP); err != nil {
				return nil, appErrors.Internal(err, "failed to close teacher assignment")
			}
		} else {
			// The history lost the link: append a closed row dated back
			// to the enrollment so the audit trail stays complete.
			if err := uow.TeacherAssignments().Create(ctx, &models.TeacherAssignment{
				StudentProductID: sp.ID,
				TeacherProductID: prior.TeacherProductID(),
				AssignmentAt:     sp.CreatedAt,
				RemovedAt:        &expulsedAt,
			}); err != nil {
				return nil, appErrors.Internal(err, "failed to append audit assignment")
			}
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, appErrors.Internal(err, "failed to commit expulsion")
	}

	s.logger.Info("student expulsed",
		zap.Int64("student_id", student.ID),
		zap.Int64("product_id", productID))
	return sp, nil
}
