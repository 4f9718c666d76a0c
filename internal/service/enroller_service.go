package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-backoffice-api/internal/models"
	"github.com/noah-isme/course-backoffice-api/internal/repository"
	appErrors "github.com/noah-isme/course-backoffice-api/pkg/errors"
)

// NewStudent carries the enrollment identity of an incoming student. FlowID
// is the external (soho-side) flow id, 0 when absent.
type NewStudent struct {
	VKID      int64
	SohoID    int64
	Email     string
	FirstName string
	LastName  string
	FlowID    int64
}

type enrollmentNotifier interface {
	TeacherAttached(event TeacherAttachedEvent)
	CapacityAlert(event CapacityAlertEvent)
}

// EnrollerService owns the enrollment state machine: fresh enrollment,
// re-enrollment, teacher change, teacher grading and vk-id change. Every
// operation runs inside one unit of work; side-effects fire only after
// the commit succeeded.
type EnrollerService struct {
	factory  repository.Factory
	notifier enrollmentNotifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewEnrollerService constructs an EnrollerService.
func NewEnrollerService(factory repository.Factory, notifier enrollmentNotifier, logger *zap.Logger) *EnrollerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollerService{factory: factory, notifier: notifier, logger: logger, now: time.Now}
}

// EnrollStudent enrolls a student through the first offer of the list. Only
// offerIDs[0] is consulted; multi-offer purchases are a known limitation of
// the upstream payload.
func (s *EnrollerService) EnrollStudent(ctx context.Context, newStudent NewStudent, offerIDs []int64) (*models.StudentProduct, error) {
	if len(offerIDs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "offer_ids must not be empty")
	}

	uow, err := s.factory.Begin(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to open transaction")
	}
	defer uow.Rollback() //nolint:errcheck

	student, err := s.resolveStudent(ctx, uow, newStudent)
	if err != nil {
		return nil, err
	}

	offer, err := uow.Offers().FindByID(ctx, offerIDs[0])
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrOfferNotFound
		}
		return nil, appErrors.Internal(err, "failed to fetch offer")
	}

	var (
		sp     *models.StudentProduct
		events []func()
	)
	existing, err := uow.StudentProducts().FindByStudentAndProduct(ctx, student.ID, offer.ProductID)
	switch {
	case err == nil:
		sp, events, err = s.reenroll(ctx, uow, student, existing, offer, newStudent.FlowID)
	case errors.Is(err, sql.ErrNoRows):
		sp, events, err = s.enrollFresh(ctx, uow, student, offer, newStudent.FlowID)
	default:
		return nil, appErrors.Internal(err, "failed to fetch student product")
	}
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, appErrors.Internal(err, "failed to commit enrollment")
	}
	for _, fire := range events {
		fire()
	}

	s.logger.Info("student enrolled",
		zap.Int64("student_id", student.ID),
		zap.Int64("offer_id", offer.ID),
		zap.Int64("product_id", offer.ProductID))
	return sp, nil
}

// resolveStudent finds the student by vk id, creating them together with a
// soho account on first contact.
func (s *EnrollerService) resolveStudent(ctx context.Context, uow repository.UnitOfWork, newStudent NewStudent) (*models.Student, error) {
	student, err := uow.Students().FindByVKID(ctx, newStudent.VKID)
	if err == nil {
		return student, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Internal(err, "failed to fetch student")
	}

	student = &models.Student{
		VKID:      newStudent.VKID,
		FirstName: newStudent.FirstName,
		LastName:  newStudent.LastName,
	}
	if err := uow.Students().Create(ctx, student); err != nil {
		return nil, err
	}
	account := &models.SohoAccount{
		ID:        newStudent.SohoID,
		Email:     newStudent.Email,
		StudentID: student.ID,
	}
	if err := uow.SohoAccounts().Create(ctx, account); err != nil {
		return nil, err
	}
	return student, nil
}

// enrollFresh creates a StudentProduct that did not exist before, attaching
// a teacher when the offer asks for one.
func (s *EnrollerService) enrollFresh(ctx context.Context, uow repository.UnitOfWork, student *models.Student, offer *models.Offer, externalFlowID int64) (*models.StudentProduct, []func(), error) {
	flowID, err := s.resolveFlow(ctx, uow, externalFlowID)
	if err != nil {
		return nil, nil, err
	}

	sp := &models.StudentProduct{
		StudentID: student.ID,
		ProductID: offer.ProductID,
		OfferID:   offer.ID,
		Cohort:    offer.Cohort,
	}
	if flowID != 0 {
		sp.FlowID = &flowID
	}

	var chosen *models.TeacherProduct
	if !offer.IsAlone() {
		chosen, err = s.pickTeacherProduct(ctx, uow, offer.ProductID, *offer.TeacherType, flowID)
		if err != nil {
			return nil, nil, err
		}
		sp.SetTeacherState(models.Attached(chosen.ID, *offer.TeacherType))
	}

	if err := uow.StudentProducts().Create(ctx, sp); err != nil {
		return nil, nil, err
	}

	var events []func()
	if chosen != nil {
		if err := uow.TeacherAssignments().Create(ctx, &models.TeacherAssignment{
			StudentProductID: sp.ID,
			TeacherProductID: chosen.ID,
		}); err != nil {
			return nil, nil, err
		}
		events, err = s.attachmentEvents(ctx, uow, student, chosen)
		if err != nil {
			return nil, nil, err
		}
	}
	return sp, events, nil
}

// reenroll applies the re-enrollment transition table to an existing
// StudentProduct. Teacher fields move only when the new offer demands it;
// the row is always un-expulsed and repointed at the new offer.
func (s *EnrollerService) reenroll(ctx context.Context, uow repository.UnitOfWork, student *models.Student, sp *models.StudentProduct, offer *models.Offer, externalFlowID int64) (*models.StudentProduct, []func(), error) {
	var events []func()

	state := sp.TeacherState()
	switch {
	case offer.IsAlone() && !state.IsAttached():
		// Nothing to do on the teacher side.

	case offer.IsAlone():
		// Attached before, alone now: close the live link and detach.
		if err := uow.TeacherAssignments().ExpulseStudentSafely(ctx, sp.ID, state.TeacherProductID()); err != nil {
			return nil, nil, appErrors.Internal(err, "failed to close teacher assignment")
		}
		sp.SetTeacherState(models.Alone())

	case sp.IsActive() && state.IsAttached() && state.TeacherType() == *offer.TeacherType:
		// Same teacher kind on an active row: idempotent re-submission.

	default:
		// The new offer wants a teacher: drop the old link if any and
		// pick again.
		if state.IsAttached() {
			if err := uow.TeacherAssignments().ExpulseStudentSafely(ctx, sp.ID, state.TeacherProductID()); err != nil {
				return nil, nil, appErrors.Internal(err, "failed to close teacher assignment")
			}
		}
		flowID, err := s.resolveFlow(ctx, uow, externalFlowID)
		if err != nil {
			return nil, nil, err
		}
		if flowID == 0 && sp.FlowID != nil {
			flowID = *sp.FlowID
		}
		chosen, err := s.pickTeacherProduct(ctx, uow, offer.ProductID, *offer.TeacherType, flowID)
		if err != nil {
			return nil, nil, err
		}
		if err := uow.TeacherAssignments().Create(ctx, &models.TeacherAssignment{
			StudentProductID: sp.ID,
			TeacherProductID: chosen.ID,
		}); err != nil {
			return nil, nil, err
		}
		sp.SetTeacherState(models.Attached(chosen.ID, *offer.TeacherType))
		if flowID != 0 {
			sp.FlowID = &flowID
		}
		events, err = s.attachmentEvents(ctx, uow, student, chosen)
		if err != nil {
			return nil, nil, err
		}
	}

	sp.ExpulsionAt = nil
	sp.OfferID = offer.ID
	sp.Cohort = offer.Cohort
	if err := uow.StudentProducts().Update(ctx, sp); err != nil {
		return nil, nil, err
	}
	return sp, events, nil
}

// ChangeTeacherForStudent repoints a student product at the teacher with
// the given vk id. The webhook and capacity alert fire even when the
// teacher did not actually change.
func (s *EnrollerService) ChangeTeacherForStudent(ctx context.Context, productID, studentVKID, teacherVKID int64) (*models.StudentProduct, error) {
	uow, err := s.factory.Begin(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to open transaction")
	}
	defer uow.Rollback() //nolint:errcheck

	student, err := uow.Students().FindByVKID(ctx, studentVKID)
	if err != nil {
		return nil, notFoundOr(err, appErrors.ErrStudentNotFound, "failed to fetch student")
	}
	teacher, err := uow.Teachers().FindByVKID(ctx, teacherVKID)
	if err != nil {
		return nil, notFoundOr(err, appErrors.ErrTeacherNotFound, "failed to fetch teacher")
	}
	if _, err := uow.Products().FindByID(ctx, productID); err != nil {
		return nil, notFoundOr(err, appErrors.ErrProductNotFound, "failed to fetch product")
	}
	sp, err := uow.StudentProducts().FindByStudentAndProduct(ctx, student.ID, productID)
	if err != nil {
		return nil, notFoundOr(err, appErrors.ErrStudentProductNotFound, "failed to fetch student product")
	}
	target, err := uow.TeacherProducts().FindByTeacherAndProduct(ctx, teacher.ID, productID)
	if err != nil {
		return nil, notFoundOr(err, appErrors.ErrTeacherProductNotFound, "failed to fetch teacher product")
	}

	state := sp.TeacherState()
	if state.IsAttached() && state.TeacherProductID() != target.ID {
		if err := uow.TeacherAssignments().ExpulseStudentSafely(ctx, sp.ID, state.TeacherProductID()); err != nil {
			return nil, appErrors.Internal(err, "failed to close teacher assignment")
		}
	}
	if !state.IsAttached() || state.TeacherProductID() != target.ID {
		sp.SetTeacherState(models.Attached(target.ID, target.Type))
		if err := uow.StudentProducts().Update(ctx, sp); err != nil {
			return nil, err
		}
		if err := uow.TeacherAssignments().Create(ctx, &models.TeacherAssignment{
			StudentProductID: sp.ID,
			TeacherProductID: target.ID,
			AssignmentAt:     s.now(),
		}); err != nil {
			return nil, err
		}
	}

	events, err := s.attachmentEvents(ctx, uow, student, target)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, appErrors.Internal(err, "failed to commit teacher change")
	}
	for _, fire := range events {
		fire()
	}

	s.logger.Info("teacher changed",
		zap.Int64("student_id", student.ID),
		zap.Int64("teacher_product_id", target.ID),
		zap.Int64("product_id", productID))
	return sp, nil
}

// GradeTeacher records a student's grade for their teacher on a product and
// folds it into the teacher product's running average.
func (s *EnrollerService) GradeTeacher(ctx context.Context, sohoID, productID int64, grade int) error {
	if grade < 0 || grade > 5 {
		return appErrors.Clone(appErrors.ErrValidation, "grade must be between 0 and 5")
	}

	uow, err := s.factory.Begin(ctx)
	if err != nil {
		return appErrors.Internal(err, "failed to open transaction")
	}
	defer uow.Rollback() //nolint:errcheck

	account, err := uow.SohoAccounts().FindByID(ctx, sohoID)
	if err != nil {
		return notFoundOr(err, appErrors.ErrSohoNotFound, "failed to fetch soho account")
	}
	sp, err := uow.StudentProducts().FindByStudentAndProduct(ctx, account.StudentID, productID)
	if err != nil {
		return notFoundOr(err, appErrors.ErrStudentProductNotFound, "failed to fetch student product")
	}
	state := sp.TeacherState()
	if !state.IsAttached() {
		return appErrors.ErrStudentProductHasNotTeacher
	}

	tp, err := uow.TeacherProducts().FindByID(ctx, state.TeacherProductID())
	if err != nil {
		return notFoundOr(err, appErrors.ErrTeacherProductNotFound, "failed to fetch teacher product")
	}

	newCounter := tp.GradeCounter + 1
	newAverage := (tp.AverageGrade*float64(tp.GradeCounter) + float64(grade)) / float64(newCounter)
	if err := uow.TeacherProducts().UpdateGrade(ctx, tp.ID, newAverage, newCounter); err != nil {
		return appErrors.Internal(err, "failed to update teacher grade")
	}

	gradedAt := s.now()
	sp.TeacherGrade = &grade
	sp.TeacherGradedAt = &gradedAt
	if err := uow.StudentProducts().Update(ctx, sp); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return appErrors.Internal(err, "failed to commit teacher grade")
	}
	return nil
}

// ChangeStudentVKID rebinds the vk id of the student behind a soho account.
func (s *EnrollerService) ChangeStudentVKID(ctx context.Context, sohoID, vkID int64) (*models.Student, error) {
	uow, err := s.factory.Begin(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to open transaction")
	}
	defer uow.Rollback() //nolint:errcheck

	account, err := uow.SohoAccounts().FindByID(ctx, sohoID)
	if err != nil {
		return nil, notFoundOr(err, appErrors.ErrSohoNotFound, "failed to fetch soho account")
	}
	student, err := uow.Students().UpdateVKID(ctx, account.StudentID, vkID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrStudentNotFound
		}
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, appErrors.Internal(err, "failed to commit vk id change")
	}
	return student, nil
}

// GetStudent fetches a student by internal id.
func (s *EnrollerService) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	uow, err := s.factory.Begin(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to open transaction")
	}
	defer uow.Rollback() //nolint:errcheck

	student, err := uow.Students().FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, appErrors.ErrStudentNotFound, "failed to fetch student")
	}
	return student, nil
}

func (s *EnrollerService) resolveFlow(ctx context.Context, uow repository.UnitOfWork, externalFlowID int64) (int64, error) {
	if externalFlowID == 0 {
		return 0, nil
	}
	flowID, err := uow.Flows().FindFlowIDBySohoID(ctx, externalFlowID)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to resolve flow")
	}
	return flowID, nil
}

func (s *EnrollerService) pickTeacherProduct(ctx context.Context, uow repository.UnitOfWork, productID int64, teacherType models.TeacherType, flowID int64) (*models.TeacherProduct, error) {
	tp, err := uow.TeacherProducts().GetForEnroll(ctx, productID, teacherType, flowID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrTeacherProductNotFound
		}
		return nil, appErrors.Internal(err, "failed to pick teacher product")
	}
	return tp, nil
}

// attachmentEvents prepares the post-commit webhook and, when the chosen
// teacher product is over capacity, the messenger alert. The closures only
// capture data read inside the transaction; they are invoked after commit.
func (s *EnrollerService) attachmentEvents(ctx context.Context, uow repository.UnitOfWork, student *models.Student, tp *models.TeacherProduct) ([]func(), error) {
	teacher, err := uow.Teachers().FindByID(ctx, tp.TeacherID)
	if err != nil {
		return nil, notFoundOr(err, appErrors.ErrTeacherNotFound, "failed to fetch teacher")
	}
	product, err := uow.Products().FindByID(ctx, tp.ProductID)
	if err != nil {
		return nil, notFoundOr(err, appErrors.ErrProductNotFound, "failed to fetch product")
	}
	subject, err := uow.Subjects().FindByID(ctx, product.SubjectID)
	if err != nil {
		return nil, notFoundOr(err, appErrors.ErrSubjectNotFound, "failed to fetch subject")
	}

	webhook := TeacherAttachedEvent{
		WebhookURL:  subject.Properties.EnrollWebhookURL,
		StudentVKID: student.VKID,
		TeacherVKID: teacher.VKID,
		TeacherType: tp.Type,
	}
	events := []func(){func() { s.notifier.TeacherAttached(webhook) }}

	live, err := uow.TeacherProducts().CountLiveAssignments(ctx, tp.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to count live assignments")
	}
	if live > tp.MaxStudents {
		alert := CapacityAlertEvent{
			TeacherName: teacher.FullName(),
			TeacherVKID: teacher.VKID,
			MaxStudents: tp.MaxStudents,
			ProductID:   tp.ProductID,
		}
		events = append(events, func() { s.notifier.CapacityAlert(alert) })
	}
	return events, nil
}

// notFoundOr maps sql.ErrNoRows to the given typed error and wraps anything
// else as internal.
func notFoundOr(err error, notFound *appErrors.Error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return appErrors.Internal(err, message)
}
