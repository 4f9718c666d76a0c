package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-backoffice-api/internal/models"
	"github.com/noah-isme/course-backoffice-api/internal/repository"
	appErrors "github.com/noah-isme/course-backoffice-api/pkg/errors"
)

// checkSheetIndex is the fixed position of the distribution sheet inside
// the subject's spreadsheet.
const checkSheetIndex = 4

type homeworkFetcher interface {
	HomeworksForReview(ctx context.Context, homeworkID int64) ([]models.SohoHomework, error)
}

type driveWriter interface {
	CreateFolder(ctx context.Context, parentID, name string) (string, error)
	WriteColumns(ctx context.Context, spreadsheetID string, sheetIndex int, values [][]interface{}) error
}

type blockingRunner interface {
	Do(ctx context.Context, fn func() error) error
}

// DistributorService plans one weekly homework distribution: fetch, validate
// against the student directory, pack into reviewer envelopes, materialize
// the plan in the drive and spreadsheet, persist the snapshot.
type DistributorService struct {
	factory   repository.Factory
	soho      homeworkFetcher
	drive     driveWriter
	pool      blockingRunner
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewDistributorService constructs a DistributorService.
func NewDistributorService(factory repository.Factory, soho homeworkFetcher, drive driveWriter, pool blockingRunner, logger *zap.Logger) *DistributorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DistributorService{
		factory: factory, soho: soho, drive: drive, pool: pool,
		validator: validator.New(), logger: logger, now: time.Now,
	}
}

// Distribute runs one distribution. Drive and spreadsheet writes happen on
// the blocking pool before anything is persisted; any database failure rolls
// the whole run back. Re-runs are not de-duplicated.
func (s *DistributorService) Distribute(ctx context.Context, params models.DistributionParams) (*models.DistributionSnapshot, error) {
	if err := s.validator.Struct(params); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid distribution params")
	}

	homeworks := make([]models.SohoHomework, 0)
	for _, group := range params.Homeworks {
		fetched, err := s.soho.HomeworksForReview(ctx, group.HomeworkID)
		if err != nil {
			return nil, appErrors.Internal(err, fmt.Sprintf("failed to fetch homework group %d", group.HomeworkID))
		}
		homeworks = append(homeworks, fetched...)
	}

	uow, err := s.factory.Begin(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to open transaction")
	}
	defer uow.Rollback() //nolint:errcheck

	product, err := uow.Products().FindByID(ctx, params.ProductIDs[0])
	if err != nil {
		return nil, notFoundOr(err, appErrors.ErrProductNotFound, "failed to fetch product")
	}
	subject, err := uow.Subjects().FindByID(ctx, product.SubjectID)
	if err != nil {
		return nil, notFoundOr(err, appErrors.ErrSubjectNotFound, "failed to fetch subject")
	}
	reviewers, err := uow.Reviewers().ListActiveBySubject(ctx, subject.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list reviewers")
	}

	vkIDs := make([]int64, 0, len(homeworks))
	for _, hw := range homeworks {
		if hw.StudentVKID != nil {
			vkIDs = append(vkIDs, *hw.StudentVKID)
		}
	}
	directory, err := uow.StudentProducts().LoadDirectory(ctx, subject.ID, vkIDs)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load student directory")
	}

	valid, invalid := validateHomeworks(homeworks, directory)

	createdAt := s.now()
	rng := rand.New(rand.NewSource(createdAt.UnixNano()))
	rng.Shuffle(len(valid), func(i, j int) { valid[i], valid[j] = valid[j], valid[i] })

	plans, overflow := packHomeworks(reviewers, valid)
	invalid = append(invalid, overflow...)

	snapshot := &models.DistributionSnapshot{
		Name:           params.Name,
		CreatedAt:      createdAt,
		Reviewers:      plans,
		ErrorHomeworks: invalid,
	}

	folderID, err := s.materialize(ctx, subject, snapshot)
	if err != nil {
		return nil, err
	}
	snapshot.FolderID = folderID

	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to encode distribution snapshot")
	}
	distribution := &models.Distribution{SubjectID: subject.ID, Data: data}
	if err := uow.Distributions().Create(ctx, distribution); err != nil {
		return nil, appErrors.Internal(err, "failed to persist distribution")
	}

	props := subject.Properties
	props.PushRegularNotificationFolder(folderID)
	if err := uow.Subjects().UpdateProperties(ctx, subject.ID, props); err != nil {
		return nil, appErrors.Internal(err, "failed to register notification folder")
	}

	if err := uow.Commit(); err != nil {
		return nil, appErrors.Internal(err, "failed to commit distribution")
	}

	s.logger.Info("distribution planned",
		zap.Int64("subject_id", subject.ID),
		zap.String("name", params.Name),
		zap.Int("homeworks", len(homeworks)),
		zap.Int("errors", len(invalid)))
	return snapshot, nil
}

// GetDistribution fetches a stored snapshot by id.
func (s *DistributorService) GetDistribution(ctx context.Context, id int64) (*models.Distribution, error) {
	uow, err := s.factory.Begin(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to open transaction")
	}
	defer uow.Rollback() //nolint:errcheck

	distribution, err := uow.Distributions().FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, appErrors.ErrDistributionNotFound, "failed to fetch distribution")
	}
	return distribution, nil
}

// materialize creates the output folder and writes the check sheet. Both
// calls block, so they run on the worker pool.
func (s *DistributorService) materialize(ctx context.Context, subject *models.Subject, snapshot *models.DistributionSnapshot) (string, error) {
	var folderID string
	err := s.pool.Do(ctx, func() error {
		id, err := s.drive.CreateFolder(ctx, subject.Properties.DriveFolderID, snapshot.Name)
		if err != nil {
			return err
		}
		folderID = id
		return nil
	})
	if err != nil {
		return "", appErrors.Internal(err, "failed to create drive folder")
	}
	snapshot.FolderURL = folderURL(folderID)

	columns := buildSheetColumns(subject, snapshot)
	err = s.pool.Do(ctx, func() error {
		return s.drive.WriteColumns(ctx, subject.Properties.CheckSpreadsheetID, checkSheetIndex, columns)
	})
	if err != nil {
		return "", appErrors.Internal(err, "failed to write check sheet")
	}
	return folderID, nil
}

// validateHomeworks splits fetched homeworks into plannable ones and errors
// using the student directory.
func validateHomeworks(homeworks []models.SohoHomework, directory map[int64]models.StudentDirectoryEntry) ([]models.StudentHomework, []models.ErrorHomework) {
	valid := make([]models.StudentHomework, 0, len(homeworks))
	invalid := make([]models.ErrorHomework, 0)

	for _, hw := range homeworks {
		if hw.StudentVKID == nil {
			invalid = append(invalid, models.ErrorHomework{Homework: hw, Message: models.HomeworkWithoutVKID})
			continue
		}
		entry, ok := directory[*hw.StudentVKID]
		if !ok {
			invalid = append(invalid, models.ErrorHomework{Homework: hw, Message: models.StudentWithVKIDNotFound})
			continue
		}
		if entry.Expulsed {
			invalid = append(invalid, models.ErrorHomework{Homework: hw, StudentName: entry.Name, Message: models.StudentWasExpulsed})
			continue
		}
		valid = append(valid, models.StudentHomework{
			HomeworkID:       hw.StudentHomeworkID,
			StudentName:      entry.Name,
			StudentVKID:      *hw.StudentVKID,
			StudentSohoID:    hw.StudentSohoID,
			SubmissionURL:    hw.ChatURL,
			SentToReviewAt:   hw.SentToReviewAt,
			TeacherProductID: entry.TeacherProductID,
		})
	}
	return valid, invalid
}

func folderURL(folderID string) string {
	return "https://drive.google.com/drive/folders/" + folderID
}
