package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-backoffice-api/internal/models"
	appErrors "github.com/noah-isme/course-backoffice-api/pkg/errors"
)

type fakeSoho struct {
	homeworks map[int64][]models.SohoHomework
}

func (f *fakeSoho) HomeworksForReview(ctx context.Context, homeworkID int64) ([]models.SohoHomework, error) {
	return f.homeworks[homeworkID], nil
}

type fakeDrive struct {
	folderParent  string
	folderName    string
	spreadsheetID string
	sheetIndex    int
	columns       [][]interface{}
}

func (f *fakeDrive) CreateFolder(ctx context.Context, parentID, name string) (string, error) {
	f.folderParent = parentID
	f.folderName = name
	return "folder-123", nil
}

func (f *fakeDrive) WriteColumns(ctx context.Context, spreadsheetID string, sheetIndex int, values [][]interface{}) error {
	f.spreadsheetID = spreadsheetID
	f.sheetIndex = sheetIndex
	f.columns = values
	return nil
}

type syncRunner struct{}

func (syncRunner) Do(ctx context.Context, fn func() error) error { return fn() }

func vk(id int64) *int64 { return &id }

func seedDistributionWorld(db *memDB) {
	db.subjects = append(db.subjects, &models.Subject{
		ID:   1,
		Name: "Literature",
		Properties: models.SubjectProperties{
			DriveFolderID:          "drive-root",
			CheckSpreadsheetID:     "spreadsheet-1",
			HomeworkFilenameRegexp: `week-\d+`,
		},
	})
	db.products = append(db.products, &models.Product{ID: 10, Name: "Literature 2026", SubjectID: 1})
	db.reviewers = append(db.reviewers, models.Reviewer{
		ID: 1, SubjectID: 1, FirstName: "Olga", Min: 0, Desired: 10, Max: 10, AbsMax: 20, IsActive: true,
	})
	db.directory[111] = models.StudentDirectoryEntry{VKID: 111, Name: "Ivan Ivanov"}
	db.directory[112] = models.StudentDirectoryEntry{VKID: 112, Name: "Maria Petrova", Expulsed: true}
	db.nextID = 1000
}

func TestDistribute(t *testing.T) {
	db := newMemDB()
	seedDistributionWorld(db)
	soho := &fakeSoho{homeworks: map[int64][]models.SohoHomework{
		500: {
			{StudentHomeworkID: 1, StudentSohoID: 901, StudentVKID: vk(111), ChatURL: "https://chat.example/1", SentToReviewAt: time.Now()},
			{StudentHomeworkID: 2, StudentSohoID: 902, ChatURL: "https://chat.example/2"},
			{StudentHomeworkID: 3, StudentSohoID: 903, StudentVKID: vk(999), ChatURL: "https://chat.example/3"},
			{StudentHomeworkID: 4, StudentSohoID: 904, StudentVKID: vk(112), ChatURL: "https://chat.example/4"},
		},
	}}
	drive := &fakeDrive{}
	factory := newFakeFactory(db)
	svc := NewDistributorService(factory, soho, drive, syncRunner{}, nil)

	snapshot, err := svc.Distribute(context.Background(), models.DistributionParams{
		Name:       "week 12",
		ProductIDs: []int64{10},
		Homeworks:  []models.DistributionHomework{{HomeworkID: 500}},
	})
	require.NoError(t, err)
	require.True(t, factory.uow.committed)

	assert.Equal(t, "week 12", snapshot.Name)
	assert.Equal(t, "folder-123", snapshot.FolderID)
	assert.Equal(t, "https://drive.google.com/drive/folders/folder-123", snapshot.FolderURL)

	require.Len(t, snapshot.Reviewers, 1)
	require.Len(t, snapshot.Reviewers[0].Current, 1)
	placed := snapshot.Reviewers[0].Current[0]
	assert.Equal(t, "Ivan Ivanov", placed.StudentName)
	assert.Equal(t, int64(111), placed.StudentVKID)

	reasons := make(map[models.HomeworkError]int)
	for _, e := range snapshot.ErrorHomeworks {
		reasons[e.Message]++
	}
	assert.Equal(t, 1, reasons[models.HomeworkWithoutVKID])
	assert.Equal(t, 1, reasons[models.StudentWithVKIDNotFound])
	assert.Equal(t, 1, reasons[models.StudentWasExpulsed])

	assert.Equal(t, "drive-root", drive.folderParent)
	assert.Equal(t, "week 12", drive.folderName)
	assert.Equal(t, "spreadsheet-1", drive.spreadsheetID)
	assert.Equal(t, 4, drive.sheetIndex)
	assert.NotEmpty(t, drive.columns)

	require.Len(t, db.distributions, 1)
	stored := db.distributions[0]
	assert.Equal(t, int64(1), stored.SubjectID)
	var decoded models.DistributionSnapshot
	require.NoError(t, json.Unmarshal(stored.Data, &decoded))
	assert.Equal(t, "week 12", decoded.Name)
	assert.Equal(t, "folder-123", decoded.FolderID)

	assert.Equal(t, []string{"folder-123"}, db.subjects[0].Properties.CheckRegularNotificationFolderIDs)
}

func TestDistributeValidatesParams(t *testing.T) {
	svc := NewDistributorService(newFakeFactory(newMemDB()), &fakeSoho{}, &fakeDrive{}, syncRunner{}, nil)

	_, err := svc.Distribute(context.Background(), models.DistributionParams{Name: "week 12"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestDistributeProductNotFound(t *testing.T) {
	db := newMemDB()
	svc := NewDistributorService(newFakeFactory(db), &fakeSoho{}, &fakeDrive{}, syncRunner{}, nil)

	_, err := svc.Distribute(context.Background(), models.DistributionParams{
		Name:       "week 12",
		ProductIDs: []int64{77},
		Homeworks:  []models.DistributionHomework{{HomeworkID: 500}},
	})
	assert.ErrorIs(t, err, appErrors.ErrProductNotFound)
}

func TestGetDistributionNotFound(t *testing.T) {
	svc := NewDistributorService(newFakeFactory(newMemDB()), &fakeSoho{}, &fakeDrive{}, syncRunner{}, nil)

	_, err := svc.GetDistribution(context.Background(), 42)
	assert.ErrorIs(t, err, appErrors.ErrDistributionNotFound)
}
