package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-backoffice-api/internal/models"
	appErrors "github.com/noah-isme/course-backoffice-api/pkg/errors"
)

func curator() *models.TeacherType {
	t := models.TeacherTypeCurator
	return &t
}

// seedAttachedWorld builds a subject/product/offer/teacher graph with one
// curator teacher product.
func seedAttachedWorld(db *memDB) {
	db.subjects = append(db.subjects, &models.Subject{
		ID:   1,
		Name: "Literature",
		Properties: models.SubjectProperties{
			EnrollWebhookURL: "https://autopilot.example/hook",
		},
	})
	db.products = append(db.products, &models.Product{ID: 10, Name: "Literature 2026", SubjectID: 1})
	db.offers = append(db.offers, &models.Offer{
		ID: 100, Name: "literature-with-curator", ProductID: 10, Cohort: 3, TeacherType: curator(),
	})
	db.teachers = append(db.teachers, &models.Teacher{ID: 5, VKID: 555, FirstName: "Anna", LastName: "Petrova"})
	db.teacherProducts = append(db.teacherProducts, &models.TeacherProduct{
		ID: 50, TeacherID: 5, ProductID: 10, Type: models.TeacherTypeCurator,
		IsActive: true, MaxStudents: 10, AverageGrade: 4.9,
	})
	db.nextID = 1000
}

func TestEnrollStudentFreshAttached(t *testing.T) {
	db := newMemDB()
	seedAttachedWorld(db)
	factory := newFakeFactory(db)
	notifier := &fakeNotifier{}
	svc := NewEnrollerService(factory, notifier, nil)

	sp, err := svc.EnrollStudent(context.Background(), NewStudent{
		VKID: 111, SohoID: 900, Email: "student@example.com", FirstName: "Ivan",
	}, []int64{100})
	require.NoError(t, err)
	require.True(t, factory.uow.committed)

	require.Len(t, db.students, 1)
	assert.Equal(t, int64(111), db.students[0].VKID)
	require.Len(t, db.sohoAccounts, 1)
	assert.Equal(t, int64(900), db.sohoAccounts[0].ID)
	assert.Equal(t, db.students[0].ID, db.sohoAccounts[0].StudentID)

	state := sp.TeacherState()
	require.True(t, state.IsAttached())
	assert.Equal(t, int64(50), state.TeacherProductID())
	assert.Equal(t, models.TeacherTypeCurator, state.TeacherType())
	require.NotNil(t, sp.TeacherProductID)
	assert.Equal(t, int64(50), *sp.TeacherProductID)
	assert.Equal(t, 3, sp.Cohort)
	assert.Nil(t, sp.ExpulsionAt)

	require.Len(t, db.assignments, 1)
	assert.Equal(t, sp.ID, db.assignments[0].StudentProductID)
	assert.Equal(t, int64(50), db.assignments[0].TeacherProductID)
	assert.Nil(t, db.assignments[0].RemovedAt)

	require.Len(t, notifier.attached, 1)
	assert.Equal(t, "https://autopilot.example/hook", notifier.attached[0].WebhookURL)
	assert.Equal(t, int64(111), notifier.attached[0].StudentVKID)
	assert.Equal(t, int64(555), notifier.attached[0].TeacherVKID)
	assert.Equal(t, models.TeacherTypeCurator, notifier.attached[0].TeacherType)
	assert.Empty(t, notifier.alerts)
}

func TestEnrollStudentCapacityAlert(t *testing.T) {
	db := newMemDB()
	seedAttachedWorld(db)
	db.teacherProducts[0].MaxStudents = 1
	db.assignments = append(db.assignments, &models.TeacherAssignment{
		ID: 1, StudentProductID: 999, TeacherProductID: 50, AssignmentAt: time.Now(),
	})
	factory := newFakeFactory(db)
	notifier := &fakeNotifier{}
	svc := NewEnrollerService(factory, notifier, nil)

	_, err := svc.EnrollStudent(context.Background(), NewStudent{
		VKID: 222, SohoID: 901, Email: "second@example.com",
	}, []int64{100})
	require.NoError(t, err)

	require.Len(t, notifier.alerts, 1)
	alert := notifier.alerts[0]
	assert.Equal(t, 1, alert.MaxStudents)
	assert.Equal(t, int64(555), alert.TeacherVKID)
	assert.Equal(t, int64(10), alert.ProductID)
	assert.Equal(t, "Anna Petrova", alert.TeacherName)
}

func TestEnrollStudentReenrollAloneToAlone(t *testing.T) {
	db := newMemDB()
	seedAttachedWorld(db)
	db.offers = append(db.offers, &models.Offer{ID: 101, Name: "literature-alone", ProductID: 10, Cohort: 4})
	db.students = append(db.students, &models.Student{ID: 7, VKID: 111})
	expulsed := time.Now().Add(-24 * time.Hour)
	db.studentProducts = append(db.studentProducts, &models.StudentProduct{
		ID: 70, StudentID: 7, ProductID: 10, OfferID: 100, ExpulsionAt: &expulsed,
	})
	factory := newFakeFactory(db)
	notifier := &fakeNotifier{}
	svc := NewEnrollerService(factory, notifier, nil)

	sp, err := svc.EnrollStudent(context.Background(), NewStudent{
		VKID: 111, SohoID: 900, Email: "student@example.com",
	}, []int64{101})
	require.NoError(t, err)

	assert.Nil(t, sp.ExpulsionAt)
	assert.False(t, sp.TeacherState().IsAttached())
	assert.Nil(t, sp.TeacherProductID)
	assert.Nil(t, sp.TeacherType)
	assert.Equal(t, int64(101), sp.OfferID)
	assert.Empty(t, db.assignments)
	assert.Empty(t, notifier.attached)
}

func TestEnrollStudentReenrollAttachedToAlone(t *testing.T) {
	db := newMemDB()
	seedAttachedWorld(db)
	db.offers = append(db.offers, &models.Offer{ID: 101, Name: "literature-alone", ProductID: 10, Cohort: 4})
	db.students = append(db.students, &models.Student{ID: 7, VKID: 111})
	tpID := int64(50)
	db.studentProducts = append(db.studentProducts, &models.StudentProduct{
		ID: 70, StudentID: 7, ProductID: 10, OfferID: 100,
		TeacherProductID: &tpID, TeacherType: curator(),
	})
	db.assignments = append(db.assignments, &models.TeacherAssignment{
		ID: 1, StudentProductID: 70, TeacherProductID: 50, AssignmentAt: time.Now(),
	})
	factory := newFakeFactory(db)
	notifier := &fakeNotifier{}
	svc := NewEnrollerService(factory, notifier, nil)

	sp, err := svc.EnrollStudent(context.Background(), NewStudent{
		VKID: 111, SohoID: 900, Email: "student@example.com",
	}, []int64{101})
	require.NoError(t, err)

	assert.False(t, sp.TeacherState().IsAttached())
	assert.Nil(t, sp.TeacherProductID)
	assert.Nil(t, sp.TeacherType)
	assert.Equal(t, int64(101), sp.OfferID)
	require.Len(t, db.assignments, 1)
	assert.NotNil(t, db.assignments[0].RemovedAt)
	assert.Empty(t, notifier.attached)
}

func TestEnrollStudentReenrollSameAttachedOfferIsIdempotent(t *testing.T) {
	db := newMemDB()
	seedAttachedWorld(db)
	db.students = append(db.students, &models.Student{ID: 7, VKID: 111})
	tpID := int64(50)
	db.studentProducts = append(db.studentProducts, &models.StudentProduct{
		ID: 70, StudentID: 7, ProductID: 10, OfferID: 100,
		TeacherProductID: &tpID, TeacherType: curator(),
	})
	db.assignments = append(db.assignments, &models.TeacherAssignment{
		ID: 1, StudentProductID: 70, TeacherProductID: 50, AssignmentAt: time.Now(),
	})
	factory := newFakeFactory(db)
	svc := NewEnrollerService(factory, &fakeNotifier{}, nil)

	sp, err := svc.EnrollStudent(context.Background(), NewStudent{
		VKID: 111, SohoID: 900, Email: "student@example.com",
	}, []int64{100})
	require.NoError(t, err)

	assert.Len(t, db.studentProducts, 1)
	assert.Len(t, db.assignments, 1)
	assert.Nil(t, db.assignments[0].RemovedAt)
	require.NotNil(t, sp.TeacherProductID)
	assert.Equal(t, int64(50), *sp.TeacherProductID)
}

func TestEnrollStudentEmptyOffers(t *testing.T) {
	svc := NewEnrollerService(newFakeFactory(newMemDB()), &fakeNotifier{}, nil)
	_, err := svc.EnrollStudent(context.Background(), NewStudent{VKID: 1}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestEnrollStudentOfferNotFound(t *testing.T) {
	db := newMemDB()
	seedAttachedWorld(db)
	svc := NewEnrollerService(newFakeFactory(db), &fakeNotifier{}, nil)
	_, err := svc.EnrollStudent(context.Background(), NewStudent{
		VKID: 111, SohoID: 900, Email: "student@example.com",
	}, []int64{404})
	assert.ErrorIs(t, err, appErrors.ErrOfferNotFound)
}

func TestChangeTeacherForStudent(t *testing.T) {
	db := newMemDB()
	seedAttachedWorld(db)
	db.teachers = append(db.teachers, &models.Teacher{ID: 6, VKID: 666, FirstName: "Boris"})
	db.teacherProducts = append(db.teacherProducts, &models.TeacherProduct{
		ID: 51, TeacherID: 6, ProductID: 10, Type: models.TeacherTypeCurator,
		IsActive: true, MaxStudents: 10,
	})
	db.students = append(db.students, &models.Student{ID: 7, VKID: 111})
	oldTP := int64(50)
	db.studentProducts = append(db.studentProducts, &models.StudentProduct{
		ID: 70, StudentID: 7, ProductID: 10, OfferID: 100,
		TeacherProductID: &oldTP, TeacherType: curator(),
	})
	db.assignments = append(db.assignments, &models.TeacherAssignment{
		ID: 1, StudentProductID: 70, TeacherProductID: 50, AssignmentAt: time.Now().Add(-time.Hour),
	})
	factory := newFakeFactory(db)
	notifier := &fakeNotifier{}
	svc := NewEnrollerService(factory, notifier, nil)

	sp, err := svc.ChangeTeacherForStudent(context.Background(), 10, 111, 666)
	require.NoError(t, err)

	require.NotNil(t, sp.TeacherProductID)
	assert.Equal(t, int64(51), *sp.TeacherProductID)

	require.Len(t, db.assignments, 2)
	assert.NotNil(t, db.assignments[0].RemovedAt)
	assert.Equal(t, int64(51), db.assignments[1].TeacherProductID)
	assert.Nil(t, db.assignments[1].RemovedAt)

	require.Len(t, notifier.attached, 1)
	assert.Equal(t, int64(666), notifier.attached[0].TeacherVKID)
}

func TestGradeTeacher(t *testing.T) {
	db := newMemDB()
	seedAttachedWorld(db)
	db.teacherProducts[0].AverageGrade = 5
	db.teacherProducts[0].GradeCounter = 2
	db.students = append(db.students, &models.Student{ID: 7, VKID: 111})
	db.sohoAccounts = append(db.sohoAccounts, &models.SohoAccount{ID: 900, StudentID: 7})
	tpID := int64(50)
	db.studentProducts = append(db.studentProducts, &models.StudentProduct{
		ID: 70, StudentID: 7, ProductID: 10, OfferID: 100,
		TeacherProductID: &tpID, TeacherType: curator(),
	})
	factory := newFakeFactory(db)
	svc := NewEnrollerService(factory, &fakeNotifier{}, nil)

	err := svc.GradeTeacher(context.Background(), 900, 10, 2)
	require.NoError(t, err)
	require.True(t, factory.uow.committed)

	assert.InDelta(t, 4.0, db.teacherProducts[0].AverageGrade, 1e-9)
	assert.Equal(t, 3, db.teacherProducts[0].GradeCounter)

	sp := db.studentProducts[0]
	require.NotNil(t, sp.TeacherGrade)
	assert.Equal(t, 2, *sp.TeacherGrade)
	assert.NotNil(t, sp.TeacherGradedAt)
}

func TestGradeTeacherWithoutTeacher(t *testing.T) {
	db := newMemDB()
	seedAttachedWorld(db)
	db.students = append(db.students, &models.Student{ID: 7, VKID: 111})
	db.sohoAccounts = append(db.sohoAccounts, &models.SohoAccount{ID: 900, StudentID: 7})
	db.studentProducts = append(db.studentProducts, &models.StudentProduct{
		ID: 70, StudentID: 7, ProductID: 10, OfferID: 100,
	})
	svc := NewEnrollerService(newFakeFactory(db), &fakeNotifier{}, nil)

	err := svc.GradeTeacher(context.Background(), 900, 10, 4)
	assert.ErrorIs(t, err, appErrors.ErrStudentProductHasNotTeacher)
}

func TestChangeStudentVKID(t *testing.T) {
	db := newMemDB()
	db.students = append(db.students, &models.Student{ID: 7, VKID: 111})
	db.sohoAccounts = append(db.sohoAccounts, &models.SohoAccount{ID: 900, StudentID: 7})
	svc := NewEnrollerService(newFakeFactory(db), &fakeNotifier{}, nil)

	student, err := svc.ChangeStudentVKID(context.Background(), 900, 333)
	require.NoError(t, err)
	assert.Equal(t, int64(333), student.VKID)
}
