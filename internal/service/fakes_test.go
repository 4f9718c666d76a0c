package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/noah-isme/course-backoffice-api/internal/models"
	"github.com/noah-isme/course-backoffice-api/internal/repository"
)

// memDB is the shared in-memory state behind the fake stores.
type memDB struct {
	students        []*models.Student
	sohoAccounts    []*models.SohoAccount
	subjects        []*models.Subject
	products        []*models.Product
	offers          []*models.Offer
	teachers        []*models.Teacher
	teacherProducts []*models.TeacherProduct
	studentProducts []*models.StudentProduct
	assignments     []*models.TeacherAssignment
	reviewers       []models.Reviewer
	distributions   []*models.Distribution
	flowsBySohoID   map[int64]int64
	directory       map[int64]models.StudentDirectoryEntry

	nextID int64
}

func newMemDB() *memDB {
	return &memDB{flowsBySohoID: map[int64]int64{}, directory: map[int64]models.StudentDirectoryEntry{}}
}

func (m *memDB) id() int64 {
	m.nextID++
	return m.nextID
}

type fakeUoW struct {
	db         *memDB
	committed  bool
	rolledBack bool
}

func (u *fakeUoW) Students() repository.StudentStore          { return &fakeStudents{u.db} }
func (u *fakeUoW) SohoAccounts() repository.SohoAccountStore  { return &fakeSohoAccounts{u.db} }
func (u *fakeUoW) Subjects() repository.SubjectStore          { return &fakeSubjects{u.db} }
func (u *fakeUoW) Products() repository.ProductStore          { return &fakeProducts{u.db} }
func (u *fakeUoW) Offers() repository.OfferStore              { return &fakeOffers{u.db} }
func (u *fakeUoW) Teachers() repository.TeacherStore          { return &fakeTeachers{u.db} }
func (u *fakeUoW) TeacherProducts() repository.TeacherProductStore {
	return &fakeTeacherProducts{u.db}
}
func (u *fakeUoW) StudentProducts() repository.StudentProductStore {
	return &fakeStudentProducts{u.db}
}
func (u *fakeUoW) Flows() repository.FlowStore { return &fakeFlows{u.db} }
func (u *fakeUoW) TeacherAssignments() repository.TeacherAssignmentStore {
	return &fakeAssignments{u.db}
}
func (u *fakeUoW) Reviewers() repository.ReviewerStore         { return &fakeReviewers{u.db} }
func (u *fakeUoW) Distributions() repository.DistributionStore { return &fakeDistributions{u.db} }

func (u *fakeUoW) Commit() error {
	u.committed = true
	return nil
}

func (u *fakeUoW) Rollback() error {
	if !u.committed {
		u.rolledBack = true
	}
	return nil
}

type fakeFactory struct {
	uow *fakeUoW
}

func newFakeFactory(db *memDB) *fakeFactory {
	return &fakeFactory{uow: &fakeUoW{db: db}}
}

func (f *fakeFactory) Begin(ctx context.Context) (repository.UnitOfWork, error) {
	return f.uow, nil
}

type fakeStudents struct{ db *memDB }

func (s *fakeStudents) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	for _, st := range s.db.students {
		if st.ID == id {
			return st, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeStudents) FindByVKID(ctx context.Context, vkID int64) (*models.Student, error) {
	for _, st := range s.db.students {
		if st.VKID == vkID {
			return st, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeStudents) Create(ctx context.Context, student *models.Student) error {
	student.ID = s.db.id()
	student.CreatedAt = time.Now()
	s.db.students = append(s.db.students, student)
	return nil
}

func (s *fakeStudents) UpdateVKID(ctx context.Context, id, vkID int64) (*models.Student, error) {
	for _, st := range s.db.students {
		if st.ID == id {
			st.VKID = vkID
			return st, nil
		}
	}
	return nil, sql.ErrNoRows
}

type fakeSohoAccounts struct{ db *memDB }

func (s *fakeSohoAccounts) FindByID(ctx context.Context, id int64) (*models.SohoAccount, error) {
	for _, a := range s.db.sohoAccounts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeSohoAccounts) Create(ctx context.Context, account *models.SohoAccount) error {
	s.db.sohoAccounts = append(s.db.sohoAccounts, account)
	return nil
}

type fakeSubjects struct{ db *memDB }

func (s *fakeSubjects) FindByID(ctx context.Context, id int64) (*models.Subject, error) {
	for _, subj := range s.db.subjects {
		if subj.ID == id {
			return subj, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeSubjects) List(ctx context.Context) ([]models.Subject, error) {
	out := make([]models.Subject, 0, len(s.db.subjects))
	for _, subj := range s.db.subjects {
		out = append(out, *subj)
	}
	return out, nil
}

func (s *fakeSubjects) UpdateProperties(ctx context.Context, id int64, props models.SubjectProperties) error {
	for _, subj := range s.db.subjects {
		if subj.ID == id {
			subj.Properties = props
			return nil
		}
	}
	return sql.ErrNoRows
}

type fakeProducts struct{ db *memDB }

func (s *fakeProducts) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	for _, p := range s.db.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeProducts) List(ctx context.Context) ([]models.Product, error) {
	out := make([]models.Product, 0, len(s.db.products))
	for _, p := range s.db.products {
		out = append(out, *p)
	}
	return out, nil
}

type fakeOffers struct{ db *memDB }

func (s *fakeOffers) FindByID(ctx context.Context, id int64) (*models.Offer, error) {
	for _, o := range s.db.offers {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, sql.ErrNoRows
}

type fakeTeachers struct{ db *memDB }

func (s *fakeTeachers) FindByID(ctx context.Context, id int64) (*models.Teacher, error) {
	for _, t := range s.db.teachers {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeTeachers) FindByVKID(ctx context.Context, vkID int64) (*models.Teacher, error) {
	for _, t := range s.db.teachers {
		if t.VKID == vkID {
			return t, nil
		}
	}
	return nil, sql.ErrNoRows
}

type fakeTeacherProducts struct{ db *memDB }

func (s *fakeTeacherProducts) FindByID(ctx context.Context, id int64) (*models.TeacherProduct, error) {
	for _, tp := range s.db.teacherProducts {
		if tp.ID == id {
			return tp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeTeacherProducts) FindByTeacherAndProduct(ctx context.Context, teacherID, productID int64) (*models.TeacherProduct, error) {
	for _, tp := range s.db.teacherProducts {
		if tp.TeacherID == teacherID && tp.ProductID == productID {
			return tp, nil
		}
	}
	return nil, sql.ErrNoRows
}

// GetForEnroll mirrors the SQL ordering: best average grade first, lower id
// wins ties. The flow constraint is ignored, matching the fallback path.
func (s *fakeTeacherProducts) GetForEnroll(ctx context.Context, productID int64, teacherType models.TeacherType, flowID int64) (*models.TeacherProduct, error) {
	var best *models.TeacherProduct
	for _, tp := range s.db.teacherProducts {
		if tp.ProductID != productID || tp.Type != teacherType || !tp.IsActive || tp.MaxStudents <= 0 {
			continue
		}
		if best == nil || tp.AverageGrade > best.AverageGrade ||
			(tp.AverageGrade == best.AverageGrade && tp.ID < best.ID) {
			best = tp
		}
	}
	if best == nil {
		return nil, sql.ErrNoRows
	}
	return best, nil
}

func (s *fakeTeacherProducts) CountLiveAssignments(ctx context.Context, id int64) (int, error) {
	count := 0
	for _, a := range s.db.assignments {
		if a.TeacherProductID == id && a.RemovedAt == nil {
			count++
		}
	}
	return count, nil
}

func (s *fakeTeacherProducts) UpdateGrade(ctx context.Context, id int64, averageGrade float64, gradeCounter int) error {
	for _, tp := range s.db.teacherProducts {
		if tp.ID == id {
			tp.AverageGrade = averageGrade
			tp.GradeCounter = gradeCounter
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *fakeTeacherProducts) Stats(ctx context.Context, id int64) (*models.TeacherProductStats, error) {
	tp, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.TeacherProductStats{TeacherProduct: *tp}, nil
}

type fakeStudentProducts struct{ db *memDB }

func (s *fakeStudentProducts) FindByID(ctx context.Context, id int64) (*models.StudentProduct, error) {
	for _, sp := range s.db.studentProducts {
		if sp.ID == id {
			return sp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeStudentProducts) FindByStudentAndProduct(ctx context.Context, studentID, productID int64) (*models.StudentProduct, error) {
	for _, sp := range s.db.studentProducts {
		if sp.StudentID == studentID && sp.ProductID == productID {
			return sp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeStudentProducts) Create(ctx context.Context, sp *models.StudentProduct) error {
	sp.ID = s.db.id()
	sp.CreatedAt = time.Now()
	s.db.studentProducts = append(s.db.studentProducts, sp)
	return nil
}

func (s *fakeStudentProducts) Update(ctx context.Context, sp *models.StudentProduct) error {
	for i, existing := range s.db.studentProducts {
		if existing.ID == sp.ID {
			s.db.studentProducts[i] = sp
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *fakeStudentProducts) LoadDirectory(ctx context.Context, subjectID int64, vkIDs []int64) (map[int64]models.StudentDirectoryEntry, error) {
	out := make(map[int64]models.StudentDirectoryEntry, len(vkIDs))
	for _, vkID := range vkIDs {
		if entry, ok := s.db.directory[vkID]; ok {
			out[vkID] = entry
		}
	}
	return out, nil
}

type fakeFlows struct{ db *memDB }

func (s *fakeFlows) FindFlowIDBySohoID(ctx context.Context, sohoID int64) (int64, error) {
	return s.db.flowsBySohoID[sohoID], nil
}

type fakeAssignments struct{ db *memDB }

func (s *fakeAssignments) Create(ctx context.Context, assignment *models.TeacherAssignment) error {
	assignment.ID = s.db.id()
	if assignment.AssignmentAt.IsZero() {
		assignment.AssignmentAt = time.Now()
	}
	s.db.assignments = append(s.db.assignments, assignment)
	return nil
}

func (s *fakeAssignments) ExpulseStudent(ctx context.Context, studentProductID, teacherProductID int64) error {
	if !s.closeLive(studentProductID, teacherProductID) {
		return sql.ErrNoRows
	}
	return nil
}

func (s *fakeAssignments) ExpulseStudentSafely(ctx context.Context, studentProductID, teacherProductID int64) error {
	s.closeLive(studentProductID, teacherProductID)
	return nil
}

func (s *fakeAssignments) closeLive(studentProductID, teacherProductID int64) bool {
	for _, a := range s.db.assignments {
		if a.StudentProductID == studentProductID && a.TeacherProductID == teacherProductID && a.RemovedAt == nil {
			now := time.Now()
			a.RemovedAt = &now
			return true
		}
	}
	return false
}

func (s *fakeAssignments) FindLastTeacherProductID(ctx context.Context, studentProductID int64) (*int64, error) {
	var last *models.TeacherAssignment
	for _, a := range s.db.assignments {
		if a.StudentProductID != studentProductID {
			continue
		}
		if last == nil || a.AssignmentAt.After(last.AssignmentAt) {
			last = a
		}
	}
	if last == nil {
		return nil, nil
	}
	id := last.TeacherProductID
	return &id, nil
}

type fakeReviewers struct{ db *memDB }

func (s *fakeReviewers) ListActiveBySubject(ctx context.Context, subjectID int64) ([]models.Reviewer, error) {
	out := make([]models.Reviewer, 0, len(s.db.reviewers))
	for _, r := range s.db.reviewers {
		if r.SubjectID == subjectID && r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeDistributions struct{ db *memDB }

func (s *fakeDistributions) Create(ctx context.Context, distribution *models.Distribution) error {
	distribution.ID = s.db.id()
	distribution.CreatedAt = time.Now()
	s.db.distributions = append(s.db.distributions, distribution)
	return nil
}

func (s *fakeDistributions) FindByID(ctx context.Context, id int64) (*models.Distribution, error) {
	for _, d := range s.db.distributions {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, sql.ErrNoRows
}

// fakeNotifier records fired side-effects.
type fakeNotifier struct {
	attached []TeacherAttachedEvent
	alerts   []CapacityAlertEvent
}

func (n *fakeNotifier) TeacherAttached(event TeacherAttachedEvent) {
	n.attached = append(n.attached, event)
}

func (n *fakeNotifier) CapacityAlert(event CapacityAlertEvent) {
	n.alerts = append(n.alerts, event)
}
