package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// UnitOfWork scopes one logical operation to a single database transaction.
// All stores obtained from it share the transactional view. An operation
// either commits as a whole or leaves the store untouched; stores never
// commit on their own.
type UnitOfWork interface {
	Students() StudentStore
	SohoAccounts() SohoAccountStore
	Subjects() SubjectStore
	Products() ProductStore
	Offers() OfferStore
	Teachers() TeacherStore
	TeacherProducts() TeacherProductStore
	StudentProducts() StudentProductStore
	Flows() FlowStore
	TeacherAssignments() TeacherAssignmentStore
	Reviewers() ReviewerStore
	Distributions() DistributionStore

	Commit() error
	Rollback() error
}

// Factory opens units of work.
type Factory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}

// NewFactory builds a Factory over a database pool.
func NewFactory(db *sqlx.DB) Factory {
	return &sqlFactory{db: db}
}

type sqlFactory struct {
	db *sqlx.DB
}

func (f *sqlFactory) Begin(ctx context.Context) (UnitOfWork, error) {
	tx, err := f.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &sqlUnitOfWork{
		tx:              tx,
		students:        NewStudentRepository(tx),
		sohoAccounts:    NewSohoAccountRepository(tx),
		subjects:        NewSubjectRepository(tx),
		products:        NewProductRepository(tx),
		offers:          NewOfferRepository(tx),
		teachers:        NewTeacherRepository(tx),
		teacherProducts: NewTeacherProductRepository(tx),
		studentProducts: NewStudentProductRepository(tx),
		flows:           NewFlowRepository(tx),
		assignments:     NewTeacherAssignmentRepository(tx),
		reviewers:       NewReviewerRepository(tx),
		distributions:   NewDistributionRepository(tx),
	}, nil
}

type sqlUnitOfWork struct {
	tx       *sqlx.Tx
	finished bool

	students        *StudentRepository
	sohoAccounts    *SohoAccountRepository
	subjects        *SubjectRepository
	products        *ProductRepository
	offers          *OfferRepository
	teachers        *TeacherRepository
	teacherProducts *TeacherProductRepository
	studentProducts *StudentProductRepository
	flows           *FlowRepository
	assignments     *TeacherAssignmentRepository
	reviewers       *ReviewerRepository
	distributions   *DistributionRepository
}

func (u *sqlUnitOfWork) Students() StudentStore                     { return u.students }
func (u *sqlUnitOfWork) SohoAccounts() SohoAccountStore             { return u.sohoAccounts }
func (u *sqlUnitOfWork) Subjects() SubjectStore                     { return u.subjects }
func (u *sqlUnitOfWork) Products() ProductStore                     { return u.products }
func (u *sqlUnitOfWork) Offers() OfferStore                         { return u.offers }
func (u *sqlUnitOfWork) Teachers() TeacherStore                     { return u.teachers }
func (u *sqlUnitOfWork) TeacherProducts() TeacherProductStore       { return u.teacherProducts }
func (u *sqlUnitOfWork) StudentProducts() StudentProductStore       { return u.studentProducts }
func (u *sqlUnitOfWork) Flows() FlowStore                           { return u.flows }
func (u *sqlUnitOfWork) TeacherAssignments() TeacherAssignmentStore { return u.assignments }
func (u *sqlUnitOfWork) Reviewers() ReviewerStore                   { return u.reviewers }
func (u *sqlUnitOfWork) Distributions() DistributionStore           { return u.distributions }

// Commit flushes the transaction.
func (u *sqlUnitOfWork) Commit() error {
	if u.finished {
		return fmt.Errorf("unit of work already finished")
	}
	u.finished = true
	if err := u.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Rollback discards the transaction. Calling it after Commit is a no-op so
// it can sit safely in a defer.
func (u *sqlUnitOfWork) Rollback() error {
	if u.finished {
		return nil
	}
	u.finished = true
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}
