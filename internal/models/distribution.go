package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// HomeworkError classifies why a homework could not be planned.
type HomeworkError string

const (
	HomeworkWithoutVKID     HomeworkError = "HOMEWORK_WITHOUT_VK_ID"
	StudentWithVKIDNotFound HomeworkError = "STUDENT_WITH_VK_ID_NOT_FOUND"
	StudentWasExpulsed      HomeworkError = "STUDENT_WAS_EXPULSED"
	StackOverflow           HomeworkError = "STACK_OVERFLOW"
)

// SohoHomework is one homework submission fetched from the external
// homework API.
type SohoHomework struct {
	StudentHomeworkID int64     `json:"student_homework_id"`
	StudentSohoID     int64     `json:"student_soho_id"`
	SentToReviewAt    time.Time `json:"sent_to_review_at"`
	ChatURL           string    `json:"chat_url"`
	StudentVKID       *int64    `json:"student_vk_id,omitempty"`
}

// StudentHomework is a submission validated against the student directory
// and ready to be packed into a reviewer slot. HomeworkID and
// SentToReviewAt keep the upstream identity so an overflowed item loses
// nothing on its way into the error tail.
type StudentHomework struct {
	HomeworkID       int64     `json:"student_homework_id"`
	StudentName      string    `json:"student_name"`
	StudentVKID      int64     `json:"student_vk_id"`
	StudentSohoID    int64     `json:"student_soho_id"`
	SubmissionURL    string    `json:"submission_url"`
	SentToReviewAt   time.Time `json:"sent_to_review_at"`
	TeacherProductID *int64    `json:"teacher_product_id,omitempty"`
}

// ErrorHomework records a submission excluded from the plan. StudentName
// is only known for homeworks that passed directory validation.
type ErrorHomework struct {
	Homework    SohoHomework  `json:"homework"`
	StudentName string        `json:"student_name,omitempty"`
	Message     HomeworkError `json:"error_message"`
}

// ReviewerPlan is the per-reviewer outcome of one distribution run. Actual
// is the main-phase capacity granted on top of the minimum-phase items.
type ReviewerPlan struct {
	Reviewer Reviewer          `json:"reviewer"`
	Current  []StudentHomework `json:"current"`
	Actual   int               `json:"actual"`
}

// DistributionSnapshot is the persisted body of one distribution run.
type DistributionSnapshot struct {
	Name           string         `json:"name"`
	CreatedAt      time.Time      `json:"created_at"`
	FolderID       string         `json:"folder_id"`
	FolderURL      string         `json:"folder_url,omitempty"`
	Reviewers      []ReviewerPlan `json:"reviewers"`
	ErrorHomeworks []ErrorHomework `json:"error_homeworks"`
}

// Distribution is the stored snapshot row of one distribution run.
type Distribution struct {
	ID        int64          `db:"id" json:"id"`
	SubjectID int64          `db:"subject_id" json:"subject_id"`
	Data      types.JSONText `db:"data" json:"data"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// HomeworkFilter narrows one requested homework group by flow.
type HomeworkFilter struct {
	FlowID *int64 `json:"flow_id,omitempty"`
}

// DistributionHomework requests one homework group from the external API.
type DistributionHomework struct {
	HomeworkID int64            `json:"homework_id" validate:"required"`
	Filters    []HomeworkFilter `json:"filters,omitempty"`
}

// DistributionParams is the input of one distribution run.
type DistributionParams struct {
	Name       string                 `json:"name" validate:"required"`
	ProductIDs []int64                `json:"product_ids" validate:"required,min=1"`
	Homeworks  []DistributionHomework `json:"homeworks" validate:"required,min=1,dive"`
}

// StudentDirectoryEntry is the validation view of one student: name,
// current teacher product if any, and the expulsion flag.
type StudentDirectoryEntry struct {
	VKID             int64  `db:"vk_id" json:"vk_id"`
	Name             string `db:"name" json:"name"`
	TeacherProductID *int64 `db:"teacher_product_id" json:"teacher_product_id,omitempty"`
	Expulsed         bool   `db:"expulsed" json:"expulsed"`
}
