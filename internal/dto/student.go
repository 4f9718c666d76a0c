package dto

import (
	"strconv"
	"strings"
)

// EnrollStudentPayload is the student block of an enrollment request.
// RawSohoFlowID arrives as "<offer_ids>:<flow_ids>", both sides comma
// separated; only the first flow id is meaningful.
type EnrollStudentPayload struct {
	VKID          int64  `json:"vk_id" binding:"required"`
	SohoID        int64  `json:"soho_id" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	RawSohoFlowID string `json:"raw_soho_flow_id"`
}

// SohoFlowID parses the first flow id out of the raw pair. Returns 0 when
// the field is empty or malformed.
func (p EnrollStudentPayload) SohoFlowID() int64 {
	parts := strings.SplitN(p.RawSohoFlowID, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	return firstInt(parts[1])
}

// SohoOfferID parses the first offer id out of the raw pair.
func (p EnrollStudentPayload) SohoOfferID() int64 {
	parts := strings.SplitN(p.RawSohoFlowID, ":", 2)
	if len(parts) == 0 {
		return 0
	}
	return firstInt(parts[0])
}

func firstInt(csv string) int64 {
	head := strings.TrimSpace(strings.SplitN(csv, ",", 2)[0])
	n, err := strconv.ParseInt(head, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// EnrollStudentRequest is the body of POST /v1/students.
type EnrollStudentRequest struct {
	Student  EnrollStudentPayload `json:"student" binding:"required"`
	OfferIDs []int64              `json:"offer_ids" binding:"required,min=1"`
}

// ExpulseStudentRequest is the body of POST /v1/students/expulse.
type ExpulseStudentRequest struct {
	VKID      int64 `json:"vk_id" binding:"required"`
	ProductID int64 `json:"product_id" binding:"required"`
}

// ChangeTeacherRequest is the body of POST /v1/students/change-teacher.
type ChangeTeacherRequest struct {
	StudentVKID int64 `json:"student_vk_id" binding:"required"`
	TeacherVKID int64 `json:"teacher_vk_id" binding:"required"`
	ProductID   int64 `json:"product_id" binding:"required"`
}

// ChangeVKIDRequest is the body of POST /v1/students/soho/{soho_id}/change-vk-id.
type ChangeVKIDRequest struct {
	VKID int64 `json:"vk_id" binding:"required"`
}

// GradeTeacherRequest is the body of POST /v1/students/soho/{soho_id}/grade-teacher.
type GradeTeacherRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Grade     int   `json:"grade" binding:"min=0,max=5"`
}

// LoginRequest is the body of POST /v1/auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token string `json:"token"`
}
