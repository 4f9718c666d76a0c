package repository

import (
	"errors"
	"strings"

	"github.com/lib/pq"

	appErrors "github.com/noah-isme/course-backoffice-api/pkg/errors"
)

const uniqueViolation = "23505"

// constraintErrors maps violated unique constraints to domain conflicts.
// Anything not listed here surfaces as an internal storage error.
var constraintErrors = map[string]*appErrors.Error{
	"students_vk_id_key":                         appErrors.ErrStudentVKIDAlreadyUsed,
	"users_username_key":                         appErrors.ErrUserAlreadyExists,
	"student_products_student_id_product_id_key": appErrors.ErrStudentAlreadyEnrolled,
}

// prefixColumns qualifies a comma-separated column list with a table alias.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return strings.Join(parts, ", ")
}

// translateConstraint rewrites postgres unique-violation errors into the
// typed conflict taxonomy, leaving other errors untouched.
func translateConstraint(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != uniqueViolation {
		return err
	}
	if domainErr, ok := constraintErrors[pqErr.Constraint]; ok {
		return appErrors.Wrap(err, domainErr.Code, domainErr.Status, domainErr.Message)
	}
	return err
}
