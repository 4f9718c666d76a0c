package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-backoffice-api/pkg/response"
)

func testContext(t *testing.T, method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	return envelope.Error.Code
}

func TestStudentHandlerEnrollInvalidBody(t *testing.T) {
	h := NewStudentHandler(nil, nil, nil)
	c, w := testContext(t, http.MethodPost, "/v1/students", []byte(`{"student":{}}`))

	h.Enroll(c)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, w))
}

func TestStudentHandlerEnrollRequiresOffers(t *testing.T) {
	h := NewStudentHandler(nil, nil, nil)
	body := []byte(`{"student":{"vk_id":111,"soho_id":900,"email":"student@example.com"},"offer_ids":[]}`)
	c, w := testContext(t, http.MethodPost, "/v1/students", body)

	h.Enroll(c)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestStudentHandlerExpulseInvalidBody(t *testing.T) {
	h := NewStudentHandler(nil, nil, nil)
	c, w := testContext(t, http.MethodPost, "/v1/students/expulse", []byte(`{"vk_id":0}`))

	h.Expulse(c)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestStudentHandlerChangeVKIDBadSohoID(t *testing.T) {
	h := NewStudentHandler(nil, nil, nil)
	c, w := testContext(t, http.MethodPost, "/v1/students/soho/abc/change-vk-id", []byte(`{"vk_id":333}`))
	c.Params = gin.Params{{Key: "soho_id", Value: "abc"}}

	h.ChangeVKID(c)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestStudentHandlerGradeTeacherOutOfRange(t *testing.T) {
	h := NewStudentHandler(nil, nil, nil)
	c, w := testContext(t, http.MethodPost, "/v1/students/soho/900/grade-teacher", []byte(`{"product_id":10,"grade":7}`))
	c.Params = gin.Params{{Key: "soho_id", Value: "900"}}

	h.GradeTeacher(c)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestStudentHandlerGetBadID(t *testing.T) {
	h := NewStudentHandler(nil, nil, nil)
	c, w := testContext(t, http.MethodGet, "/v1/students/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	h.Get(c)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
