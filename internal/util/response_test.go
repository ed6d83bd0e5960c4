package util

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"jobsite-timeclock/internal/apperr"

	"github.com/gin-gonic/gin"
)

func TestStatusOf(t *testing.T) {
	testCases := []struct {
		err    error
		status int
		code   int
	}{
		{apperr.ErrEntryNotFound, http.StatusNotFound, CodeNotFound},
		{apperr.ErrInvalidToken, http.StatusNotFound, CodeNotFound},
		{apperr.ErrForbidden, http.StatusForbidden, CodeForbidden},
		{apperr.ErrAlreadyClockedIn, http.StatusConflict, CodeConflict},
		{apperr.ErrNotClosed, http.StatusConflict, CodeNotClosed},
		{apperr.ErrOutOfRange, http.StatusUnprocessableEntity, CodeOutOfRange},
		{apperr.ErrInvalidRadius, http.StatusBadRequest, CodeInvalidParam},
		{errors.New("boom"), http.StatusInternalServerError, CodeServerErr},
	}

	for _, tc := range testCases {
		status, code := StatusOf(tc.err)
		if status != tc.status || code != tc.code {
			t.Errorf("StatusOf(%v) = %d, %d; want %d, %d", tc.err, status, code, tc.status, tc.code)
		}
	}
}

func TestFail_HidesStorageCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Fail(c, apperr.Storage(errors.New("disk on fire")))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["message"] != "internal error" || body["reason"] != apperr.ErrStorage.Code {
		t.Errorf("body = %v", body)
	}
}
