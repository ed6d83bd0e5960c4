package util

import (
	"errors"
	"net/http"

	"jobsite-timeclock/internal/apperr"

	"github.com/gin-gonic/gin"
)

// Response is the data object of a success envelope.
type Response map[string]interface{}

// Business codes carried next to the HTTP status.
const (
	CodeOK           = 0
	CodeInvalidParam = 40001
	CodeAuth         = 40101
	CodeForbidden    = 40301
	CodeNotFound     = 40401
	CodeConflict     = 40901
	CodeNotClosed    = 40902
	CodeOutOfRange   = 42201
	CodeServerErr    = 50001
)

// Success writes {code: 0, data: data}.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// Error writes {code, message} with the given status.
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
	})
}

// Fail maps a classified error onto status, business code and message.
// Storage failures never leak their cause.
func Fail(c *gin.Context, err error) {
	status, code := StatusOf(err)
	body := gin.H{"code": code, "message": "internal error"}

	var ae *apperr.Error
	if errors.As(err, &ae) {
		body["reason"] = ae.Code
		if ae.Kind != apperr.KindStorage {
			body["message"] = ae.Message
		}
	}
	_ = c.Error(err)
	c.JSON(status, body)
}

// StatusOf returns the HTTP status and business code for err.
func StatusOf(err error) (int, int) {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return http.StatusNotFound, CodeNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden, CodeForbidden
	case apperr.KindConflict:
		return http.StatusConflict, CodeConflict
	case apperr.KindNotClosed:
		return http.StatusConflict, CodeNotClosed
	case apperr.KindOutOfRange:
		return http.StatusUnprocessableEntity, CodeOutOfRange
	case apperr.KindInvalidInput:
		return http.StatusBadRequest, CodeInvalidParam
	default:
		return http.StatusInternalServerError, CodeServerErr
	}
}
