package util

import (
	"errors"
	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response is the uniform envelope returned by every endpoint.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err))
	InternalServerError(c)
}

// EngineError maps the engine's sentinel errors onto HTTP status codes.
// Policy violations come back as 403, state violations as 404/409.
func EngineError(c *gin.Context, err error) {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		BadRequest(c, ve.Error())
		return
	}

	switch err {
	case ErrTestNotFound, ErrAttemptNotFound, ErrUserNotFound, ErrReportNotFound:
		Error(c, http.StatusNotFound, err.Error())
	case ErrTestNotPublished, ErrOutsideWindow, ErrAttemptLimitReached, ErrPermissionDenied:
		Error(c, http.StatusForbidden, err.Error())
	case ErrAttemptAlreadySubmitted, ErrAttemptNotSubmitted, ErrRootAdminExists, ErrEmailRegistered:
		Error(c, http.StatusConflict, err.Error())
	case ErrQuestionNotInTest:
		Error(c, http.StatusBadRequest, err.Error())
	case ErrInvalidCredentials:
		Unauthorized(c)
	default:
		LogInternalError(c, err)
	}
}
