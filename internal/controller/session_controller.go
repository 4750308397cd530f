package controller

import (
	"exam_proctor_backend/internal/service"
	"exam_proctor_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	Session *service.SessionService
}

func NewSessionController(session *service.SessionService) *SessionController {
	return &SessionController{Session: session}
}

// IncrementSignal godoc
// @Summary Record pre-classified proctoring signals for an attempt
// @Description Adds delta occurrences of one signal kind. Counters only move up and freeze after submission.
// @Tags session
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Attempt ID"
// @Param request body service.SignalRequest true "Signal kind and count"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/attempts/{id}/session/signals [post]
func (ctl *SessionController) IncrementSignal(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req service.SignalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}
	if req.Delta == 0 {
		req.Delta = 1
	}

	report, err := ctl.Session.IncrementSignal(claims.UserID, util.MustParseUint(c.Param("id")), req.Kind, req.Delta)
	if err != nil {
		util.EngineError(c, err)
		return
	}
	util.Success(c, report)
}

// GetReport godoc
// @Summary Get the session report of an attempt
// @Tags session
// @Produce json
// @Security BearerAuth
// @Param id path int true "Attempt ID"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/session [get]
func (ctl *SessionController) GetReport(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	report, err := ctl.Session.GetReport(claims, util.MustParseUint(c.Param("id")))
	if err != nil {
		util.EngineError(c, err)
		return
	}
	util.Success(c, report)
}

// AttachEvidence godoc
// @Summary Attach a camera frame to an in-progress attempt
// @Tags session
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Attempt ID"
// @Param file formData file true "Image frame"
// @Success 201 {object} util.Response
// @Router /api/attempts/{id}/session/evidence [post]
func (ctl *SessionController) AttachEvidence(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		util.BadRequest(c, "file is required")
		return
	}

	file, err := header.Open()
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	defer file.Close()

	url, err := ctl.Session.AttachEvidence(
		c.Request.Context(),
		claims.UserID,
		util.MustParseUint(c.Param("id")),
		header.Filename,
		file,
		header.Size,
		header.Header.Get("Content-Type"),
	)
	if err != nil {
		util.EngineError(c, err)
		return
	}
	util.Created(c, gin.H{"url": url})
}
