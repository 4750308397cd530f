package controller

import (
	"exam_proctor_backend/internal/service"
	"exam_proctor_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	Attempts *service.AttemptService
}

func NewAttemptController(attempts *service.AttemptService) *AttemptController {
	return &AttemptController{Attempts: attempts}
}

// StartAttempt godoc
// @Summary Start a new attempt on a test
// @Description Rejects when the test is unpublished, outside its window, or the attempt budget is used up.
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Success 201 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/tests/{id}/attempts/start [post]
func (ctl *AttemptController) StartAttempt(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	attempt, report, err := ctl.Attempts.StartAttempt(claims.UserID, util.MustParseUint(c.Param("id")), time.Now())
	if err != nil {
		util.EngineError(c, err)
		return
	}
	util.Created(c, gin.H{"attempt": attempt, "sessionReport": report})
}

// RecordAnswer godoc
// @Summary Record or replace the answer to one question
// @Description Upserts the latest answer text. No correctness is computed before submission.
// @Tags attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Attempt ID"
// @Param request body service.SubmitAnswerRequest true "Answer"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/attempts/{id}/answers [post]
func (ctl *AttemptController) RecordAnswer(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req service.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	if err := ctl.Attempts.RecordAnswer(claims.UserID, util.MustParseUint(c.Param("id")), req.QuestionID, req.AnswerText); err != nil {
		util.EngineError(c, err)
		return
	}
	util.Success(c, nil)
}

// SubmitAttempt godoc
// @Summary Submit an attempt for scoring
// @Description Scores every question, freezes the attempt and finalizes the session verdict. A second submit returns 409.
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Attempt ID"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/attempts/{id}/submit [post]
func (ctl *AttemptController) SubmitAttempt(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	attempt, err := ctl.Attempts.SubmitAttempt(claims.UserID, util.MustParseUint(c.Param("id")), time.Now())
	if err != nil {
		util.EngineError(c, err)
		return
	}
	util.Success(c, attempt)
}

// GetResult godoc
// @Summary Get the result of a submitted attempt
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Attempt ID"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/attempts/{id}/result [get]
func (ctl *AttemptController) GetResult(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	result, err := ctl.Attempts.GetResult(claims, util.MustParseUint(c.Param("id")))
	if err != nil {
		util.EngineError(c, err)
		return
	}
	util.Success(c, result)
}

// GetAnswers godoc
// @Summary Get the scored answers of a submitted attempt
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Attempt ID"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/answers [get]
func (ctl *AttemptController) GetAnswers(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	answers, err := ctl.Attempts.GetAnswers(claims, util.MustParseUint(c.Param("id")))
	if err != nil {
		util.EngineError(c, err)
		return
	}
	util.Success(c, answers)
}

// MyAttempts godoc
// @Summary List the caller's attempts
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/attempts/my [get]
func (ctl *AttemptController) MyAttempts(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	attempts, err := ctl.Attempts.GetAttemptsForUser(claims.UserID)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, attempts)
}

// TestAttempts godoc
// @Summary List every attempt on a test
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Success 200 {object} util.Response
// @Router /api/admin/tests/{id}/attempts [get]
func (ctl *AttemptController) TestAttempts(c *gin.Context) {
	attempts, err := ctl.Attempts.GetAttemptsForTest(util.MustParseUint(c.Param("id")))
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, attempts)
}

// TestResults godoc
// @Summary List results of every submitted attempt on a test
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Success 200 {object} util.Response
// @Router /api/admin/tests/{id}/results [get]
func (ctl *AttemptController) TestResults(c *gin.Context) {
	results, err := ctl.Attempts.ListResultsForTest(util.MustParseUint(c.Param("id")))
	if err != nil {
		util.EngineError(c, err)
		return
	}
	util.Success(c, results)
}
