package controller

import (
	"exam_proctor_backend/internal/service"
	"exam_proctor_backend/internal/util"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type TestController struct {
	Tests *service.TestService
}

func NewTestController(tests *service.TestService) *TestController {
	return &TestController{Tests: tests}
}

// CreateTest godoc
// @Summary Create a test
// @Tags tests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.TestRequest true "Test details"
// @Success 201 {object} util.Response
// @Router /api/admin/tests [post]
func (ctl *TestController) CreateTest(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req service.TestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	test, err := ctl.Tests.CreateTest(claims.UserID, req)
	if err != nil {
		util.BadRequest(c, err.Error())
		return
	}
	util.Created(c, test)
}

// UpdateTest godoc
// @Summary Update a test
// @Tags tests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Param request body service.TestRequest true "Test details"
// @Success 200 {object} util.Response
// @Router /api/admin/tests/{id} [put]
func (ctl *TestController) UpdateTest(c *gin.Context) {
	var req service.TestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	test, err := ctl.Tests.UpdateTest(util.MustParseUint(c.Param("id")), req)
	if err != nil {
		util.EngineError(c, err)
		return
	}
	util.Success(c, test)
}

// DeleteTest godoc
// @Summary Delete a test
// @Tags tests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Success 200 {object} util.Response
// @Router /api/admin/tests/{id} [delete]
func (ctl *TestController) DeleteTest(c *gin.Context) {
	if err := ctl.Tests.DeleteTest(util.MustParseUint(c.Param("id"))); err != nil {
		util.EngineError(c, err)
		return
	}
	util.Success(c, nil)
}

// GetTest godoc
// @Summary Get one test
// @Tags tests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Success 200 {object} util.Response
// @Router /api/admin/tests/{id} [get]
func (ctl *TestController) GetTest(c *gin.Context) {
	test, err := ctl.Tests.GetTest(util.MustParseUint(c.Param("id")))
	if err != nil {
		util.EngineError(c, err)
		return
	}
	util.Success(c, test)
}

// ListTests godoc
// @Summary List all tests
// @Tags tests
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} util.Response
// @Router /api/admin/tests [get]
func (ctl *TestController) ListTests(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	tests, total, err := ctl.Tests.ListTests(page, limit)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, gin.H{"tests": tests, "total": total, "page": page, "limit": limit})
}

// PublishTest godoc
// @Summary Publish or unpublish a test
// @Description Publishing requires a valid window and at least one question.
// @Tags tests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Param request body controller.PublishRequest true "Publish flag"
// @Success 200 {object} util.Response
// @Router /api/admin/tests/{id}/publish [post]
func (ctl *TestController) PublishTest(c *gin.Context) {
	var req PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	test, err := ctl.Tests.PublishTest(util.MustParseUint(c.Param("id")), req.Published)
	if err != nil {
		util.EngineError(c, err)
		return
	}
	util.Success(c, test)
}

type PublishRequest struct {
	Published bool `json:"published"`
}

// AddQuestion godoc
// @Summary Add a question to a test
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Param request body service.QuestionRequest true "Question details"
// @Success 201 {object} util.Response
// @Router /api/admin/tests/{id}/questions [post]
func (ctl *TestController) AddQuestion(c *gin.Context) {
	var req service.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	question, err := ctl.Tests.AddQuestion(util.MustParseUint(c.Param("id")), req)
	if err != nil {
		util.EngineError(c, err)
		return
	}
	util.Created(c, question)
}

// UpdateQuestion godoc
// @Summary Update a question
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Param request body service.QuestionRequest true "Question details"
// @Success 200 {object} util.Response
// @Router /api/admin/questions/{id} [put]
func (ctl *TestController) UpdateQuestion(c *gin.Context) {
	var req service.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	question, err := ctl.Tests.UpdateQuestion(util.MustParseUint(c.Param("id")), req)
	if err != nil {
		util.EngineError(c, err)
		return
	}
	util.Success(c, question)
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Tags questions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Success 200 {object} util.Response
// @Router /api/admin/questions/{id} [delete]
func (ctl *TestController) DeleteQuestion(c *gin.Context) {
	if err := ctl.Tests.DeleteQuestion(util.MustParseUint(c.Param("id"))); err != nil {
		util.EngineError(c, err)
		return
	}
	util.Success(c, nil)
}

// ListQuestions godoc
// @Summary List a test's questions with answer keys
// @Tags questions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Success 200 {object} util.Response
// @Router /api/admin/tests/{id}/questions [get]
func (ctl *TestController) ListQuestions(c *gin.Context) {
	questions, err := ctl.Tests.ListQuestions(util.MustParseUint(c.Param("id")))
	if err != nil {
		util.EngineError(c, err)
		return
	}
	util.Success(c, questions)
}

// AvailableTests godoc
// @Summary List tests the caller may start right now
// @Description Published tests whose window contains the current time.
// @Tags tests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/tests/available [get]
func (ctl *TestController) AvailableTests(c *gin.Context) {
	tests, err := ctl.Tests.AvailableTests(time.Now())
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, tests)
}

// StudentQuestions godoc
// @Summary Get a test's questions without answer keys
// @Tags tests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/tests/{id}/questions [get]
func (ctl *TestController) StudentQuestions(c *gin.Context) {
	views, err := ctl.Tests.StudentQuestions(util.MustParseUint(c.Param("id")), time.Now())
	if err != nil {
		util.EngineError(c, err)
		return
	}
	util.Success(c, views)
}
