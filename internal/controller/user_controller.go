package controller

import (
	"exam_proctor_backend/internal/repository"
	"exam_proctor_backend/internal/service"
	"exam_proctor_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	Auth  *service.AuthService
	Users *repository.UserRepository
}

func NewUserController(auth *service.AuthService, users *repository.UserRepository) *UserController {
	return &UserController{Auth: auth, Users: users}
}

// CreateUser godoc
// @Summary Create a user one role below the caller
// @Description ROOTADMIN creates SUPERADMINs, SUPERADMIN creates ADMINs, ADMIN creates USERs.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateUserRequest true "User details"
// @Success 201 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/admin/users [post]
func (ctl *UserController) CreateUser(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	user, err := ctl.Auth.CreateUser(claims, req)
	if err != nil {
		util.EngineError(c, err)
		return
	}
	util.Created(c, user)
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} util.Response
// @Router /api/admin/users [get]
func (ctl *UserController) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	users, total, err := ctl.Users.List(page, limit)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, gin.H{"users": users, "total": total, "page": page, "limit": limit})
}
