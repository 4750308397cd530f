package controller

import (
	"exam_proctor_backend/internal/service"
	"exam_proctor_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Auth *service.AuthService
}

func NewAuthController(auth *service.AuthService) *AuthController {
	return &AuthController{Auth: auth}
}

// InitRootAdmin godoc
// @Summary Bootstrap the root admin account
// @Description Creates the ROOTADMIN account. Allowed only while none exists.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.CreateUserRequest true "Root admin details"
// @Success 201 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/auth/init-root-admin [post]
func (ctl *AuthController) InitRootAdmin(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	user, err := ctl.Auth.InitRootAdmin(req)
	if err != nil {
		util.EngineError(c, err)
		return
	}
	util.Created(c, user)
}

// Login godoc
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.LoginRequest true "Credentials"
// @Success 200 {object} util.Response
// @Failure 401 {object} util.Response
// @Router /api/login [post]
func (ctl *AuthController) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	token, user, err := ctl.Auth.Login(req.Email, req.Password)
	if err != nil {
		util.EngineError(c, err)
		return
	}
	util.Success(c, gin.H{"token": token, "user": user})
}

// GetProfile godoc
// @Summary Get the caller's profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/profile [get]
func (ctl *AuthController) GetProfile(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	user, err := ctl.Auth.GetProfile(claims.UserID)
	if err != nil {
		util.EngineError(c, err)
		return
	}
	util.Success(c, user)
}
