package service

import (
	"exam_proctor_backend/internal/config"
	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/repository"
	"exam_proctor_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService is the upstream identity collaborator: bootstrap, login and
// the role-chained user provisioning (ROOTADMIN creates SUPERADMINs,
// SUPERADMINs create ADMINs, ADMINs create USERs). The engine itself only
// ever sees the verified claims.
type AuthService struct {
	Users *repository.UserRepository
	Cfg   *config.Config
}

func NewAuthService(users *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{Users: users, Cfg: cfg}
}

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// InitRootAdmin provisions the very first account. Allowed exactly once.
func (s *AuthService) InitRootAdmin(req CreateUserRequest) (*model.User, error) {
	count, err := s.Users.CountByRole(model.RoleRootAdmin)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, util.ErrRootAdminExists
	}
	return s.createUser(req, model.RoleRootAdmin)
}

// CreateUser provisions the single role the creator is entitled to create.
func (s *AuthService) CreateUser(creator *util.Claims, req CreateUserRequest) (*model.User, error) {
	role, ok := creator.Role.CreatableRole()
	if !ok {
		return nil, util.ErrPermissionDenied
	}
	return s.createUser(req, role)
}

func (s *AuthService) createUser(req CreateUserRequest, role model.UserRole) (*model.User, error) {
	_, err := s.Users.FindByEmail(req.Email)
	if err == nil {
		return nil, util.ErrEmailRegistered
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Role:     role,
	}
	if err := s.Users.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(email, password string) (string, *model.User, error) {
	user, err := s.Users.FindByEmail(email)
	if err != nil {
		return "", nil, util.ErrInvalidCredentials
	}
	if user.Disabled {
		return "", nil, util.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.Users.FindByID(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
