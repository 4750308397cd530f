package service

import (
	"exam_proctor_backend/internal/config"
	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	f := newEngine(t)
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpireTime = time.Hour
	return NewAuthService(f.repos.users, cfg)
}

func TestInitRootAdminOnlyOnce(t *testing.T) {
	svc := newAuthService(t)

	root, err := svc.InitRootAdmin(CreateUserRequest{Name: "Root", Email: "root@example.com", Password: "longenough"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleRootAdmin, root.Role)

	_, err = svc.InitRootAdmin(CreateUserRequest{Name: "Again", Email: "again@example.com", Password: "longenough"})
	assert.ErrorIs(t, err, util.ErrRootAdminExists)
}

func TestCreateUserRoleChain(t *testing.T) {
	svc := newAuthService(t)

	creator := &util.Claims{UserID: 1, Role: model.RoleRootAdmin}
	superAdmin, err := svc.CreateUser(creator, CreateUserRequest{Name: "S", Email: "s@example.com", Password: "longenough"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleSuperAdmin, superAdmin.Role)

	creator.Role = model.RoleSuperAdmin
	admin, err := svc.CreateUser(creator, CreateUserRequest{Name: "A", Email: "a@example.com", Password: "longenough"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)

	creator.Role = model.RoleAdmin
	user, err := svc.CreateUser(creator, CreateUserRequest{Name: "U", Email: "u@example.com", Password: "longenough"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, user.Role)

	// Plain users create nobody, and duplicate emails are rejected.
	creator.Role = model.RoleUser
	_, err = svc.CreateUser(creator, CreateUserRequest{Name: "X", Email: "x@example.com", Password: "longenough"})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	creator.Role = model.RoleAdmin
	_, err = svc.CreateUser(creator, CreateUserRequest{Name: "U2", Email: "u@example.com", Password: "longenough"})
	assert.ErrorIs(t, err, util.ErrEmailRegistered)
}

func TestLogin(t *testing.T) {
	svc := newAuthService(t)

	created, err := svc.InitRootAdmin(CreateUserRequest{Name: "Root", Email: "root@example.com", Password: "longenough"})
	require.NoError(t, err)

	token, user, err := svc.Login("root@example.com", "longenough")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, created.ID, user.ID)

	claims, err := util.ParseJWT(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Equal(t, model.RoleRootAdmin, claims.Role)

	_, _, err = svc.Login("root@example.com", "wrong")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	_, _, err = svc.Login("nobody@example.com", "longenough")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
}
