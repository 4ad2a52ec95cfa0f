package controllers

import (
	"encoding/json"
	"net/http"
	"testing"

	"spooky-styles/middleware"
	"spooky-styles/mocks"
	"spooky-styles/models"
	"spooky-styles/repositories"
	"spooky-styles/services"
	"spooky-styles/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newAuthRouter(t *testing.T, ctrl *gomock.Controller) (*gin.Engine, *mocks.MockUserRepository, *mocks.MockCartRepository) {
	t.Helper()

	users := mocks.NewMockUserRepository(ctrl)
	carts := mocks.NewMockCartRepository(ctrl)
	ac := NewAuthController(services.NewAuthService(users, carts, testTokens))

	r := newTestRouter()
	r.POST("/auth/register", ac.Register)
	r.POST("/auth/login", ac.Login)
	authed := r.Group("/auth", middleware.RequireAuth(testTokens))
	authed.GET("/me", ac.Me)
	authed.PATCH("/profile", ac.UpdateProfile)
	authed.POST("/change-password", ac.ChangePassword)
	return r, users, carts
}

func storedUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	return &models.User{ID: 7, Email: "morticia@example.com", PasswordHash: hash, FirstName: "Morticia", Role: models.RoleCustomer}
}

func TestAuthController_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	r, users, _ := newAuthRouter(t, ctrl)

	t.Run("validation", func(t *testing.T) {
		w := serve(t, r, request{method: http.MethodPost, path: "/auth/register", body: `{"email":"bad","password":"short"}`})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		env := decode(t, w)
		assert.Contains(t, env.Errors, "email")
		assert.Contains(t, env.Errors, "password")
		assert.Contains(t, env.Errors, "first_name")
	})

	t.Run("created with a usable token", func(t *testing.T) {
		users.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, u *models.User) error {
				assert.Equal(t, "morticia@example.com", u.Email)
				assert.Equal(t, models.RoleCustomer, u.Role)
				assert.True(t, utils.VerifyPassword(u.PasswordHash, "nightshade1"))
				u.ID = 7
				return nil
			})

		w := serve(t, r, request{
			method: http.MethodPost,
			path:   "/auth/register",
			body:   `{"email":"Morticia@Example.com","password":"nightshade1","first_name":"Morticia"}`,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var res models.LoginResponse
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &res))
		claims, err := testTokens.ValidateToken(res.Token)
		require.NoError(t, err)
		assert.Equal(t, 7, claims.UserID)
		assert.NotContains(t, w.Body.String(), "nightshade1")
	})

	t.Run("duplicate email", func(t *testing.T) {
		users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(repositories.ErrDuplicate)

		w := serve(t, r, request{
			method: http.MethodPost,
			path:   "/auth/register",
			body:   `{"email":"morticia@example.com","password":"nightshade1","first_name":"Morticia"}`,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestAuthController_Login(t *testing.T) {
	body := `{"email":"morticia@example.com","password":"nightshade1"}`

	t.Run("wrong password", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		r, users, _ := newAuthRouter(t, ctrl)
		users.EXPECT().FindByEmail(gomock.Any(), "morticia@example.com").Return(storedUser(t, "different1"), nil)

		w := serve(t, r, request{method: http.MethodPost, path: "/auth/login", body: body})
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid email or password", decode(t, w).Message)
	})

	t.Run("unknown email looks the same", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		r, users, _ := newAuthRouter(t, ctrl)
		users.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(nil, repositories.ErrNotFound)

		w := serve(t, r, request{method: http.MethodPost, path: "/auth/login", body: body})
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid email or password", decode(t, w).Message)
	})

	t.Run("no merge without a client session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		r, users, carts := newAuthRouter(t, ctrl)
		users.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(storedUser(t, "nightshade1"), nil)
		carts.EXPECT().MergeGuest(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		w := serve(t, r, request{method: http.MethodPost, path: "/auth/login", body: body})
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("guest cart merged", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		r, users, carts := newAuthRouter(t, ctrl)
		users.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(storedUser(t, "nightshade1"), nil)
		carts.EXPECT().MergeGuest(gomock.Any(), "guest-1", 7).Return(nil)

		w := serve(t, r, request{
			method:  http.MethodPost,
			path:    "/auth/login",
			body:    body,
			headers: map[string]string{middleware.HeaderSessionID: "guest-1"},
		})
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("failed merge still logs in", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		r, users, carts := newAuthRouter(t, ctrl)
		users.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(storedUser(t, "nightshade1"), nil)
		carts.EXPECT().MergeGuest(gomock.Any(), "guest-1", 7).Return(assert.AnError)

		w := serve(t, r, request{
			method:  http.MethodPost,
			path:    "/auth/login",
			body:    body,
			headers: map[string]string{middleware.HeaderSessionID: "guest-1"},
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAuthController_Me(t *testing.T) {
	ctrl := gomock.NewController(t)
	r, users, _ := newAuthRouter(t, ctrl)

	assert.Equal(t, http.StatusUnauthorized, serve(t, r, request{method: http.MethodGet, path: "/auth/me"}).Code)

	users.EXPECT().FindByID(gomock.Any(), 7).Return(storedUser(t, "nightshade1"), nil)
	w := serve(t, r, request{method: http.MethodGet, path: "/auth/me", headers: bearer(t, 7, models.RoleCustomer)})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "argon2")
}

func TestAuthController_ChangePassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	r, users, _ := newAuthRouter(t, ctrl)
	headers := bearer(t, 7, models.RoleCustomer)

	t.Run("wrong current password", func(t *testing.T) {
		users.EXPECT().FindByID(gomock.Any(), 7).Return(storedUser(t, "nightshade1"), nil)

		w := serve(t, r, request{
			method:  http.MethodPost,
			path:    "/auth/change-password",
			body:    `{"old_password":"guessing1","new_password":"wolfsbane1"}`,
			headers: headers,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("changed", func(t *testing.T) {
		users.EXPECT().FindByID(gomock.Any(), 7).Return(storedUser(t, "nightshade1"), nil)
		users.EXPECT().UpdatePassword(gomock.Any(), 7, gomock.Any()).
			DoAndReturn(func(_ any, _ int, hash string) error {
				assert.True(t, utils.VerifyPassword(hash, "wolfsbane1"))
				return nil
			})

		w := serve(t, r, request{
			method:  http.MethodPost,
			path:    "/auth/change-password",
			body:    `{"old_password":"nightshade1","new_password":"wolfsbane1"}`,
			headers: headers,
		})
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})
}
