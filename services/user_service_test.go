package services

import (
	"context"
	"testing"

	"spooky-styles/mocks"
	"spooky-styles/models"
	"spooky-styles/repositories"
	"spooky-styles/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var adminViewer = models.Viewer{UserID: 1, Email: "admin@example.com", Role: models.RoleAdmin}

func TestUserService_UpdateRole(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserRepository(ctrl)
	svc := NewUserService(users)

	t.Run("cannot demote self", func(t *testing.T) {
		_, err := svc.UpdateRole(context.Background(), adminViewer, 1, models.RoleCustomer)
		requireKind(t, err, utils.KindBadRequest)
	})

	t.Run("promotes another user", func(t *testing.T) {
		users.EXPECT().UpdateRole(gomock.Any(), 5, models.RoleAdmin).Return(&models.User{ID: 5, Role: models.RoleAdmin}, nil)
		u, err := svc.UpdateRole(context.Background(), adminViewer, 5, models.RoleAdmin)
		require.NoError(t, err)
		assert.True(t, u.IsAdmin())
	})

	t.Run("unknown user", func(t *testing.T) {
		users.EXPECT().UpdateRole(gomock.Any(), 404, models.RoleAdmin).Return(nil, repositories.ErrNotFound)
		_, err := svc.UpdateRole(context.Background(), adminViewer, 404, models.RoleAdmin)
		requireKind(t, err, utils.KindNotFound)
	})
}

func TestUserService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserRepository(ctrl)
	svc := NewUserService(users)

	err := svc.Delete(context.Background(), adminViewer, 1)
	requireKind(t, err, utils.KindBadRequest)

	users.EXPECT().Delete(gomock.Any(), 5).Return(nil)
	require.NoError(t, svc.Delete(context.Background(), adminViewer, 5))
}
