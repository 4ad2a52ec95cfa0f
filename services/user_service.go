package services

import (
	"context"

	"spooky-styles/models"
	"spooky-styles/repositories"
	"spooky-styles/utils"
)

// UserService backs the admin user management endpoints.
type UserService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) List(ctx context.Context, page, limit int, search string) (models.Page[models.User], error) {
	users, err := s.userRepo.List(ctx, page, limit, search)
	if err != nil {
		return users, utils.Internal("Failed to load users", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, userError(err)
	}
	return user, nil
}

func (s *UserService) UpdateRole(ctx context.Context, actor models.Viewer, id int, role string) (*models.User, error) {
	if actor.UserID == id && role != models.RoleAdmin {
		return nil, utils.BadRequest("You cannot remove your own admin role")
	}

	user, err := s.userRepo.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, userError(err)
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, actor models.Viewer, id int) error {
	if actor.UserID == id {
		return utils.BadRequest("You cannot delete your own account")
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return userError(err)
	}
	return nil
}
