package services

import (
	"context"
	"errors"
	"strings"

	"spooky-styles/logger"
	"spooky-styles/models"
	"spooky-styles/repositories"
	"spooky-styles/utils"
)

type AuthService struct {
	userRepo repositories.UserRepository
	cartRepo repositories.CartRepository
	tokens   *utils.TokenManager
}

func NewAuthService(userRepo repositories.UserRepository, cartRepo repositories.CartRepository, tokens *utils.TokenManager) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cartRepo: cartRepo,
		tokens:   tokens,
	}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.LoginResponse, error) {
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, utils.Internal("Failed to hash password", err)
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
		Role:         models.RoleCustomer,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, utils.Conflict("Email already registered")
		}
		return nil, utils.Internal("Failed to create user", err)
	}

	return s.issue(user)
}

// Login authenticates the user. When guestSessionID is set, the guest cart
// is folded into the user's cart; a failed merge does not fail the login.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest, guestSessionID string) (*models.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.Unauthorized("Invalid email or password")
		}
		return nil, utils.Internal("Failed to load user", err)
	}

	if !utils.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, utils.Unauthorized("Invalid email or password")
	}

	if guestSessionID != "" {
		if err := s.cartRepo.MergeGuest(ctx, guestSessionID, user.ID); err != nil {
			logger.FromContext(ctx).Warn().Err(err).Int("user_id", user.ID).Msg("guest cart merge failed")
		}
	}

	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*models.LoginResponse, error) {
	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, utils.Internal("Failed to generate token", err)
	}
	return &models.LoginResponse{Token: token, User: *user}, nil
}

func (s *AuthService) Me(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, userError(err)
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID int, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.userRepo.UpdateProfile(ctx, userID, req)
	if err != nil {
		return nil, userError(err)
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID int, req models.ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return userError(err)
	}

	if !utils.VerifyPassword(user.PasswordHash, req.OldPassword) {
		return utils.BadRequest("Current password is incorrect")
	}
	if req.OldPassword == req.NewPassword {
		return utils.BadRequest("New password must differ from the current one")
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return utils.Internal("Failed to hash password", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return userError(err)
	}
	return nil
}

func userError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return utils.NotFound("User not found")
	}
	return utils.Internal("Failed to load user", err)
}
