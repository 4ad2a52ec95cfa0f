package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"spooky-styles/models"
	"spooky-styles/repositories"
	"spooky-styles/utils"
)

const inspirationCachePattern = "inspirations:*"

type InspirationService struct {
	repo     repositories.InspirationRepository
	cache    Cache
	cacheTTL time.Duration
}

func NewInspirationService(repo repositories.InspirationRepository, cache Cache, cacheTTL time.Duration) *InspirationService {
	return &InspirationService{repo: repo, cache: cache, cacheTTL: cacheTTL}
}

// List returns inspirations with their product counts. Only the public,
// active-only listing is cached.
func (s *InspirationService) List(ctx context.Context, category string, includeInactive bool) ([]models.Inspiration, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	key := "inspirations:list:" + category

	var list []models.Inspiration
	if !includeInactive && s.cache.GetJSON(ctx, key, &list) {
		return list, nil
	}

	list, err := s.repo.List(ctx, category, includeInactive)
	if err != nil {
		return nil, utils.Internal("Failed to load inspirations", err)
	}

	if !includeInactive {
		s.cache.SetJSON(ctx, key, list, s.cacheTTL)
	}
	return list, nil
}

func (s *InspirationService) Get(ctx context.Context, id int, includeInactive bool) (*models.Inspiration, error) {
	key := fmt.Sprintf("inspirations:item:%d", id)

	var cached models.Inspiration
	if !includeInactive && s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	in, err := s.repo.FindByID(ctx, id, includeInactive)
	if err != nil {
		return nil, inspirationError(err)
	}

	if !includeInactive {
		s.cache.SetJSON(ctx, key, in, s.cacheTTL)
	}
	return in, nil
}

func (s *InspirationService) Create(ctx context.Context, req models.InspirationRequest) (*models.Inspiration, error) {
	in := &models.Inspiration{IsActive: true}
	applyInspiration(in, req)

	if err := s.repo.Create(ctx, in); err != nil {
		return nil, utils.Internal("Failed to create inspiration", err)
	}
	s.invalidate(ctx)
	return in, nil
}

func (s *InspirationService) Update(ctx context.Context, id int, req models.InspirationRequest) (*models.Inspiration, error) {
	in, err := s.repo.FindByID(ctx, id, true)
	if err != nil {
		return nil, inspirationError(err)
	}
	applyInspiration(in, req)

	if err := s.repo.Update(ctx, in); err != nil {
		return nil, inspirationError(err)
	}
	s.invalidate(ctx)
	return in, nil
}

func (s *InspirationService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return inspirationError(err)
	}
	s.invalidate(ctx)
	return nil
}

// AttachProduct links a product, or updates an existing link. At most one
// product per inspiration is primary.
func (s *InspirationService) AttachProduct(ctx context.Context, id int, req models.InspirationProductRequest) (*models.Inspiration, error) {
	if err := s.repo.AttachProduct(ctx, id, req); err != nil {
		if errors.Is(err, repositories.ErrInvalidReference) {
			return nil, utils.NotFound("Inspiration or product not found")
		}
		return nil, inspirationError(err)
	}
	s.invalidate(ctx)
	return s.adminView(ctx, id)
}

func (s *InspirationService) DetachProduct(ctx context.Context, id, productID int) error {
	if err := s.repo.DetachProduct(ctx, id, productID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return utils.NotFound("Product is not linked to this inspiration")
		}
		return utils.Internal("Failed to unlink product", err)
	}
	s.invalidate(ctx)
	return nil
}

// ReorderProducts sets display order from the position of each product id.
func (s *InspirationService) ReorderProducts(ctx context.Context, id int, productIDs []int) (*models.Inspiration, error) {
	seen := make(map[int]bool, len(productIDs))
	for _, pid := range productIDs {
		if seen[pid] {
			return nil, utils.BadRequest(fmt.Sprintf("Product %d is listed twice", pid))
		}
		seen[pid] = true
	}

	if err := s.repo.ReorderProducts(ctx, id, productIDs); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.BadRequest("Every product must already be linked to this inspiration")
		}
		return nil, utils.Internal("Failed to reorder products", err)
	}
	s.invalidate(ctx)
	return s.adminView(ctx, id)
}

func (s *InspirationService) adminView(ctx context.Context, id int) (*models.Inspiration, error) {
	return s.Get(ctx, id, true)
}

func (s *InspirationService) invalidate(ctx context.Context) {
	s.cache.DeletePattern(ctx, inspirationCachePattern)
}

func applyInspiration(in *models.Inspiration, req models.InspirationRequest) {
	in.Title = strings.TrimSpace(req.Title)
	in.Description = req.Description
	in.ImageURL = req.ImageURL
	in.Category = strings.ToLower(strings.TrimSpace(req.Category))
	in.Difficulty = req.Difficulty
	if req.IsActive != nil {
		in.IsActive = *req.IsActive
	}
}

func inspirationError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return utils.NotFound("Inspiration not found")
	}
	return utils.Internal("Failed to load inspiration", err)
}
