package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"spooky-styles/libs"
	"spooky-styles/logger"
	"spooky-styles/models"
	"spooky-styles/repositories"
	"spooky-styles/utils"

	"github.com/shopspring/decimal"
)

const productCachePattern = "products:*"

type ProductService struct {
	productRepo repositories.ProductRepository
	uploads     *UploadService
	cache       Cache
	cacheTTL    time.Duration
}

func NewProductService(productRepo repositories.ProductRepository, uploads *UploadService, cache Cache, cacheTTL time.Duration) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		uploads:     uploads,
		cache:       cache,
		cacheTTL:    cacheTTL,
	}
}

// productListKey renders every filter field so two different queries never
// share a cache entry.
func productListKey(f models.ProductFilter) string {
	return fmt.Sprintf("products:list:p=%d:l=%d:c=%s:q=%s:min=%s:max=%s:stock=%t:sort=%s",
		f.Page, f.Limit,
		strings.ToLower(f.Category), strings.ToLower(f.Search),
		priceKey(f.MinPrice), priceKey(f.MaxPrice),
		f.InStock, f.Sort,
	)
}

func priceKey(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func (s *ProductService) List(ctx context.Context, f models.ProductFilter) (models.Page[models.Product], error) {
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return models.Page[models.Product]{}, utils.BadRequest("min_price cannot be greater than max_price")
	}

	key := productListKey(f)
	var page models.Page[models.Product]
	if s.cache.GetJSON(ctx, key, &page) {
		return page, nil
	}

	page, err := s.productRepo.List(ctx, f)
	if err != nil {
		return page, utils.Internal("Failed to load products", err)
	}

	s.cache.SetJSON(ctx, key, page, s.cacheTTL)
	return page, nil
}

// Get returns an active product with its colors.
func (s *ProductService) Get(ctx context.Context, id int) (*models.Product, error) {
	key := fmt.Sprintf("products:item:%d", id)
	var cached models.Product
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, productError(err)
	}
	if !product.IsActive {
		return nil, utils.NotFound("Product not found")
	}

	s.cache.SetJSON(ctx, key, product, s.cacheTTL)
	return product, nil
}

func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	const key = "products:categories"
	var categories []string
	if s.cache.GetJSON(ctx, key, &categories) {
		return categories, nil
	}

	categories, err := s.productRepo.Categories(ctx)
	if err != nil {
		return nil, utils.Internal("Failed to load categories", err)
	}

	s.cache.SetJSON(ctx, key, categories, s.cacheTTL)
	return categories, nil
}

func (s *ProductService) Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	price, err := utils.ParseMoney(req.Price)
	if err != nil {
		return nil, utils.Validation("Validation failed", map[string]string{"price": err.Error()})
	}

	product := &models.Product{
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Price:         price,
		Category:      strings.TrimSpace(req.Category),
		ImageURL:      req.ImageURL,
		StockQuantity: req.StockQuantity,
		IsActive:      true,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, utils.Internal("Failed to create product", err)
	}

	s.invalidate(ctx)
	logger.FromContext(ctx).Info().Int("product_id", product.ID).Msg("product created")
	return product, nil
}

// Update applies the non-nil fields of req. Inactive products can be updated
// so they can be re-enabled.
func (s *ProductService) Update(ctx context.Context, id int, req models.UpdateProductRequest) (*models.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, productError(err)
	}

	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		price, err := utils.ParseMoney(*req.Price)
		if err != nil {
			return nil, utils.Validation("Validation failed", map[string]string{"price": err.Error()})
		}
		product.Price = price
	}
	if req.Category != nil {
		product.Category = strings.TrimSpace(*req.Category)
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}
	if req.StockQuantity != nil {
		product.StockQuantity = *req.StockQuantity
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, productError(err)
	}

	s.invalidate(ctx)
	return product, nil
}

// Delete hides the product from the storefront. Order history keeps its
// snapshot of the product.
func (s *ProductService) Delete(ctx context.Context, id int) error {
	if err := s.productRepo.Deactivate(ctx, id); err != nil {
		return productError(err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *ProductService) AddColor(ctx context.Context, productID int, req models.ProductColorRequest) (*models.ProductColor, error) {
	color := &models.ProductColor{
		ProductID:     productID,
		ColorName:     strings.TrimSpace(req.ColorName),
		ColorHex:      req.ColorHex,
		ImageURL:      req.ImageURL,
		StockQuantity: req.StockQuantity,
	}

	if err := s.productRepo.AddColor(ctx, color); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, utils.Conflict("Color already exists for this product")
		case errors.Is(err, repositories.ErrInvalidReference):
			return nil, utils.NotFound("Product not found")
		}
		return nil, utils.Internal("Failed to add color", err)
	}

	s.invalidate(ctx)
	return color, nil
}

func (s *ProductService) DeleteColor(ctx context.Context, productID, colorID int) error {
	if err := s.productRepo.DeleteColor(ctx, productID, colorID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return utils.NotFound("Color not found")
		}
		return utils.Internal("Failed to delete color", err)
	}
	s.invalidate(ctx)
	return nil
}

// UploadImage stores the image and makes it the product's main image.
func (s *ProductService) UploadImage(ctx context.Context, id int, header *multipart.FileHeader) (*models.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, productError(err)
	}

	res, err := s.uploads.UploadImage(ctx, header)
	if err != nil {
		return nil, err
	}

	product.ImageURL = res.URL
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, productError(err)
	}

	s.invalidate(ctx)
	return product, nil
}

// Export writes every product, active or not, as a spreadsheet.
func (s *ProductService) Export(ctx context.Context, w io.Writer) error {
	products, err := s.productRepo.All(ctx)
	if err != nil {
		return utils.Internal("Failed to load products", err)
	}
	if err := libs.WriteProductsXLSX(w, products); err != nil {
		return utils.Internal("Failed to build export", err)
	}
	return nil
}

// invalidate drops cached products and inspirations, which embed product rows.
func (s *ProductService) invalidate(ctx context.Context) {
	s.cache.DeletePattern(ctx, productCachePattern)
	s.cache.DeletePattern(ctx, inspirationCachePattern)
}

func productError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return utils.NotFound("Product not found")
	}
	return utils.Internal("Failed to load product", err)
}
