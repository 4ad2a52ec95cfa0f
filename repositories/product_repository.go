package repositories

import (
	"context"
	"fmt"
	"strings"

	"spooky-styles/models"

	sq "github.com/Masterminds/squirrel"
)

var productColumns = []string{
	"p.id", "p.name", "p.description", "p.price", "p.category", "p.image_url",
	"p.stock_quantity", "p.is_active", "p.created_at", "p.updated_at",
}

var productSortOrder = map[string]string{
	models.SortNewest:    "p.created_at DESC",
	models.SortPriceAsc:  "p.price ASC",
	models.SortPriceDesc: "p.price DESC",
	models.SortName:      "p.name ASC",
}

type productRepository struct {
	db DB
}

func NewProductRepository(db DB) ProductRepository {
	return &productRepository{db: db}
}

func scanProduct(row interface{ Scan(...any) error }, p *models.Product) error {
	return row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.ImageURL,
		&p.StockQuantity, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
}

// buildProductFilter returns the FROM/WHERE part of the catalogue query;
// only active products are ever listed.
func buildProductFilter(f models.ProductFilter) sq.SelectBuilder {
	q := psql.Select().From("products p").Where(sq.Eq{"p.is_active": true})

	if f.Category != "" {
		q = q.Where(sq.Eq{"LOWER(p.category)": strings.ToLower(f.Category)})
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + s + "%"
		q = q.Where(sq.Or{sq.ILike{"p.name": like}, sq.ILike{"p.description": like}})
	}
	if f.MinPrice != nil {
		q = q.Where(sq.GtOrEq{"p.price": *f.MinPrice})
	}
	if f.MaxPrice != nil {
		q = q.Where(sq.LtOrEq{"p.price": *f.MaxPrice})
	}
	if f.InStock {
		q = q.Where(sq.Gt{"p.stock_quantity": 0})
	}
	return q
}

func buildProductList(f models.ProductFilter) sq.SelectBuilder {
	order, ok := productSortOrder[f.Sort]
	if !ok {
		order = productSortOrder[models.SortNewest]
	}
	return buildProductFilter(f).
		Columns(productColumns...).
		OrderBy(order, "p.id DESC").
		Limit(uint64(f.Limit)).
		Offset(uint64((f.Page - 1) * f.Limit))
}

func (r *productRepository) List(ctx context.Context, f models.ProductFilter) (models.Page[models.Product], error) {
	var result models.Page[models.Product]

	total, err := count(ctx, r.db, buildProductFilter(f))
	if err != nil {
		return result, err
	}

	products, err := r.query(ctx, buildProductList(f))
	if err != nil {
		return result, err
	}

	result.Items = products
	result.Total = total
	return result, nil
}

func (r *productRepository) query(ctx context.Context, b sq.SelectBuilder) ([]models.Product, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// FindByID returns the product regardless of is_active; callers decide
// whether inactive products are visible.
func (r *productRepository) FindByID(ctx context.Context, id int) (*models.Product, error) {
	query, args, err := psql.Select(productColumns...).From("products p").Where(sq.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	var p models.Product
	if err := scanProduct(r.db.QueryRow(ctx, query, args...), &p); err != nil {
		return nil, mapError(err)
	}

	colors, err := r.colors(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Colors = colors
	return &p, nil
}

func (r *productRepository) colors(ctx context.Context, productID int) ([]models.ProductColor, error) {
	query, args, err := psql.
		Select("id", "product_id", "color_name", "color_hex", "image_url", "stock_quantity", "created_at").
		From("product_colors").
		Where(sq.Eq{"product_id": productID}).
		OrderBy("color_name").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	colors := []models.ProductColor{}
	for rows.Next() {
		var c models.ProductColor
		if err := rows.Scan(&c.ID, &c.ProductID, &c.ColorName, &c.ColorHex, &c.ImageURL, &c.StockQuantity, &c.CreatedAt); err != nil {
			return nil, err
		}
		colors = append(colors, c)
	}
	return colors, rows.Err()
}

func (r *productRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT category FROM products WHERE is_active AND category <> '' ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *productRepository) Create(ctx context.Context, p *models.Product) error {
	return queryRow(ctx, r.db, psql.Insert("products").
		Columns("name", "description", "price", "category", "image_url", "stock_quantity", "is_active").
		Values(p.Name, p.Description, p.Price, p.Category, p.ImageURL, p.StockQuantity, p.IsActive).
		Suffix("RETURNING id, created_at, updated_at"),
		&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *productRepository) Update(ctx context.Context, p *models.Product) error {
	return queryRow(ctx, r.db, psql.Update("products").
		SetMap(map[string]any{
			"name":           p.Name,
			"description":    p.Description,
			"price":          p.Price,
			"category":       p.Category,
			"image_url":      p.ImageURL,
			"stock_quantity": p.StockQuantity,
			"is_active":      p.IsActive,
			"updated_at":     sq.Expr("NOW()"),
		}).
		Where(sq.Eq{"id": p.ID}).
		Suffix("RETURNING updated_at"),
		&p.UpdatedAt)
}

func (r *productRepository) Deactivate(ctx context.Context, id int) error {
	return execOne(ctx, r.db, psql.Update("products").
		Set("is_active", false).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}))
}

func (r *productRepository) AddColor(ctx context.Context, c *models.ProductColor) error {
	err := queryRow(ctx, r.db, psql.Insert("product_colors").
		Columns("product_id", "color_name", "color_hex", "image_url", "stock_quantity").
		Values(c.ProductID, c.ColorName, c.ColorHex, c.ImageURL, c.StockQuantity).
		Suffix("RETURNING id, created_at"),
		&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("add color %q: %w", c.ColorName, err)
	}
	return nil
}

func (r *productRepository) DeleteColor(ctx context.Context, productID, colorID int) error {
	return execOne(ctx, r.db, psql.Delete("product_colors").
		Where(sq.Eq{"id": colorID, "product_id": productID}))
}

// All returns every product, active or not, for the admin export.
func (r *productRepository) All(ctx context.Context) ([]models.Product, error) {
	return r.query(ctx, psql.Select(productColumns...).From("products p").OrderBy("p.id"))
}
