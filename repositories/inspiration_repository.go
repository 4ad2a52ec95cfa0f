package repositories

import (
	"context"
	"strings"

	"spooky-styles/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

var inspirationColumns = []string{
	"ci.id", "ci.title", "ci.description", "ci.image_url", "ci.category", "ci.difficulty",
	"ci.is_active", "ci.created_at", "ci.updated_at",
}

type inspirationRepository struct {
	db DB
}

func NewInspirationRepository(db DB) InspirationRepository {
	return &inspirationRepository{db: db}
}

func scanInspiration(row interface{ Scan(...any) error }, in *models.Inspiration, extra ...any) error {
	dest := []any{&in.ID, &in.Title, &in.Description, &in.ImageURL, &in.Category, &in.Difficulty,
		&in.IsActive, &in.CreatedAt, &in.UpdatedAt}
	return row.Scan(append(dest, extra...)...)
}

// buildInspirationList counts the same products FindByID would return for
// the same includeInactive, so list and detail agree.
func buildInspirationList(category string, includeInactive bool) sq.SelectBuilder {
	productCount := "COUNT(p.id) FILTER (WHERE p.is_active)"
	if includeInactive {
		productCount = "COUNT(p.id)"
	}
	q := psql.Select(append(inspirationColumns, productCount)...).
		From("costume_inspirations ci").
		LeftJoin("costume_inspiration_products cip ON cip.inspiration_id = ci.id").
		LeftJoin("products p ON p.id = cip.product_id").
		GroupBy("ci.id").
		OrderBy("ci.created_at DESC", "ci.id DESC")
	if !includeInactive {
		q = q.Where(sq.Eq{"ci.is_active": true})
	}
	if category != "" {
		q = q.Where(sq.Eq{"LOWER(ci.category)": strings.ToLower(category)})
	}
	return q
}

func (r *inspirationRepository) List(ctx context.Context, category string, includeInactive bool) ([]models.Inspiration, error) {
	query, args, err := buildInspirationList(category, includeInactive).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.Inspiration{}
	for rows.Next() {
		var in models.Inspiration
		if err := scanInspiration(rows, &in, &in.ProductCount); err != nil {
			return nil, err
		}
		list = append(list, in)
	}
	return list, rows.Err()
}

func buildInspirationProducts(inspirationID int, includeInactive bool) sq.SelectBuilder {
	q := psql.Select(append(productColumns, "cip.display_order", "cip.is_primary")...).
		From("costume_inspiration_products cip").
		Join("products p ON p.id = cip.product_id").
		Where(sq.Eq{"cip.inspiration_id": inspirationID}).
		OrderBy("cip.display_order", "cip.is_primary DESC", "p.name")
	if !includeInactive {
		q = q.Where(sq.Eq{"p.is_active": true})
	}
	return q
}

func (r *inspirationRepository) FindByID(ctx context.Context, id int, includeInactive bool) (*models.Inspiration, error) {
	q := psql.Select(inspirationColumns...).From("costume_inspirations ci").Where(sq.Eq{"ci.id": id})
	if !includeInactive {
		q = q.Where(sq.Eq{"ci.is_active": true})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var in models.Inspiration
	if err := scanInspiration(r.db.QueryRow(ctx, query, args...), &in); err != nil {
		return nil, mapError(err)
	}

	query, args, err = buildInspirationProducts(id, includeInactive).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	in.Products = []models.InspirationProduct{}
	for rows.Next() {
		var ip models.InspirationProduct
		p := &ip.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.ImageURL,
			&p.StockQuantity, &p.IsActive, &p.CreatedAt, &p.UpdatedAt, &ip.DisplayOrder, &ip.IsPrimary); err != nil {
			return nil, err
		}
		in.Products = append(in.Products, ip)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	in.ProductCount = len(in.Products)
	return &in, nil
}

func (r *inspirationRepository) Create(ctx context.Context, in *models.Inspiration) error {
	return queryRow(ctx, r.db, psql.Insert("costume_inspirations").
		Columns("title", "description", "image_url", "category", "difficulty", "is_active").
		Values(in.Title, in.Description, in.ImageURL, in.Category, in.Difficulty, in.IsActive).
		Suffix("RETURNING id, created_at, updated_at"),
		&in.ID, &in.CreatedAt, &in.UpdatedAt)
}

func (r *inspirationRepository) Update(ctx context.Context, in *models.Inspiration) error {
	return queryRow(ctx, r.db, psql.Update("costume_inspirations").
		SetMap(map[string]any{
			"title":       in.Title,
			"description": in.Description,
			"image_url":   in.ImageURL,
			"category":    in.Category,
			"difficulty":  in.Difficulty,
			"is_active":   in.IsActive,
			"updated_at":  sq.Expr("NOW()"),
		}).
		Where(sq.Eq{"id": in.ID}).
		Suffix("RETURNING created_at, updated_at"),
		&in.CreatedAt, &in.UpdatedAt)
}

func (r *inspirationRepository) Delete(ctx context.Context, id int) error {
	return execOne(ctx, r.db, psql.Delete("costume_inspirations").Where(sq.Eq{"id": id}))
}

// AttachProduct links or relinks a product. Marking it primary clears the
// flag on every other product of the inspiration first.
func (r *inspirationRepository) AttachProduct(ctx context.Context, inspirationID int, link models.InspirationProductRequest) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		if link.IsPrimary {
			if _, err := exec(ctx, tx, psql.Update("costume_inspiration_products").
				Set("is_primary", false).
				Where(sq.Eq{"inspiration_id": inspirationID, "is_primary": true}).
				Where(sq.NotEq{"product_id": link.ProductID})); err != nil {
				return err
			}
		}

		_, err := exec(ctx, tx, psql.Insert("costume_inspiration_products").
			Columns("inspiration_id", "product_id", "display_order", "is_primary").
			Values(inspirationID, link.ProductID, link.DisplayOrder, link.IsPrimary).
			Suffix("ON CONFLICT (inspiration_id, product_id) DO UPDATE SET display_order = EXCLUDED.display_order, is_primary = EXCLUDED.is_primary"))
		if err != nil {
			return err
		}
		return touchInspiration(ctx, tx, inspirationID)
	})
}

func (r *inspirationRepository) DetachProduct(ctx context.Context, inspirationID, productID int) error {
	return execOne(ctx, r.db, psql.Delete("costume_inspiration_products").
		Where(sq.Eq{"inspiration_id": inspirationID, "product_id": productID}))
}

// ReorderProducts assigns display_order by position in productIDs. Every id
// must already be linked or nothing changes.
func (r *inspirationRepository) ReorderProducts(ctx context.Context, inspirationID int, productIDs []int) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		for i, productID := range productIDs {
			if err := execOne(ctx, tx, psql.Update("costume_inspiration_products").
				Set("display_order", i).
				Where(sq.Eq{"inspiration_id": inspirationID, "product_id": productID})); err != nil {
				return err
			}
		}
		return touchInspiration(ctx, tx, inspirationID)
	})
}

func touchInspiration(ctx context.Context, db DB, id int) error {
	return execOne(ctx, db, psql.Update("costume_inspirations").Set("updated_at", sq.Expr("NOW()")).Where(sq.Eq{"id": id}))
}
