package repositories

import (
	"context"
	"strings"

	"spooky-styles/models"

	sq "github.com/Masterminds/squirrel"
)

var userColumns = []string{"id", "email", "password_hash", "first_name", "last_name", "phone", "role", "created_at", "updated_at"}

type userRepository struct {
	db DB
}

func NewUserRepository(db DB) UserRepository {
	return &userRepository{db: db}
}

func scanUser(row interface{ Scan(...any) error }, u *models.User) error {
	return row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone, &u.Role, &u.CreatedAt, &u.UpdatedAt)
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleCustomer
	}
	q := psql.Insert("users").
		Columns("email", "password_hash", "first_name", "last_name", "phone", "role").
		Values(strings.ToLower(user.Email), user.PasswordHash, user.FirstName, user.LastName, user.Phone, user.Role).
		Suffix("RETURNING " + strings.Join(userColumns, ", "))

	query, args, err := q.ToSql()
	if err != nil {
		return err
	}
	return mapError(scanUser(r.db.QueryRow(ctx, query, args...), user))
}

func (r *userRepository) findOne(ctx context.Context, where sq.Sqlizer) (*models.User, error) {
	query, args, err := psql.Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := scanUser(r.db.QueryRow(ctx, query, args...), &u); err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

func (r *userRepository) FindByID(ctx context.Context, id int) (*models.User, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, sq.Eq{"email": strings.ToLower(email)})
}

func buildProfileUpdate(id int, req models.UpdateProfileRequest) sq.UpdateBuilder {
	q := psql.Update("users").Set("updated_at", sq.Expr("NOW()"))
	if req.FirstName != nil {
		q = q.Set("first_name", *req.FirstName)
	}
	if req.LastName != nil {
		q = q.Set("last_name", *req.LastName)
	}
	if req.Phone != nil {
		q = q.Set("phone", *req.Phone)
	}
	return q.Where(sq.Eq{"id": id}).Suffix("RETURNING " + strings.Join(userColumns, ", "))
}

func (r *userRepository) UpdateProfile(ctx context.Context, id int, req models.UpdateProfileRequest) (*models.User, error) {
	query, args, err := buildProfileUpdate(id, req).ToSql()
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := scanUser(r.db.QueryRow(ctx, query, args...), &u); err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int, hash string) error {
	return execOne(ctx, r.db, psql.Update("users").
		Set("password_hash", hash).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}))
}

func (r *userRepository) UpdateRole(ctx context.Context, id int, role string) (*models.User, error) {
	query, args, err := psql.Update("users").
		Set("role", role).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(userColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := scanUser(r.db.QueryRow(ctx, query, args...), &u); err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

func buildUserFilter(search string) sq.SelectBuilder {
	q := psql.Select().From("users")
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + search + "%"
		q = q.Where(sq.Or{
			sq.ILike{"email": like},
			sq.ILike{"first_name": like},
			sq.ILike{"last_name": like},
		})
	}
	return q
}

func (r *userRepository) List(ctx context.Context, page, limit int, search string) (models.Page[models.User], error) {
	var result models.Page[models.User]

	base := buildUserFilter(search)
	total, err := count(ctx, r.db, base)
	if err != nil {
		return result, err
	}

	query, args, err := base.Columns(userColumns...).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		Offset(uint64((page - 1) * limit)).
		ToSql()
	if err != nil {
		return result, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return result, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			return result, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return result, err
	}

	result.Items = users
	result.Total = total
	return result, nil
}

func (r *userRepository) Delete(ctx context.Context, id int) error {
	return execOne(ctx, r.db, psql.Delete("users").Where(sq.Eq{"id": id}))
}
