package repositories

import (
	"context"
	"time"

	"spooky-styles/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mocks/repositories_mock.go -package=mocks

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id int) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id int, req models.UpdateProfileRequest) (*models.User, error)
	UpdatePassword(ctx context.Context, id int, hash string) error
	UpdateRole(ctx context.Context, id int, role string) (*models.User, error)
	List(ctx context.Context, page, limit int, search string) (models.Page[models.User], error)
	Delete(ctx context.Context, id int) error
}

type ProductRepository interface {
	List(ctx context.Context, filter models.ProductFilter) (models.Page[models.Product], error)
	FindByID(ctx context.Context, id int) (*models.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Deactivate(ctx context.Context, id int) error
	AddColor(ctx context.Context, color *models.ProductColor) error
	DeleteColor(ctx context.Context, productID, colorID int) error
	All(ctx context.Context) ([]models.Product, error)
}

type CartRepository interface {
	Find(ctx context.Context, owner models.CartOwner) (*models.Cart, error)
	FindOrCreate(ctx context.Context, owner models.CartOwner) (*models.Cart, error)
	InsertItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, cartID, itemID, quantity int) error
	RemoveItem(ctx context.Context, cartID, itemID int) error
	Clear(ctx context.Context, cartID int) error
	MergeGuest(ctx context.Context, sessionID string, userID int) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order, cartID int) error
	FindByID(ctx context.Context, id int) (*models.Order, error)
	FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	FindByPaymentReference(ctx context.Context, reference string) (*models.Order, error)
	List(ctx context.Context, filter models.OrderFilter) (models.Page[models.Order], error)
	All(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id int, from, to string) (*models.Order, error)
	SetPaymentReference(ctx context.Context, id int, provider, reference string) error
	MarkPaid(ctx context.Context, id int) (*models.Order, error)
	MarkPaymentFailed(ctx context.Context, id int) error
}

type InspirationRepository interface {
	List(ctx context.Context, category string, includeInactive bool) ([]models.Inspiration, error)
	FindByID(ctx context.Context, id int, includeInactive bool) (*models.Inspiration, error)
	Create(ctx context.Context, inspiration *models.Inspiration) error
	Update(ctx context.Context, inspiration *models.Inspiration) error
	Delete(ctx context.Context, id int) error
	AttachProduct(ctx context.Context, inspirationID int, link models.InspirationProductRequest) error
	DetachProduct(ctx context.Context, inspirationID, productID int) error
	ReorderProducts(ctx context.Context, inspirationID int, productIDs []int) error
}

type AnalyticsRepository interface {
	InsertPageView(ctx context.Context, view models.PageView) error
	InsertEvent(ctx context.Context, event models.AnalyticsEvent) error
	InsertError(ctx context.Context, entry models.ErrorLog) error
	Summary(ctx context.Context, since time.Time, topPages int) (*models.AnalyticsSummary, error)
}
