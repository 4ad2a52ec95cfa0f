package models

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
	FirstName string `json:"first_name" binding:"required,min=1,max=100"`
	LastName  string `json:"last_name" binding:"omitempty,max=100"`
	Phone     string `json:"phone" binding:"omitempty,max=30"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,max=100"`
	Phone     *string `json:"phone" binding:"omitempty,max=30"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=customer admin"`
}

type CreateProductRequest struct {
	Name          string `json:"name" binding:"required,min=2,max=255"`
	Description   string `json:"description" binding:"omitempty,max=5000"`
	Price         string `json:"price" binding:"required,money"`
	Category      string `json:"category" binding:"required,max=100"`
	ImageURL      string `json:"image_url" binding:"omitempty,url"`
	StockQuantity int    `json:"stock_quantity" binding:"gte=0"`
}

type UpdateProductRequest struct {
	Name          *string `json:"name" binding:"omitempty,min=2,max=255"`
	Description   *string `json:"description" binding:"omitempty,max=5000"`
	Price         *string `json:"price" binding:"omitempty,money"`
	Category      *string `json:"category" binding:"omitempty,max=100"`
	ImageURL      *string `json:"image_url" binding:"omitempty,url"`
	StockQuantity *int    `json:"stock_quantity" binding:"omitempty,gte=0"`
	IsActive      *bool   `json:"is_active"`
}

type ProductColorRequest struct {
	ColorName     string `json:"color_name" binding:"required,max=50"`
	ColorHex      string `json:"color_hex" binding:"omitempty,hexcolor"`
	ImageURL      string `json:"image_url" binding:"omitempty,url"`
	StockQuantity int    `json:"stock_quantity" binding:"gte=0"`
}

type AddCartItemRequest struct {
	ProductID      int            `json:"product_id" binding:"required,gt=0"`
	Quantity       int            `json:"quantity" binding:"required,gte=1,lte=99"`
	Customizations Customizations `json:"customizations"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,gte=0,lte=99"`
}

type CheckoutRequest struct {
	Shipping        ShippingInfo `json:"shipping"`
	Notes           string       `json:"notes" binding:"omitempty,max=1000"`
	PaymentProvider string       `json:"payment_provider" binding:"omitempty,oneof=stripe paystack"`
}

type OrderLookupRequest struct {
	OrderNumber string `form:"order_number" binding:"required"`
	Email       string `form:"email" binding:"required,email"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,order_status"`
}

// PaymentRequest identifies the order to pay. Guests prove ownership of a
// guest order with the email used at checkout.
type PaymentRequest struct {
	OrderID int    `json:"order_id" binding:"required,gt=0"`
	Email   string `json:"email" binding:"omitempty,email"`
}

type PaystackVerifyRequest struct {
	Reference string `json:"reference" binding:"required,max=255"`
}

type InspirationRequest struct {
	Title       string `json:"title" binding:"required,min=2,max=255"`
	Description string `json:"description" binding:"omitempty,max=5000"`
	ImageURL    string `json:"image_url" binding:"omitempty,url"`
	Category    string `json:"category" binding:"omitempty,max=100"`
	Difficulty  string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	IsActive    *bool  `json:"is_active"`
}

type InspirationProductRequest struct {
	ProductID    int  `json:"product_id" binding:"required,gt=0"`
	DisplayOrder int  `json:"display_order" binding:"gte=0"`
	IsPrimary    bool `json:"is_primary"`
}

type ReorderProductsRequest struct {
	ProductIDs []int `json:"product_ids" binding:"required,min=1,dive,gt=0"`
}

type PageViewRequest struct {
	Path     string `json:"path" binding:"required,max=500"`
	Referrer string `json:"referrer" binding:"omitempty,max=2000"`
}

type EventRequest struct {
	EventType string         `json:"event_type" binding:"required,max=100"`
	EventData map[string]any `json:"event_data"`
}

type ErrorLogRequest struct {
	Message  string `json:"message" binding:"required,max=5000"`
	Stack    string `json:"stack" binding:"omitempty,max=20000"`
	Path     string `json:"path" binding:"omitempty,max=500"`
	Severity string `json:"severity" binding:"omitempty,oneof=info warning error critical"`
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type MetaData struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

type PaginationLinks struct {
	Self string `json:"self"`
	Next string `json:"next,omitempty"`
	Prev string `json:"prev,omitempty"`
}

type PaginationResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    interface{}     `json:"data"`
	Meta    MetaData        `json:"meta"`
	Links   PaginationLinks `json:"links"`
}

// Page is a slice of results plus the total row count before pagination.
type Page[T any] struct {
	Items []T
	Total int
}
