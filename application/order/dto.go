package order

import (
	"encoding/json"
	"time"
)

// CreateOrderRequest is the full nested create payload. No totals are
// accepted; every monetary aggregate is computed server-side.
type CreateOrderRequest struct {
	UserID          int64              `json:"user_id" binding:"required,min=1"`
	Currency        string             `json:"currency" binding:"omitempty,len=3"`
	ShippingAddress json.RawMessage    `json:"shipping_address"`
	BillingAddress  json.RawMessage    `json:"billing_address"`
	Metadata        json.RawMessage    `json:"metadata"`
	SubOrders       []SubOrderRequest  `json:"sub_orders" binding:"required,min=1,dive"`
}

// SubOrderRequest is one store's portion of the create payload.
type SubOrderRequest struct {
	StoreID           int64              `json:"store_id" binding:"required,min=1"`
	ShippingCOP       int64              `json:"shipping_cop" binding:"min=0"`
	MarketplaceFeeCOP int64              `json:"marketplace_fee_cop" binding:"min=0"`
	Items             []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// OrderItemRequest is one product line of the create payload.
type OrderItemRequest struct {
	ProductID        int64  `json:"product_id" binding:"required,min=1"`
	ProductVariantID *int64 `json:"product_variant_id"`
	Title            string `json:"title" binding:"required"`
	UnitPriceCOP     int64  `json:"unit_price_cop" binding:"required,min=1"`
	Quantity         int    `json:"quantity" binding:"required,min=1"`
}

// UpdateOrderRequest is the explicit partial-update payload. Absent fields
// stay untouched; present fields overwrite.
type UpdateOrderRequest struct {
	Status          *string          `json:"status"`
	ShippingAddress *json.RawMessage `json:"shipping_address"`
	BillingAddress  *json.RawMessage `json:"billing_address"`
	Metadata        *json.RawMessage `json:"metadata"`
}

// UpdateSubOrderStatusRequest moves a sub-order along the fulfilment graph.
type UpdateSubOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateMessageRequest posts a message on an order's thread. Sender and
// recipient are optional user references; system notices carry neither.
type CreateMessageRequest struct {
	SenderID    *int64          `json:"from_user_id" binding:"omitempty,min=1"`
	RecipientID *int64          `json:"to_user_id" binding:"omitempty,min=1"`
	Body        string          `json:"body" binding:"required"`
	Attachments json.RawMessage `json:"attachments"`
}

// ListOrdersQuery mirrors the list endpoint's query parameters.
type ListOrdersQuery struct {
	UserID  *int64  `form:"user_id"`
	Status  *string `form:"status"`
	StoreID *int64  `form:"store_id"`
	Limit   int     `form:"limit"`
	Offset  int     `form:"offset"`
}

// OrderResponse is the fully hydrated order view.
type OrderResponse struct {
	ID              int64               `json:"id"`
	ExternalID      string              `json:"external_id"`
	UserID          int64               `json:"user_id"`
	Currency        string              `json:"currency"`
	TotalAmountCOP  int64               `json:"total_amount_cop"`
	Status          string              `json:"status"`
	ShippingAddress json.RawMessage     `json:"shipping_address,omitempty"`
	BillingAddress  json.RawMessage     `json:"billing_address,omitempty"`
	Metadata        json.RawMessage     `json:"metadata,omitempty"`
	SubOrders       []SubOrderResponse  `json:"sub_orders"`
	Messages        []MessageResponse   `json:"messages,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// SubOrderResponse is one store's slice of the order view.
type SubOrderResponse struct {
	ID                int64               `json:"id"`
	ExternalID        string              `json:"external_id"`
	StoreID           int64               `json:"store_id"`
	SubtotalCOP       int64               `json:"subtotal_cop"`
	ShippingCOP       int64               `json:"shipping_cop"`
	MarketplaceFeeCOP int64               `json:"marketplace_fee_cop"`
	SellerNetCOP      int64               `json:"seller_net_cop"`
	Status            string              `json:"status"`
	Items             []OrderItemResponse `json:"items"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// OrderItemResponse is one line of the order view.
type OrderItemResponse struct {
	ID               int64  `json:"id"`
	ProductID        int64  `json:"product_id"`
	ProductVariantID *int64 `json:"product_variant_id,omitempty"`
	Title            string `json:"title"`
	UnitPriceCOP     int64  `json:"unit_price_cop"`
	Quantity         int    `json:"quantity"`
	TotalPriceCOP    int64  `json:"total_price_cop"`
}

// MessageResponse is one entry of the order thread.
type MessageResponse struct {
	ID          int64           `json:"id"`
	ExternalID  string          `json:"external_id"`
	OrderID     int64           `json:"order_id"`
	SenderID    *int64          `json:"from_user_id,omitempty"`
	RecipientID *int64          `json:"to_user_id,omitempty"`
	Body        string          `json:"body"`
	Attachments json.RawMessage `json:"attachments,omitempty"`
	IsRead      bool            `json:"is_read"`
	CreatedAt   time.Time       `json:"created_at"`
	ReadAt      *time.Time      `json:"read_at,omitempty"`
}
