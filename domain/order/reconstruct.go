package order

import (
	"encoding/json"
	"time"

	"github.com/lumapp/marketplace/domain/shared"
)

// ReconstructionDTO rebuilds an Order from persisted state. Only the
// persistence layer should use it; it bypasses the factory invariants on the
// assumption that stored rows were validated when written.
type ReconstructionDTO struct {
	ID              int64
	ExternalID      string
	UserID          int64
	Currency        string
	TotalAmountCOP  int64
	Status          Status
	ShippingAddress json.RawMessage
	BillingAddress  json.RawMessage
	Metadata        json.RawMessage
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
	SubOrders       []SubOrderReconstructionDTO
	Messages        []MessageReconstructionDTO
}

type SubOrderReconstructionDTO struct {
	ID                int64
	ExternalID        string
	OrderID           int64
	StoreID           int64
	SubtotalCOP       int64
	ShippingCOP       int64
	MarketplaceFeeCOP int64
	SellerNetCOP      int64
	Status            Status
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Items             []ItemReconstructionDTO
}

type ItemReconstructionDTO struct {
	ID               int64
	SubOrderID       int64
	ProductID        int64
	ProductVariantID *int64
	Title            string
	UnitPriceCOP     int64
	Quantity         int
	TotalPriceCOP    int64
	CreatedAt        time.Time
}

// Reconstruct materializes an aggregate from stored rows.
func Reconstruct(dto ReconstructionDTO) *Order {
	currency := dto.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	subOrders := make([]SubOrder, len(dto.SubOrders))
	for i, subDTO := range dto.SubOrders {
		items := make([]Item, len(subDTO.Items))
		for j, itemDTO := range subDTO.Items {
			items[j] = Item{
				id:               itemDTO.ID,
				subOrderID:       itemDTO.SubOrderID,
				productID:        itemDTO.ProductID,
				productVariantID: itemDTO.ProductVariantID,
				title:            itemDTO.Title,
				unitPrice:        shared.MustMoney(itemDTO.UnitPriceCOP, currency),
				quantity:         itemDTO.Quantity,
				totalPrice:       shared.MustMoney(itemDTO.TotalPriceCOP, currency),
				createdAt:        itemDTO.CreatedAt,
			}
		}
		subOrders[i] = SubOrder{
			id:             subDTO.ID,
			externalID:     subDTO.ExternalID,
			orderID:        subDTO.OrderID,
			storeID:        subDTO.StoreID,
			subtotal:       shared.MustMoney(subDTO.SubtotalCOP, currency),
			shipping:       shared.MustMoney(subDTO.ShippingCOP, currency),
			marketplaceFee: shared.MustMoney(subDTO.MarketplaceFeeCOP, currency),
			sellerNet:      shared.MustMoney(subDTO.SellerNetCOP, currency),
			status:         subDTO.Status,
			items:          items,
			createdAt:      subDTO.CreatedAt,
			updatedAt:      subDTO.UpdatedAt,
		}
	}

	messages := make([]Message, len(dto.Messages))
	for i, msgDTO := range dto.Messages {
		messages[i] = ReconstructMessage(msgDTO)
	}

	return &Order{
		id:              dto.ID,
		externalID:      dto.ExternalID,
		userID:          dto.UserID,
		currency:        currency,
		totalAmount:     shared.MustMoney(dto.TotalAmountCOP, currency),
		status:          dto.Status,
		shippingAddress: dto.ShippingAddress,
		billingAddress:  dto.BillingAddress,
		metadata:        dto.Metadata,
		version:         dto.Version,
		createdAt:       dto.CreatedAt,
		updatedAt:       dto.UpdatedAt,
		deletedAt:       dto.DeletedAt,
		subOrders:       subOrders,
		messages:        messages,
		isNew:           false,
	}
}
