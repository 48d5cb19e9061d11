// Package po holds the GORM persistence objects. They map tables and nothing
// else; foreign keys are plain columns and GORM associations are prohibited
// so aggregate boundaries stay in the domain layer.
package po

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/lumapp/marketplace/domain/order"
)

// OrderPO maps the orders table.
type OrderPO struct {
	ID              int64           `gorm:"primaryKey;autoIncrement"`
	ExternalID      string          `gorm:"size:36;uniqueIndex;not null"`
	UserID          int64           `gorm:"index;not null"`
	Currency        string          `gorm:"size:3;not null"`
	TotalAmount     int64           `gorm:"not null"`
	Status          string          `gorm:"size:20;index;not null"`
	ShippingAddress json.RawMessage `gorm:"type:jsonb"`
	BillingAddress  json.RawMessage `gorm:"type:jsonb"`
	Metadata        json.RawMessage `gorm:"type:jsonb"`
	Version         int             `gorm:"default:0;not null"`
	CreatedAt       time.Time       `gorm:"autoCreateTime;index"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime"`
	DeletedAt       gorm.DeletedAt  `gorm:"index"`
}

func (OrderPO) TableName() string { return "orders" }

// SubOrderPO maps the sub_orders table.
type SubOrderPO struct {
	ID             int64     `gorm:"primaryKey;autoIncrement"`
	ExternalID     string    `gorm:"size:36;uniqueIndex;not null"`
	OrderID        int64     `gorm:"index;not null"`
	StoreID        int64     `gorm:"index;not null"`
	Subtotal       int64     `gorm:"not null"`
	Shipping       int64     `gorm:"not null"`
	MarketplaceFee int64     `gorm:"not null"`
	SellerNet      int64     `gorm:"not null"`
	Status         string    `gorm:"size:20;index;not null"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (SubOrderPO) TableName() string { return "sub_orders" }

// OrderItemPO maps the order_items table. Rows are immutable after insert.
type OrderItemPO struct {
	ID               int64     `gorm:"primaryKey;autoIncrement"`
	SubOrderID       int64     `gorm:"index;not null"`
	ProductID        int64     `gorm:"not null"`
	ProductVariantID *int64    `gorm:""`
	Title            string    `gorm:"size:255;not null"`
	UnitPrice        int64     `gorm:"not null"`
	Quantity         int       `gorm:"not null"`
	TotalPrice       int64     `gorm:"not null"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
}

func (OrderItemPO) TableName() string { return "order_items" }

// OrderMessagePO maps the order_messages table. Sender and recipient are
// nullable user references.
type OrderMessagePO struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	ExternalID  string          `gorm:"size:36;uniqueIndex;not null"`
	OrderID     int64           `gorm:"index;not null"`
	FromUserID  *int64          `gorm:"index"`
	ToUserID    *int64          `gorm:"index"`
	Body        string          `gorm:"type:text;not null"`
	Attachments json.RawMessage `gorm:"type:jsonb"`
	IsRead      bool            `gorm:"default:false;not null"`
	CreatedAt   time.Time       `gorm:"autoCreateTime;index"`
	ReadAt      *time.Time      `gorm:""`
}

func (OrderMessagePO) TableName() string { return "order_messages" }

// FromOrderDomain flattens the aggregate into row objects for insertion.
// Sub-order and item POs are positional: itemPOs[i] belongs to subOrderPOs[i].
func FromOrderDomain(o *order.Order) (*OrderPO, []SubOrderPO, [][]OrderItemPO) {
	orderPO := &OrderPO{
		ID:              o.ID(),
		ExternalID:      o.ExternalID(),
		UserID:          o.UserID(),
		Currency:        o.Currency(),
		TotalAmount:     o.TotalAmount().Amount(),
		Status:          string(o.Status()),
		ShippingAddress: o.ShippingAddress(),
		BillingAddress:  o.BillingAddress(),
		Metadata:        o.Metadata(),
		Version:         o.Version(),
		CreatedAt:       o.CreatedAt(),
		UpdatedAt:       o.UpdatedAt(),
	}
	if deletedAt := o.DeletedAt(); deletedAt != nil {
		orderPO.DeletedAt = gorm.DeletedAt{Time: *deletedAt, Valid: true}
	}

	subs := o.SubOrders()
	subOrderPOs := make([]SubOrderPO, len(subs))
	itemPOs := make([][]OrderItemPO, len(subs))
	for i, sub := range subs {
		subOrderPOs[i] = SubOrderPO{
			ID:             sub.ID(),
			ExternalID:     sub.ExternalID(),
			OrderID:        o.ID(),
			StoreID:        sub.StoreID(),
			Subtotal:       sub.Subtotal().Amount(),
			Shipping:       sub.Shipping().Amount(),
			MarketplaceFee: sub.MarketplaceFee().Amount(),
			SellerNet:      sub.SellerNet().Amount(),
			Status:         string(sub.Status()),
			CreatedAt:      sub.CreatedAt(),
			UpdatedAt:      sub.UpdatedAt(),
		}
		items := sub.Items()
		itemPOs[i] = make([]OrderItemPO, len(items))
		for j, item := range items {
			itemPOs[i][j] = OrderItemPO{
				ID:               item.ID(),
				SubOrderID:       sub.ID(),
				ProductID:        item.ProductID(),
				ProductVariantID: item.ProductVariantID(),
				Title:            item.Title(),
				UnitPrice:        item.UnitPrice().Amount(),
				Quantity:         item.Quantity(),
				TotalPrice:       item.TotalPrice().Amount(),
				CreatedAt:        item.CreatedAt(),
			}
		}
	}

	return orderPO, subOrderPOs, itemPOs
}

// ToDomain rebuilds the aggregate from rows. Sub-order items and messages
// are grouped by their parent ids before the call.
func (po *OrderPO) ToDomain(subOrderPOs []SubOrderPO, itemsBySub map[int64][]OrderItemPO, messagePOs []OrderMessagePO) *order.Order {
	subDTOs := make([]order.SubOrderReconstructionDTO, len(subOrderPOs))
	for i, subPO := range subOrderPOs {
		itemPOs := itemsBySub[subPO.ID]
		itemDTOs := make([]order.ItemReconstructionDTO, len(itemPOs))
		for j, itemPO := range itemPOs {
			itemDTOs[j] = order.ItemReconstructionDTO{
				ID:               itemPO.ID,
				SubOrderID:       itemPO.SubOrderID,
				ProductID:        itemPO.ProductID,
				ProductVariantID: itemPO.ProductVariantID,
				Title:            itemPO.Title,
				UnitPriceCOP:     itemPO.UnitPrice,
				Quantity:         itemPO.Quantity,
				TotalPriceCOP:    itemPO.TotalPrice,
				CreatedAt:        itemPO.CreatedAt,
			}
		}
		subDTOs[i] = order.SubOrderReconstructionDTO{
			ID:                subPO.ID,
			ExternalID:        subPO.ExternalID,
			OrderID:           subPO.OrderID,
			StoreID:           subPO.StoreID,
			SubtotalCOP:       subPO.Subtotal,
			ShippingCOP:       subPO.Shipping,
			MarketplaceFeeCOP: subPO.MarketplaceFee,
			SellerNetCOP:      subPO.SellerNet,
			Status:            order.Status(subPO.Status),
			CreatedAt:         subPO.CreatedAt,
			UpdatedAt:         subPO.UpdatedAt,
			Items:             itemDTOs,
		}
	}

	messageDTOs := make([]order.MessageReconstructionDTO, len(messagePOs))
	for i, msgPO := range messagePOs {
		messageDTOs[i] = msgPO.toDTO()
	}

	var deletedAt *time.Time
	if po.DeletedAt.Valid {
		t := po.DeletedAt.Time
		deletedAt = &t
	}

	return order.Reconstruct(order.ReconstructionDTO{
		ID:              po.ID,
		ExternalID:      po.ExternalID,
		UserID:          po.UserID,
		Currency:        po.Currency,
		TotalAmountCOP:  po.TotalAmount,
		Status:          order.Status(po.Status),
		ShippingAddress: po.ShippingAddress,
		BillingAddress:  po.BillingAddress,
		Metadata:        po.Metadata,
		Version:         po.Version,
		CreatedAt:       po.CreatedAt,
		UpdatedAt:       po.UpdatedAt,
		DeletedAt:       deletedAt,
		SubOrders:       subDTOs,
		Messages:        messageDTOs,
	})
}

// FromMessageDomain converts a message entity to its row object.
func FromMessageDomain(m *order.Message) *OrderMessagePO {
	return &OrderMessagePO{
		ID:          m.ID(),
		ExternalID:  m.ExternalID(),
		OrderID:     m.OrderID(),
		FromUserID:  m.SenderID(),
		ToUserID:    m.RecipientID(),
		Body:        m.Body(),
		Attachments: m.Attachments(),
		IsRead:      m.IsRead(),
		CreatedAt:   m.CreatedAt(),
		ReadAt:      m.ReadAt(),
	}
}

func (po *OrderMessagePO) toDTO() order.MessageReconstructionDTO {
	return order.MessageReconstructionDTO{
		ID:          po.ID,
		ExternalID:  po.ExternalID,
		OrderID:     po.OrderID,
		SenderID:    po.FromUserID,
		RecipientID: po.ToUserID,
		Body:        po.Body,
		Attachments: po.Attachments,
		IsRead:      po.IsRead,
		CreatedAt:   po.CreatedAt,
		ReadAt:      po.ReadAt,
	}
}

// ToMessageDomain rebuilds a message entity from its row.
func (po *OrderMessagePO) ToMessageDomain() order.Message {
	return order.ReconstructMessage(po.toDTO())
}
