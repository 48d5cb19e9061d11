package order

import (
	"github.com/lumapp/marketplace/domain/order"
)

func toCreateSpec(req CreateOrderRequest) order.CreateSpec {
	subOrders := make([]order.SubOrderSpec, len(req.SubOrders))
	for i, sub := range req.SubOrders {
		items := make([]order.ItemSpec, len(sub.Items))
		for j, item := range sub.Items {
			items[j] = order.ItemSpec{
				ProductID:        item.ProductID,
				ProductVariantID: item.ProductVariantID,
				Title:            item.Title,
				UnitPriceCOP:     item.UnitPriceCOP,
				Quantity:         item.Quantity,
			}
		}
		subOrders[i] = order.SubOrderSpec{
			StoreID:           sub.StoreID,
			ShippingCOP:       sub.ShippingCOP,
			MarketplaceFeeCOP: sub.MarketplaceFeeCOP,
			Items:             items,
		}
	}
	return order.CreateSpec{
		UserID:          req.UserID,
		Currency:        req.Currency,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		Metadata:        req.Metadata,
		SubOrders:       subOrders,
	}
}

func toOrderResponse(o *order.Order) *OrderResponse {
	subs := o.SubOrders()
	subResponses := make([]SubOrderResponse, len(subs))
	for i, sub := range subs {
		items := sub.Items()
		itemResponses := make([]OrderItemResponse, len(items))
		for j, item := range items {
			itemResponses[j] = OrderItemResponse{
				ID:               item.ID(),
				ProductID:        item.ProductID(),
				ProductVariantID: item.ProductVariantID(),
				Title:            item.Title(),
				UnitPriceCOP:     item.UnitPrice().Amount(),
				Quantity:         item.Quantity(),
				TotalPriceCOP:    item.TotalPrice().Amount(),
			}
		}
		subResponses[i] = SubOrderResponse{
			ID:                sub.ID(),
			ExternalID:        sub.ExternalID(),
			StoreID:           sub.StoreID(),
			SubtotalCOP:       sub.Subtotal().Amount(),
			ShippingCOP:       sub.Shipping().Amount(),
			MarketplaceFeeCOP: sub.MarketplaceFee().Amount(),
			SellerNetCOP:      sub.SellerNet().Amount(),
			Status:            string(sub.Status()),
			Items:             itemResponses,
			CreatedAt:         sub.CreatedAt(),
			UpdatedAt:         sub.UpdatedAt(),
		}
	}

	messages := o.Messages()
	messageResponses := make([]MessageResponse, len(messages))
	for i := range messages {
		messageResponses[i] = toMessageResponse(&messages[i])
	}

	return &OrderResponse{
		ID:              o.ID(),
		ExternalID:      o.ExternalID(),
		UserID:          o.UserID(),
		Currency:        o.Currency(),
		TotalAmountCOP:  o.TotalAmount().Amount(),
		Status:          string(o.Status()),
		ShippingAddress: o.ShippingAddress(),
		BillingAddress:  o.BillingAddress(),
		Metadata:        o.Metadata(),
		SubOrders:       subResponses,
		Messages:        messageResponses,
		CreatedAt:       o.CreatedAt(),
		UpdatedAt:       o.UpdatedAt(),
	}
}

func toOrderResponses(orders []*order.Order) []*OrderResponse {
	responses := make([]*OrderResponse, len(orders))
	for i, o := range orders {
		responses[i] = toOrderResponse(o)
	}
	return responses
}

func toMessageResponse(m *order.Message) MessageResponse {
	return MessageResponse{
		ID:          m.ID(),
		ExternalID:  m.ExternalID(),
		OrderID:     m.OrderID(),
		SenderID:    m.SenderID(),
		RecipientID: m.RecipientID(),
		Body:        m.Body(),
		Attachments: m.Attachments(),
		IsRead:      m.IsRead(),
		CreatedAt:   m.CreatedAt(),
		ReadAt:      m.ReadAt(),
	}
}
