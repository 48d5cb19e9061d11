/*
Package order orchestrates the order business processes. Application
services validate references against the directories, call aggregate methods
for the actual rules, and wrap every write in a unit of work so the outbox
rows commit atomically with the state change.
*/
package order

import (
	"context"
	"strconv"

	"github.com/lumapp/marketplace/domain/catalog"
	"github.com/lumapp/marketplace/domain/order"
	"github.com/lumapp/marketplace/domain/shared"
	"github.com/lumapp/marketplace/domain/store"
	"github.com/lumapp/marketplace/domain/user"
)

// ApplicationService coordinates order writes and reads.
type ApplicationService struct {
	orderRepo   order.Repository
	query       order.QueryService
	userRepo    user.Repository
	storeRepo   store.Repository
	catalogRepo catalog.Repository
	uowFactory  shared.UnitOfWorkFactory
}

func NewApplicationService(
	orderRepo order.Repository,
	query order.QueryService,
	userRepo user.Repository,
	storeRepo store.Repository,
	catalogRepo catalog.Repository,
	uowFactory shared.UnitOfWorkFactory,
) *ApplicationService {
	return &ApplicationService{
		orderRepo:   orderRepo,
		query:       query,
		userRepo:    userRepo,
		storeRepo:   storeRepo,
		catalogRepo: catalogRepo,
		uowFactory:  uowFactory,
	}
}

// CreateOrder validates the referenced directory records, builds the
// aggregate with all totals derived, and persists the whole tree in one
// transaction. A validation failure anywhere writes nothing.
func (s *ApplicationService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	var o *order.Order

	uow := s.uowFactory.New()
	err := uow.Execute(ctx, func(ctx context.Context) error {
		if err := s.checkReferences(ctx, req); err != nil {
			return err
		}

		var err error
		o, err = order.NewOrder(toCreateSpec(req))
		if err != nil {
			return err
		}

		if err := s.orderRepo.Create(ctx, o); err != nil {
			return err
		}

		uow.RegisterNew(o)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toOrderResponse(o), nil
}

func (s *ApplicationService) checkReferences(ctx context.Context, req CreateOrderRequest) error {
	exists, err := s.userRepo.Exists(ctx, req.UserID)
	if err != nil {
		return err
	}
	if !exists {
		return shared.NewValidationError("order", "user_id",
			"user "+strconv.FormatInt(req.UserID, 10)+" does not exist")
	}

	for _, sub := range req.SubOrders {
		exists, err := s.storeRepo.Exists(ctx, sub.StoreID)
		if err != nil {
			return err
		}
		if !exists {
			return shared.NewValidationError("order", "store_id",
				"store "+strconv.FormatInt(sub.StoreID, 10)+" does not exist")
		}

		for _, item := range sub.Items {
			exists, err := s.catalogRepo.Exists(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if !exists {
				return shared.NewValidationError("order", "product_id",
					"product "+strconv.FormatInt(item.ProductID, 10)+" does not exist")
			}
			if item.ProductVariantID != nil {
				if _, err := s.catalogRepo.FindVariantByID(ctx, *item.ProductVariantID); err != nil {
					return shared.NewValidationError("order", "product_variant_id",
						"product variant "+strconv.FormatInt(*item.ProductVariantID, 10)+" does not exist")
				}
			}
		}
	}
	return nil
}

func (s *ApplicationService) GetOrder(ctx context.Context, id int64) (*OrderResponse, error) {
	o, err := s.query.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(o), nil
}

func (s *ApplicationService) GetOrderByExternalID(ctx context.Context, externalID string) (*OrderResponse, error) {
	o, err := s.query.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(o), nil
}

func (s *ApplicationService) ListOrders(ctx context.Context, q ListOrdersQuery) ([]*OrderResponse, error) {
	filter, err := toFilter(q)
	if err != nil {
		return nil, err
	}
	orders, err := s.query.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return toOrderResponses(orders), nil
}

func (s *ApplicationService) GetUserOrders(ctx context.Context, userID int64, q ListOrdersQuery) ([]*OrderResponse, error) {
	filter, err := toFilter(q)
	if err != nil {
		return nil, err
	}
	orders, err := s.query.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return toOrderResponses(orders), nil
}

func toFilter(q ListOrdersQuery) (order.Filter, error) {
	filter := order.Filter{
		UserID:  q.UserID,
		StoreID: q.StoreID,
		Limit:   q.Limit,
		Offset:  q.Offset,
	}
	if q.Status != nil {
		status, err := order.ParseStatus(*q.Status)
		if err != nil {
			return order.Filter{}, err
		}
		filter.Status = &status
	}
	return filter, nil
}

// UpdateOrder applies an explicit patch under the optimistic version guard.
// A lost race is retried with a freshly loaded aggregate before surfacing a
// conflict to the caller.
func (s *ApplicationService) UpdateOrder(ctx context.Context, id int64, req UpdateOrderRequest) (*OrderResponse, error) {
	patch := order.Patch{
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		Metadata:        req.Metadata,
	}
	if req.Status != nil {
		status, err := order.ParseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		patch.Status = &status
	}

	var o *order.Order
	uow := s.uowFactory.New()
	err := uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.orderRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := o.Apply(patch); err != nil {
			return err
		}
		if err := s.orderRepo.Update(ctx, o); err != nil {
			return err
		}
		uow.RegisterDirty(o)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toOrderResponse(o), nil
}

// DeleteOrder soft-deletes; the order disappears from all read paths.
func (s *ApplicationService) DeleteOrder(ctx context.Context, id int64) error {
	uow := s.uowFactory.New()
	return uow.Execute(ctx, func(ctx context.Context) error {
		o, err := s.orderRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		o.MarkDeleted()
		if err := s.orderRepo.SoftDelete(ctx, o); err != nil {
			return err
		}
		uow.RegisterRemoved(o)
		return nil
	})
}

// UpdateSubOrderStatus moves one sub-order along the fulfilment graph.
func (s *ApplicationService) UpdateSubOrderStatus(ctx context.Context, subOrderID int64, req UpdateSubOrderStatusRequest) (*OrderResponse, error) {
	status, err := order.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}

	var o *order.Order
	uow := s.uowFactory.New()
	err = uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.orderRepo.FindBySubOrderID(ctx, subOrderID)
		if err != nil {
			return err
		}
		if err := o.ChangeSubOrderStatus(subOrderID, status); err != nil {
			return err
		}
		if err := s.orderRepo.Update(ctx, o); err != nil {
			return err
		}
		uow.RegisterDirty(o)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toOrderResponse(o), nil
}

// CreateMessage posts to an order's thread. The order must exist and be
// live; sender and recipient, when given, must be known users.
func (s *ApplicationService) CreateMessage(ctx context.Context, orderID int64, req CreateMessageRequest) (*MessageResponse, error) {
	var m *order.Message

	uow := s.uowFactory.New()
	err := uow.Execute(ctx, func(ctx context.Context) error {
		o, err := s.orderRepo.FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		if err := s.checkMessageParticipant(ctx, "from_user_id", req.SenderID); err != nil {
			return err
		}
		if err := s.checkMessageParticipant(ctx, "to_user_id", req.RecipientID); err != nil {
			return err
		}

		m, err = order.NewMessage(o.ID(), order.MessageSpec{
			SenderID:    req.SenderID,
			RecipientID: req.RecipientID,
			Body:        req.Body,
			Attachments: req.Attachments,
		})
		if err != nil {
			return err
		}
		if err := s.orderRepo.CreateMessage(ctx, m); err != nil {
			return err
		}

		o.NoteMessagePosted(m)
		uow.RegisterDirty(o)
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := toMessageResponse(m)
	return &resp, nil
}

func (s *ApplicationService) checkMessageParticipant(ctx context.Context, field string, userID *int64) error {
	if userID == nil {
		return nil
	}
	exists, err := s.userRepo.Exists(ctx, *userID)
	if err != nil {
		return err
	}
	if !exists {
		return shared.NewValidationError("order_message", field,
			"user "+strconv.FormatInt(*userID, 10)+" does not exist")
	}
	return nil
}

func (s *ApplicationService) ListMessages(ctx context.Context, orderID int64) ([]MessageResponse, error) {
	// The existence check keeps "order absent" distinct from "no messages".
	if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		return nil, err
	}

	messages, err := s.orderRepo.ListMessages(ctx, orderID)
	if err != nil {
		return nil, err
	}

	responses := make([]MessageResponse, len(messages))
	for i := range messages {
		responses[i] = toMessageResponse(&messages[i])
	}
	return responses, nil
}

// MarkMessageRead flips the read flag; repeated calls are idempotent.
func (s *ApplicationService) MarkMessageRead(ctx context.Context, messageID int64) (*MessageResponse, error) {
	m, err := s.orderRepo.FindMessageByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	m.MarkRead()
	if err := s.orderRepo.MarkMessageRead(ctx, m); err != nil {
		return nil, err
	}

	resp := toMessageResponse(m)
	return &resp, nil
}
