package postgres

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"

	"github.com/lumapp/marketplace/domain/order"
	"github.com/lumapp/marketplace/domain/shared"
	"github.com/lumapp/marketplace/infrastructure/persistence"
	"github.com/lumapp/marketplace/infrastructure/persistence/postgres/po"
)

// OrderQueryService is the read-side implementation. Every result is fully
// hydrated; children are collected in one batched query per table rather
// than one query per row.
type OrderQueryService struct {
	db   *gorm.DB
	repo *OrderRepository
}

func NewOrderQueryService(db *gorm.DB) *OrderQueryService {
	return &OrderQueryService{db: db, repo: NewOrderRepository(db)}
}

func (q *OrderQueryService) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return q.db.WithContext(ctx)
}

func (q *OrderQueryService) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	return q.repo.FindByID(ctx, id)
}

func (q *OrderQueryService) GetByExternalID(ctx context.Context, externalID string) (*order.Order, error) {
	return q.repo.FindByExternalID(ctx, externalID)
}

func (q *OrderQueryService) List(ctx context.Context, filter order.Filter) ([]*order.Order, error) {
	return q.list(ctx, filter.Normalize())
}

func (q *OrderQueryService) ListByUser(ctx context.Context, userID int64, filter order.Filter) ([]*order.Order, error) {
	filter.UserID = &userID
	return q.list(ctx, filter.Normalize())
}

func (q *OrderQueryService) list(ctx context.Context, filter order.Filter) ([]*order.Order, error) {
	db := q.getDB(ctx)

	query := db.Model(&po.OrderPO{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.StoreID != nil {
		// A store filter matches via sub-orders; the subquery keeps each
		// matching order in the result exactly once.
		query = query.Where("id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Model(&po.SubOrderPO{}).
				Select("order_id").
				Where("store_id = ?", *filter.StoreID))
	}

	var orderPOs []po.OrderPO
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&orderPOs).Error; err != nil {
		return nil, shared.NewPersistenceError("order", err)
	}
	if len(orderPOs) == 0 {
		return []*order.Order{}, nil
	}

	orderIDs := make([]int64, len(orderPOs))
	for i, orderPO := range orderPOs {
		orderIDs[i] = orderPO.ID
	}

	subs, itemsBySub, messages, err := q.repo.loadChildren(db, orderIDs)
	if err != nil {
		return nil, err
	}

	orders := make([]*order.Order, len(orderPOs))
	for i, orderPO := range orderPOs {
		orders[i] = orderPO.ToDomain(subs[orderPO.ID], itemsBySub, messages[orderPO.ID])
	}
	return orders, nil
}

// GetSubOrderOwner resolves the order id owning a sub-order, for handlers
// addressing sub-orders directly.
func (q *OrderQueryService) GetSubOrderOwner(ctx context.Context, subOrderID int64) (int64, error) {
	db := q.getDB(ctx)

	var subPO po.SubOrderPO
	if err := db.Select("id", "order_id").First(&subPO, "id = ?", subOrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, order.NewSubOrderNotFoundError(strconv.FormatInt(subOrderID, 10))
		}
		return 0, shared.NewPersistenceError("sub_order", err)
	}
	return subPO.OrderID, nil
}

var _ order.QueryService = (*OrderQueryService)(nil)
