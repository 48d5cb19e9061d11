package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/lumapp/marketplace/domain/order"
	"github.com/lumapp/marketplace/domain/shared"
	"github.com/lumapp/marketplace/infrastructure/persistence"
	"github.com/lumapp/marketplace/infrastructure/persistence/postgres/po"
)

// OrderRepository is the GORM implementation of the order write port.
// Children are written as plain rows keyed by parent id; GORM associations
// are never used so the aggregate boundary stays in the domain layer.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// getDB returns the transaction from context if available, otherwise the
// default db handle.
func (r *OrderRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// Create inserts the whole aggregate tree. When called inside a unit of work
// the transaction comes from context; standalone calls open their own so the
// tree is never partially written.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return r.createInTx(tx, o)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.createInTx(tx, o)
	})
}

func (r *OrderRepository) createInTx(tx *gorm.DB, o *order.Order) error {
	orderPO, subOrderPOs, itemPOs := po.FromOrderDomain(o)
	orderPO.ID = 0

	if err := tx.Create(orderPO).Error; err != nil {
		return shared.NewPersistenceError("order", err)
	}

	subIDs := make([]int64, len(subOrderPOs))
	itemIDs := make([][]int64, len(subOrderPOs))
	for i := range subOrderPOs {
		subOrderPOs[i].ID = 0
		subOrderPOs[i].OrderID = orderPO.ID
		if err := tx.Create(&subOrderPOs[i]).Error; err != nil {
			return shared.NewPersistenceError("sub_order", err)
		}
		subIDs[i] = subOrderPOs[i].ID

		itemIDs[i] = make([]int64, len(itemPOs[i]))
		for j := range itemPOs[i] {
			itemPOs[i][j].ID = 0
			itemPOs[i][j].SubOrderID = subOrderPOs[i].ID
		}
		if len(itemPOs[i]) > 0 {
			if err := tx.Create(&itemPOs[i]).Error; err != nil {
				return shared.NewPersistenceError("order_item", err)
			}
			for j := range itemPOs[i] {
				itemIDs[i][j] = itemPOs[i][j].ID
			}
		}
	}

	o.BindIdentity(orderPO.ID, subIDs, itemIDs)
	o.ClearNew()
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *OrderRepository) FindByExternalID(ctx context.Context, externalID string) (*order.Order, error) {
	return r.findOne(ctx, "external_id = ?", externalID)
}

func (r *OrderRepository) FindBySubOrderID(ctx context.Context, subOrderID int64) (*order.Order, error) {
	db := r.getDB(ctx)

	var subPO po.SubOrderPO
	if err := db.First(&subPO, "id = ?", subOrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.NewSubOrderNotFoundError(strconv.FormatInt(subOrderID, 10))
		}
		return nil, shared.NewPersistenceError("sub_order", err)
	}

	return r.findOne(ctx, "id = ?", subPO.OrderID)
}

func (r *OrderRepository) findOne(ctx context.Context, query string, arg any) (*order.Order, error) {
	db := r.getDB(ctx)

	var orderPO po.OrderPO
	if err := db.First(&orderPO, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.NewOrderNotFoundError(argString(arg))
		}
		return nil, shared.NewPersistenceError("order", err)
	}

	subs, itemsBySub, messages, err := r.loadChildren(db, []int64{orderPO.ID})
	if err != nil {
		return nil, err
	}
	return orderPO.ToDomain(subs[orderPO.ID], itemsBySub, messages[orderPO.ID]), nil
}

// loadChildren fetches sub-orders, items and messages for a batch of orders
// in three queries total, grouped by parent id.
func (r *OrderRepository) loadChildren(db *gorm.DB, orderIDs []int64) (map[int64][]po.SubOrderPO, map[int64][]po.OrderItemPO, map[int64][]po.OrderMessagePO, error) {
	var subPOs []po.SubOrderPO
	if err := db.Where("order_id IN ?", orderIDs).Order("id").Find(&subPOs).Error; err != nil {
		return nil, nil, nil, shared.NewPersistenceError("sub_order", err)
	}

	subsByOrder := make(map[int64][]po.SubOrderPO, len(orderIDs))
	subIDs := make([]int64, 0, len(subPOs))
	for _, subPO := range subPOs {
		subsByOrder[subPO.OrderID] = append(subsByOrder[subPO.OrderID], subPO)
		subIDs = append(subIDs, subPO.ID)
	}

	itemsBySub := make(map[int64][]po.OrderItemPO, len(subIDs))
	if len(subIDs) > 0 {
		var itemPOs []po.OrderItemPO
		if err := db.Where("sub_order_id IN ?", subIDs).Order("id").Find(&itemPOs).Error; err != nil {
			return nil, nil, nil, shared.NewPersistenceError("order_item", err)
		}
		for _, itemPO := range itemPOs {
			itemsBySub[itemPO.SubOrderID] = append(itemsBySub[itemPO.SubOrderID], itemPO)
		}
	}

	var messagePOs []po.OrderMessagePO
	if err := db.Where("order_id IN ?", orderIDs).Order("created_at").Find(&messagePOs).Error; err != nil {
		return nil, nil, nil, shared.NewPersistenceError("order_message", err)
	}
	messagesByOrder := make(map[int64][]po.OrderMessagePO, len(orderIDs))
	for _, msgPO := range messagePOs {
		messagesByOrder[msgPO.OrderID] = append(messagesByOrder[msgPO.OrderID], msgPO)
	}

	return subsByOrder, itemsBySub, messagesByOrder, nil
}

// Update writes the mutable order columns guarded by the version column, and
// refreshes every sub-order status row. A zero-row update means another
// writer won the race, or the order is gone.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	db := r.getDB(ctx)

	result := db.Model(&po.OrderPO{}).
		Where("id = ? AND version = ?", o.ID(), o.Version()).
		Updates(map[string]any{
			"status":           string(o.Status()),
			"shipping_address": o.ShippingAddress(),
			"billing_address":  o.BillingAddress(),
			"metadata":         o.Metadata(),
			"updated_at":       o.UpdatedAt(),
			"version":          o.Version() + 1,
		})
	if result.Error != nil {
		return shared.NewPersistenceError("order", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.classifyMissedWrite(db, o.ID())
	}

	for _, sub := range o.SubOrders() {
		result := db.Model(&po.SubOrderPO{}).
			Where("id = ?", sub.ID()).
			Updates(map[string]any{
				"status":     string(sub.Status()),
				"updated_at": sub.UpdatedAt(),
			})
		if result.Error != nil {
			return shared.NewPersistenceError("sub_order", result.Error)
		}
	}

	o.IncrementVersionForSave()
	return nil
}

// SoftDelete stamps deleted_at under the same version guard as Update.
func (r *OrderRepository) SoftDelete(ctx context.Context, o *order.Order) error {
	db := r.getDB(ctx)

	result := db.Model(&po.OrderPO{}).
		Where("id = ? AND version = ?", o.ID(), o.Version()).
		Updates(map[string]any{
			"deleted_at": time.Now(),
			"version":    o.Version() + 1,
		})
	if result.Error != nil {
		return shared.NewPersistenceError("order", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.classifyMissedWrite(db, o.ID())
	}

	o.IncrementVersionForSave()
	return nil
}

// classifyMissedWrite distinguishes a lost optimistic race from a vanished
// row after a guarded update touched nothing.
func (r *OrderRepository) classifyMissedWrite(db *gorm.DB, id int64) error {
	var count int64
	if err := db.Model(&po.OrderPO{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return shared.NewPersistenceError("order", err)
	}
	if count == 0 {
		return order.NewOrderNotFoundError(strconv.FormatInt(id, 10))
	}
	return order.NewConcurrentModificationError(strconv.FormatInt(id, 10))
}

func (r *OrderRepository) CreateMessage(ctx context.Context, m *order.Message) error {
	db := r.getDB(ctx)

	messagePO := po.FromMessageDomain(m)
	messagePO.ID = 0
	if err := db.Create(messagePO).Error; err != nil {
		return shared.NewPersistenceError("order_message", err)
	}
	m.BindIdentity(messagePO.ID)
	return nil
}

func (r *OrderRepository) FindMessageByID(ctx context.Context, id int64) (*order.Message, error) {
	db := r.getDB(ctx)

	var messagePO po.OrderMessagePO
	if err := db.First(&messagePO, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.NewMessageNotFoundError(strconv.FormatInt(id, 10))
		}
		return nil, shared.NewPersistenceError("order_message", err)
	}
	m := messagePO.ToMessageDomain()
	return &m, nil
}

func (r *OrderRepository) MarkMessageRead(ctx context.Context, m *order.Message) error {
	db := r.getDB(ctx)

	result := db.Model(&po.OrderMessagePO{}).
		Where("id = ?", m.ID()).
		Updates(map[string]any{
			"is_read": m.IsRead(),
			"read_at": m.ReadAt(),
		})
	if result.Error != nil {
		return shared.NewPersistenceError("order_message", result.Error)
	}
	if result.RowsAffected == 0 {
		return order.NewMessageNotFoundError(strconv.FormatInt(m.ID(), 10))
	}
	return nil
}

func (r *OrderRepository) ListMessages(ctx context.Context, orderID int64) ([]order.Message, error) {
	db := r.getDB(ctx)

	var messagePOs []po.OrderMessagePO
	if err := db.Where("order_id = ?", orderID).Order("created_at").Find(&messagePOs).Error; err != nil {
		return nil, shared.NewPersistenceError("order_message", err)
	}

	messages := make([]order.Message, len(messagePOs))
	for i := range messagePOs {
		messages[i] = messagePOs[i].ToMessageDomain()
	}
	return messages, nil
}

func argString(arg any) string {
	switch v := arg.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

var _ order.Repository = (*OrderRepository)(nil)
