/*
Package order is the monetary core of the marketplace: a customer order fans
out into per-store sub-orders, each holding the line items sold by that
store. The aggregate owns the reconciliation invariants across the three
levels:

	item.total     = item.unit_price × item.quantity
	sub.subtotal   = Σ item.total
	sub.seller_net = sub.subtotal + sub.shipping − sub.marketplace_fee
	order.total    = Σ (sub.subtotal + sub.shipping)

All totals are derived here and never accepted from callers. The whole nested
payload is validated by the factory before any persistence happens, so a
failing create writes nothing.
*/
package order

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/lumapp/marketplace/domain/shared"
)

// Order is the aggregate root. Sub-orders and items are only reachable
// through it; they are created in one batch with the order and the item rows
// are immutable afterwards.
type Order struct {
	id          int64
	externalID  string
	userID      int64
	currency    string
	totalAmount shared.Money
	status      Status

	// Opaque structured blobs, stored as-is. The core does not look inside.
	shippingAddress json.RawMessage
	billingAddress  json.RawMessage
	metadata        json.RawMessage

	version   int
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time

	subOrders []SubOrder

	// messages is populated on read paths only; the aggregate does not
	// manage message lifecycle beyond requiring the order to exist.
	messages []Message

	events []shared.DomainEvent
	isNew  bool
}

// SubOrder is the portion of an order fulfilled by one store.
type SubOrder struct {
	id             int64
	externalID     string
	orderID        int64
	storeID        int64
	subtotal       shared.Money
	shipping       shared.Money
	marketplaceFee shared.Money
	sellerNet      shared.Money
	status         Status
	items          []Item
	createdAt      time.Time
	updatedAt      time.Time
}

// Item is one product line within a sub-order. Title and unit price are
// point-in-time snapshots of the catalog, not live references.
type Item struct {
	id               int64
	subOrderID       int64
	productID        int64
	productVariantID *int64
	title            string
	unitPrice        shared.Money
	quantity         int
	totalPrice       shared.Money
	createdAt        time.Time
}

// DefaultCurrency is the marketplace settlement currency.
const DefaultCurrency = "COP"

// CreateSpec is the full nested payload for creating an order. Note the
// absence of any total: subtotals, seller net and the order total are
// derived, never supplied.
type CreateSpec struct {
	UserID          int64
	Currency        string
	ShippingAddress json.RawMessage
	BillingAddress  json.RawMessage
	Metadata        json.RawMessage
	SubOrders       []SubOrderSpec
}

// SubOrderSpec describes one store's portion of the order.
type SubOrderSpec struct {
	StoreID           int64
	ShippingCOP       int64
	MarketplaceFeeCOP int64
	Items             []ItemSpec
}

// ItemSpec describes one product line.
type ItemSpec struct {
	ProductID        int64
	ProductVariantID *int64
	Title            string
	UnitPriceCOP     int64
	Quantity         int
}

// NewOrder validates the whole tree and builds the aggregate with every
// total derived. This is the only way to create an Order; a returned error
// means nothing may be persisted.
func NewOrder(spec CreateSpec) (*Order, error) {
	if spec.UserID <= 0 {
		return nil, validationError(shared.ErrInvalidInput, "user_id", "user_id must be positive")
	}
	currency := spec.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	if len(spec.SubOrders) == 0 {
		return nil, validationError(ErrEmptySubOrders, "sub_orders", "order must have at least one sub-order")
	}

	now := time.Now()
	total := shared.MustMoney(0, currency)
	subOrders := make([]SubOrder, len(spec.SubOrders))

	for i, subSpec := range spec.SubOrders {
		sub, err := newSubOrder(subSpec, currency, now)
		if err != nil {
			return nil, err
		}
		subOrders[i] = *sub

		storeTotal, err := sub.subtotal.Add(sub.shipping)
		if err != nil {
			return nil, validationError(shared.ErrInvalidInput, "sub_orders", err.Error())
		}
		t, err := total.Add(*storeTotal)
		if err != nil {
			return nil, validationError(shared.ErrInvalidInput, "sub_orders", err.Error())
		}
		total = *t
	}

	o := &Order{
		externalID:      uuid.NewString(),
		userID:          spec.UserID,
		currency:        currency,
		totalAmount:     total,
		status:          StatusPending,
		shippingAddress: spec.ShippingAddress,
		billingAddress:  spec.BillingAddress,
		metadata:        spec.Metadata,
		version:         0,
		createdAt:       now,
		updatedAt:       now,
		subOrders:       subOrders,
		isNew:           true,
	}
	o.events = append(o.events, NewOrderPlacedEvent(o.externalID, o.userID, o.totalAmount))
	return o, nil
}

func newSubOrder(spec SubOrderSpec, currency string, now time.Time) (*SubOrder, error) {
	if spec.StoreID <= 0 {
		return nil, validationError(shared.ErrInvalidInput, "store_id", "store_id must be positive")
	}
	if len(spec.Items) == 0 {
		return nil, validationError(ErrEmptyItems, "order_items",
			"sub-order for store "+strconv.FormatInt(spec.StoreID, 10)+" must have at least one item")
	}
	if spec.ShippingCOP < 0 {
		return nil, validationError(ErrNegativeShipping, "shipping_cop", "shipping_cop cannot be negative")
	}
	if spec.MarketplaceFeeCOP < 0 {
		return nil, validationError(ErrNegativeFee, "marketplace_fee_cop", "marketplace_fee_cop cannot be negative")
	}

	subtotal := shared.MustMoney(0, currency)
	items := make([]Item, len(spec.Items))
	for i, itemSpec := range spec.Items {
		item, err := newItem(itemSpec, currency, now)
		if err != nil {
			return nil, err
		}
		items[i] = *item

		s, err := subtotal.Add(item.totalPrice)
		if err != nil {
			return nil, validationError(shared.ErrInvalidInput, "order_items", err.Error())
		}
		subtotal = *s
	}

	shipping := shared.MustMoney(spec.ShippingCOP, currency)
	fee := shared.MustMoney(spec.MarketplaceFeeCOP, currency)

	// seller_net = subtotal + shipping − fee, and sellers never owe the
	// marketplace: the result must come out positive.
	gross, err := subtotal.Add(shipping)
	if err != nil {
		return nil, validationError(shared.ErrInvalidInput, "shipping_cop", err.Error())
	}
	sellerNet, err := gross.Subtract(fee)
	if err != nil || sellerNet.IsZero() {
		return nil, validationError(ErrNonPositiveSellerNet, "marketplace_fee_cop",
			"marketplace fee leaves no positive seller net")
	}

	return &SubOrder{
		externalID:     uuid.NewString(),
		storeID:        spec.StoreID,
		subtotal:       subtotal,
		shipping:       shipping,
		marketplaceFee: fee,
		sellerNet:      *sellerNet,
		status:         StatusPending,
		items:          items,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

func newItem(spec ItemSpec, currency string, now time.Time) (*Item, error) {
	if spec.ProductID <= 0 {
		return nil, validationError(shared.ErrInvalidInput, "product_id", "product_id must be positive")
	}
	if spec.ProductVariantID != nil && *spec.ProductVariantID <= 0 {
		return nil, validationError(shared.ErrInvalidInput, "product_variant_id", "product_variant_id must be positive")
	}
	if spec.Title == "" {
		return nil, validationError(shared.ErrInvalidInput, "title", "item title cannot be empty")
	}
	if spec.UnitPriceCOP <= 0 {
		return nil, validationError(ErrInvalidUnitPrice, "unit_price_cop", "unit_price_cop must be positive")
	}
	if spec.Quantity <= 0 {
		return nil, validationError(ErrInvalidQuantity, "quantity", "quantity must be positive")
	}

	unitPrice := shared.MustMoney(spec.UnitPriceCOP, currency)
	totalPrice, err := unitPrice.Multiply(spec.Quantity)
	if err != nil {
		return nil, validationError(shared.ErrInvalidInput, "quantity", err.Error())
	}

	return &Item{
		productID:        spec.ProductID,
		productVariantID: spec.ProductVariantID,
		title:            spec.Title,
		unitPrice:        unitPrice,
		quantity:         spec.Quantity,
		totalPrice:       *totalPrice,
		createdAt:        now,
	}, nil
}

// Patch is the explicit partial-update structure for orders. One named field
// per updatable attribute; nil means "leave unchanged". Sub-orders and items
// are not mutable through this path.
type Patch struct {
	Status          *Status
	ShippingAddress *json.RawMessage
	BillingAddress  *json.RawMessage
	Metadata        *json.RawMessage
}

// IsEmpty reports whether the patch changes anything.
func (p Patch) IsEmpty() bool {
	return p.Status == nil && p.ShippingAddress == nil && p.BillingAddress == nil && p.Metadata == nil
}

// Apply mutates the order with the supplied patch. The status value has
// already been validated against the enumeration by ParseStatus.
func (o *Order) Apply(patch Patch) error {
	if patch.IsEmpty() {
		return validationError(shared.ErrInvalidInput, "", "update patch contains no updatable field")
	}
	if patch.Status != nil {
		o.status = *patch.Status
	}
	if patch.ShippingAddress != nil {
		o.shippingAddress = *patch.ShippingAddress
	}
	if patch.BillingAddress != nil {
		o.billingAddress = *patch.BillingAddress
	}
	if patch.Metadata != nil {
		o.metadata = *patch.Metadata
	}
	o.updatedAt = time.Now()
	o.events = append(o.events, NewOrderUpdatedEvent(o.externalID, string(o.status)))
	return nil
}

// MarkDeleted soft-deletes the order. Deleted orders disappear from every
// read path.
func (o *Order) MarkDeleted() {
	now := time.Now()
	o.deletedAt = &now
	o.updatedAt = now
	o.events = append(o.events, NewOrderDeletedEvent(o.externalID))
}

// ChangeSubOrderStatus moves one sub-order along the fulfilment graph:
// pending → confirmed → processing → shipped → delivered, with cancelled and
// refunded reachable from any non-terminal state.
func (o *Order) ChangeSubOrderStatus(subOrderID int64, target Status) error {
	for i := range o.subOrders {
		sub := &o.subOrders[i]
		if sub.id != subOrderID {
			continue
		}
		if !sub.status.CanTransitionTo(target) {
			return NewInvalidTransitionError(sub.status, target)
		}
		from := sub.status
		sub.status = target
		sub.updatedAt = time.Now()
		o.updatedAt = sub.updatedAt
		o.events = append(o.events, NewSubOrderStatusChangedEvent(o.externalID, sub.externalID, from, target))
		return nil
	}
	return NewSubOrderNotFoundError(strconv.FormatInt(subOrderID, 10))
}

// IncrementVersionForSave bumps the optimistic-lock counter. Called by the
// repository after a successful compare-and-swap write.
func (o *Order) IncrementVersionForSave() { o.version++ }

// ClearNew marks the aggregate as persisted. The repository calls it after
// the create transaction commits.
func (o *Order) ClearNew() { o.isNew = false }

// BindIdentity attaches the database-assigned numeric ids after the create
// transaction commits. Slices are positional, matching the order the
// sub-orders and items were inserted in.
func (o *Order) BindIdentity(id int64, subOrderIDs []int64, itemIDs [][]int64) {
	o.id = id
	for i := range o.subOrders {
		if i >= len(subOrderIDs) {
			break
		}
		sub := &o.subOrders[i]
		sub.id = subOrderIDs[i]
		sub.orderID = id
		if i >= len(itemIDs) {
			continue
		}
		for j := range sub.items {
			if j >= len(itemIDs[i]) {
				break
			}
			sub.items[j].id = itemIDs[i][j]
			sub.items[j].subOrderID = sub.id
		}
	}
}

// NoteMessagePosted records the message event on the order so the unit of
// work writes it to the outbox with the message insert.
func (o *Order) NoteMessagePosted(m *Message) {
	o.events = append(o.events, NewMessagePostedEvent(o.externalID, m.ExternalID(), m.SenderID()))
}

// AttachMessages sets the eagerly loaded conversation for read paths.
func (o *Order) AttachMessages(messages []Message) { o.messages = messages }

func (o *Order) ID() int64                       { return o.id }
func (o *Order) ExternalID() string              { return o.externalID }
func (o *Order) UserID() int64                   { return o.userID }
func (o *Order) Currency() string                { return o.currency }
func (o *Order) TotalAmount() shared.Money       { return o.totalAmount }
func (o *Order) Status() Status                  { return o.status }
func (o *Order) ShippingAddress() json.RawMessage { return o.shippingAddress }
func (o *Order) BillingAddress() json.RawMessage { return o.billingAddress }
func (o *Order) Metadata() json.RawMessage       { return o.metadata }
func (o *Order) Version() int                    { return o.version }
func (o *Order) CreatedAt() time.Time            { return o.createdAt }
func (o *Order) UpdatedAt() time.Time            { return o.updatedAt }
func (o *Order) DeletedAt() *time.Time           { return o.deletedAt }
func (o *Order) IsNew() bool                     { return o.isNew }

// SubOrders returns a copy; aggregate internals cannot be mutated from
// outside.
func (o *Order) SubOrders() []SubOrder {
	subs := make([]SubOrder, len(o.subOrders))
	copy(subs, o.subOrders)
	return subs
}

func (o *Order) Messages() []Message {
	msgs := make([]Message, len(o.messages))
	copy(msgs, o.messages)
	return msgs
}

// PullEvents returns and clears the recorded domain events.
func (o *Order) PullEvents() []shared.DomainEvent {
	events := o.events
	o.events = nil
	return events
}

func (s SubOrder) ID() int64                    { return s.id }
func (s SubOrder) ExternalID() string           { return s.externalID }
func (s SubOrder) OrderID() int64               { return s.orderID }
func (s SubOrder) StoreID() int64               { return s.storeID }
func (s SubOrder) Subtotal() shared.Money       { return s.subtotal }
func (s SubOrder) Shipping() shared.Money       { return s.shipping }
func (s SubOrder) MarketplaceFee() shared.Money { return s.marketplaceFee }
func (s SubOrder) SellerNet() shared.Money      { return s.sellerNet }
func (s SubOrder) Status() Status               { return s.status }
func (s SubOrder) CreatedAt() time.Time         { return s.createdAt }
func (s SubOrder) UpdatedAt() time.Time         { return s.updatedAt }

func (s SubOrder) Items() []Item {
	items := make([]Item, len(s.items))
	copy(items, s.items)
	return items
}

func (i Item) ID() int64                { return i.id }
func (i Item) SubOrderID() int64        { return i.subOrderID }
func (i Item) ProductID() int64         { return i.productID }
func (i Item) ProductVariantID() *int64 { return i.productVariantID }
func (i Item) Title() string            { return i.title }
func (i Item) UnitPrice() shared.Money  { return i.unitPrice }
func (i Item) Quantity() int            { return i.quantity }
func (i Item) TotalPrice() shared.Money { return i.totalPrice }
func (i Item) CreatedAt() time.Time     { return i.createdAt }

var _ shared.AggregateRoot = (*Order)(nil)
