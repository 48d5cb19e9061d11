package order

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumapp/marketplace/domain/catalog"
	"github.com/lumapp/marketplace/domain/order"
	"github.com/lumapp/marketplace/domain/shared"
	"github.com/lumapp/marketplace/domain/store"
	"github.com/lumapp/marketplace/domain/user"
)

// fakeUnitOfWork runs the closure without a transaction and collects the
// registered aggregates so tests can assert event flow.
type fakeUnitOfWork struct {
	registered []shared.AggregateRoot
}

func (u *fakeUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
func (u *fakeUnitOfWork) RegisterNew(a shared.AggregateRoot)     { u.registered = append(u.registered, a) }
func (u *fakeUnitOfWork) RegisterDirty(a shared.AggregateRoot)   { u.registered = append(u.registered, a) }
func (u *fakeUnitOfWork) RegisterRemoved(a shared.AggregateRoot) { u.registered = append(u.registered, a) }

type fakeUoWFactory struct {
	last *fakeUnitOfWork
}

func (f *fakeUoWFactory) New() shared.UnitOfWork {
	f.last = &fakeUnitOfWork{}
	return f.last
}

// fakeOrderRepo keeps aggregates in memory keyed by their internal ids.
type fakeOrderRepo struct {
	orders   map[int64]*order.Order
	messages map[int64]*order.Message
	nextID   int64
	nextMsg  int64
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:   map[int64]*order.Order{},
		messages: map[int64]*order.Message{},
		nextID:   1,
		nextMsg:  1,
	}
}

func (r *fakeOrderRepo) Create(ctx context.Context, o *order.Order) error {
	id := r.nextID
	r.nextID++
	subIDs := make([]int64, len(o.SubOrders()))
	itemIDs := make([][]int64, len(o.SubOrders()))
	for i, sub := range o.SubOrders() {
		subIDs[i] = id*100 + int64(i)
		ids := make([]int64, len(sub.Items()))
		for j := range sub.Items() {
			ids[j] = id*1000 + int64(i*10+j)
		}
		itemIDs[i] = ids
	}
	o.BindIdentity(id, subIDs, itemIDs)
	o.ClearNew()
	r.orders[id] = o
	return nil
}

func (r *fakeOrderRepo) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	o, ok := r.orders[id]
	if !ok || o.DeletedAt() != nil {
		return nil, order.NewOrderNotFoundError("test")
	}
	return o, nil
}

func (r *fakeOrderRepo) FindByExternalID(ctx context.Context, externalID string) (*order.Order, error) {
	for _, o := range r.orders {
		if o.ExternalID() == externalID && o.DeletedAt() == nil {
			return o, nil
		}
	}
	return nil, order.NewOrderNotFoundError(externalID)
}

func (r *fakeOrderRepo) FindBySubOrderID(ctx context.Context, subOrderID int64) (*order.Order, error) {
	for _, o := range r.orders {
		if o.DeletedAt() != nil {
			continue
		}
		for _, sub := range o.SubOrders() {
			if sub.ID() == subOrderID {
				return o, nil
			}
		}
	}
	return nil, order.NewSubOrderNotFoundError("test")
}

func (r *fakeOrderRepo) Update(ctx context.Context, o *order.Order) error {
	o.IncrementVersionForSave()
	return nil
}

func (r *fakeOrderRepo) SoftDelete(ctx context.Context, o *order.Order) error {
	o.IncrementVersionForSave()
	return nil
}

func (r *fakeOrderRepo) CreateMessage(ctx context.Context, m *order.Message) error {
	id := r.nextMsg
	r.nextMsg++
	m.BindIdentity(id)
	stored := order.ReconstructMessage(order.MessageReconstructionDTO{
		ID:          id,
		ExternalID:  m.ExternalID(),
		OrderID:     m.OrderID(),
		SenderID:    m.SenderID(),
		RecipientID: m.RecipientID(),
		Body:        m.Body(),
		Attachments: m.Attachments(),
		IsRead:      m.IsRead(),
		CreatedAt:   m.CreatedAt(),
		ReadAt:      m.ReadAt(),
	})
	r.messages[id] = &stored
	return nil
}

func (r *fakeOrderRepo) FindMessageByID(ctx context.Context, id int64) (*order.Message, error) {
	m, ok := r.messages[id]
	if !ok {
		return nil, order.NewMessageNotFoundError("test")
	}
	return m, nil
}

func (r *fakeOrderRepo) MarkMessageRead(ctx context.Context, m *order.Message) error { return nil }

func (r *fakeOrderRepo) ListMessages(ctx context.Context, orderID int64) ([]order.Message, error) {
	var out []order.Message
	for _, m := range r.messages {
		if m.OrderID() == orderID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

// fakeQuery serves reads straight from the write-side fake.
type fakeQuery struct {
	repo *fakeOrderRepo
}

func (q *fakeQuery) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	return q.repo.FindByID(ctx, id)
}

func (q *fakeQuery) GetByExternalID(ctx context.Context, externalID string) (*order.Order, error) {
	return q.repo.FindByExternalID(ctx, externalID)
}

func (q *fakeQuery) List(ctx context.Context, filter order.Filter) ([]*order.Order, error) {
	filter = filter.Normalize()
	var out []*order.Order
	for _, o := range q.repo.orders {
		if o.DeletedAt() != nil {
			continue
		}
		if filter.UserID != nil && o.UserID() != *filter.UserID {
			continue
		}
		if filter.Status != nil && o.Status() != *filter.Status {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (q *fakeQuery) ListByUser(ctx context.Context, userID int64, filter order.Filter) ([]*order.Order, error) {
	filter.UserID = &userID
	return q.List(ctx, filter)
}

// fakeUserRepo and friends only answer the existence checks the order flow
// performs.
type fakeUserRepo struct {
	ids map[int64]bool
}

func (r *fakeUserRepo) Create(ctx context.Context, u *user.User) error   { return nil }
func (r *fakeUserRepo) FindByID(ctx context.Context, id int64) (*user.User, error) {
	return nil, shared.NewNotFoundError("user", "")
}
func (r *fakeUserRepo) FindByExternalID(ctx context.Context, externalID string) (*user.User, error) {
	return nil, shared.NewNotFoundError("user", "")
}
func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return nil, shared.NewNotFoundError("user", "")
}
func (r *fakeUserRepo) List(ctx context.Context, limit, offset int) ([]*user.User, error) {
	return nil, nil
}
func (r *fakeUserRepo) Update(ctx context.Context, u *user.User) error { return nil }
func (r *fakeUserRepo) Exists(ctx context.Context, id int64) (bool, error) {
	return r.ids[id], nil
}

type fakeStoreRepo struct {
	ids map[int64]bool
}

func (r *fakeStoreRepo) Create(ctx context.Context, s *store.Store) error { return nil }
func (r *fakeStoreRepo) FindByID(ctx context.Context, id int64) (*store.Store, error) {
	return nil, shared.NewNotFoundError("store", "")
}
func (r *fakeStoreRepo) FindBySlug(ctx context.Context, slug string) (*store.Store, error) {
	return nil, shared.NewNotFoundError("store", "")
}
func (r *fakeStoreRepo) List(ctx context.Context, limit, offset int) ([]*store.Store, error) {
	return nil, nil
}
func (r *fakeStoreRepo) Update(ctx context.Context, s *store.Store) error { return nil }
func (r *fakeStoreRepo) Exists(ctx context.Context, id int64) (bool, error) {
	return r.ids[id], nil
}

type fakeCatalogRepo struct {
	products map[int64]bool
	variants map[int64]bool
}

func (r *fakeCatalogRepo) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	if !r.products[id] {
		return nil, shared.NewNotFoundError("product", "")
	}
	return &catalog.Product{ID: id}, nil
}
func (r *fakeCatalogRepo) FindVariantByID(ctx context.Context, id int64) (*catalog.Variant, error) {
	if !r.variants[id] {
		return nil, shared.NewNotFoundError("product variant", "")
	}
	return &catalog.Variant{ID: id}, nil
}
func (r *fakeCatalogRepo) Exists(ctx context.Context, id int64) (bool, error) {
	return r.products[id], nil
}

type fixture struct {
	service *ApplicationService
	repo    *fakeOrderRepo
	uow     *fakeUoWFactory
}

func newFixture() *fixture {
	repo := newFakeOrderRepo()
	uow := &fakeUoWFactory{}
	service := NewApplicationService(
		repo,
		&fakeQuery{repo: repo},
		&fakeUserRepo{ids: map[int64]bool{7: true, 8: true}},
		&fakeStoreRepo{ids: map[int64]bool{11: true, 12: true}},
		&fakeCatalogRepo{
			products: map[int64]bool{1: true, 2: true, 3: true},
			variants: map[int64]bool{42: true},
		},
		uow,
	)
	return &fixture{service: service, repo: repo, uow: uow}
}

func validCreateRequest() CreateOrderRequest {
	return CreateOrderRequest{
		UserID: 7,
		SubOrders: []SubOrderRequest{
			{
				StoreID:           11,
				ShippingCOP:       200,
				MarketplaceFeeCOP: 300,
				Items: []OrderItemRequest{
					{ProductID: 1, Title: "Ceramic mug", UnitPriceCOP: 1000, Quantity: 2},
					{ProductID: 2, Title: "Coaster set", UnitPriceCOP: 500, Quantity: 1},
				},
			},
		},
	}
}

func TestCreateOrder(t *testing.T) {
	f := newFixture()

	resp, err := f.service.CreateOrder(context.Background(), validCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(2700), resp.TotalAmountCOP)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "COP", resp.Currency)
	assert.NotZero(t, resp.ID)
	assert.NotEmpty(t, resp.ExternalID)

	require.Len(t, resp.SubOrders, 1)
	sub := resp.SubOrders[0]
	assert.Equal(t, int64(2500), sub.SubtotalCOP)
	assert.Equal(t, int64(2400), sub.SellerNetCOP)
	require.Len(t, sub.Items, 2)
	assert.Equal(t, int64(2000), sub.Items[0].TotalPriceCOP)

	// The aggregate was registered so its events reach the outbox.
	require.Len(t, f.uow.last.registered, 1)
}

func TestCreateOrderUnknownReferences(t *testing.T) {
	f := newFixture()

	req := validCreateRequest()
	req.UserID = 999
	_, err := f.service.CreateOrder(context.Background(), req)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	req = validCreateRequest()
	req.SubOrders[0].StoreID = 999
	_, err = f.service.CreateOrder(context.Background(), req)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	req = validCreateRequest()
	req.SubOrders[0].Items[0].ProductID = 999
	_, err = f.service.CreateOrder(context.Background(), req)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	req = validCreateRequest()
	unknown := int64(999)
	req.SubOrders[0].Items[0].ProductVariantID = &unknown
	_, err = f.service.CreateOrder(context.Background(), req)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	// Nothing was persisted by any failed attempt.
	assert.Empty(t, f.repo.orders)
}

func TestCreateOrderRejectsExcessiveFee(t *testing.T) {
	f := newFixture()

	req := validCreateRequest()
	req.SubOrders[0].MarketplaceFeeCOP = 999999
	_, err := f.service.CreateOrder(context.Background(), req)
	assert.ErrorIs(t, err, order.ErrNonPositiveSellerNet)
	assert.Empty(t, f.repo.orders)
}

func TestGetOrder(t *testing.T) {
	f := newFixture()
	created, err := f.service.CreateOrder(context.Background(), validCreateRequest())
	require.NoError(t, err)

	got, err := f.service.GetOrder(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ExternalID, got.ExternalID)

	byUUID, err := f.service.GetOrderByExternalID(context.Background(), created.ExternalID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byUUID.ID)

	_, err = f.service.GetOrder(context.Background(), 9999)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestListOrdersFilters(t *testing.T) {
	f := newFixture()
	_, err := f.service.CreateOrder(context.Background(), validCreateRequest())
	require.NoError(t, err)

	other := validCreateRequest()
	other.UserID = 8
	_, err = f.service.CreateOrder(context.Background(), other)
	require.NoError(t, err)

	all, err := f.service.ListOrders(context.Background(), ListOrdersQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	uid := int64(7)
	mine, err := f.service.ListOrders(context.Background(), ListOrdersQuery{UserID: &uid})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	bad := "not_a_status"
	_, err = f.service.ListOrders(context.Background(), ListOrdersQuery{Status: &bad})
	assert.ErrorIs(t, err, order.ErrInvalidStatus)

	byUser, err := f.service.GetUserOrders(context.Background(), 8, ListOrdersQuery{})
	require.NoError(t, err)
	assert.Len(t, byUser, 1)
}

func TestUpdateOrder(t *testing.T) {
	f := newFixture()
	created, err := f.service.CreateOrder(context.Background(), validCreateRequest())
	require.NoError(t, err)

	status := "confirmed"
	updated, err := f.service.UpdateOrder(context.Background(), created.ID, UpdateOrderRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "confirmed", updated.Status)

	// Totals never change through the update path.
	assert.Equal(t, created.TotalAmountCOP, updated.TotalAmountCOP)

	bad := "bogus"
	_, err = f.service.UpdateOrder(context.Background(), created.ID, UpdateOrderRequest{Status: &bad})
	assert.ErrorIs(t, err, order.ErrInvalidStatus)

	_, err = f.service.UpdateOrder(context.Background(), created.ID, UpdateOrderRequest{})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = f.service.UpdateOrder(context.Background(), 9999, UpdateOrderRequest{Status: &status})
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestDeleteOrder(t *testing.T) {
	f := newFixture()
	created, err := f.service.CreateOrder(context.Background(), validCreateRequest())
	require.NoError(t, err)

	err = f.service.DeleteOrder(context.Background(), created.ID)
	require.NoError(t, err)

	// A deleted order is gone from every read path.
	_, err = f.service.GetOrder(context.Background(), created.ID)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)

	err = f.service.DeleteOrder(context.Background(), created.ID)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestUpdateSubOrderStatus(t *testing.T) {
	f := newFixture()
	created, err := f.service.CreateOrder(context.Background(), validCreateRequest())
	require.NoError(t, err)
	subID := created.SubOrders[0].ID

	resp, err := f.service.UpdateSubOrderStatus(context.Background(), subID, UpdateSubOrderStatusRequest{Status: "confirmed"})
	require.NoError(t, err)
	assert.Equal(t, "confirmed", resp.SubOrders[0].Status)

	// The parent order status is not touched by sub-order fulfilment.
	assert.Equal(t, "pending", resp.Status)

	_, err = f.service.UpdateSubOrderStatus(context.Background(), subID, UpdateSubOrderStatusRequest{Status: "delivered"})
	assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)

	_, err = f.service.UpdateSubOrderStatus(context.Background(), 9999, UpdateSubOrderStatusRequest{Status: "confirmed"})
	assert.ErrorIs(t, err, order.ErrSubOrderNotFound)
}

func TestMessages(t *testing.T) {
	f := newFixture()
	created, err := f.service.CreateOrder(context.Background(), validCreateRequest())
	require.NoError(t, err)

	buyer, seller, stranger := int64(7), int64(8), int64(999)

	msg, err := f.service.CreateMessage(context.Background(), created.ID, CreateMessageRequest{
		SenderID:    &buyer,
		RecipientID: &seller,
		Body:        "When does it ship?",
		Attachments: json.RawMessage(`[{"url":"https://cdn.example.com/receipt.pdf"}]`),
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, msg.OrderID)
	require.NotNil(t, msg.SenderID)
	assert.Equal(t, buyer, *msg.SenderID)
	require.NotNil(t, msg.RecipientID)
	assert.Equal(t, seller, *msg.RecipientID)
	assert.JSONEq(t, `[{"url":"https://cdn.example.com/receipt.pdf"}]`, string(msg.Attachments))
	assert.False(t, msg.IsRead)

	// System notices post without a sender or recipient.
	notice, err := f.service.CreateMessage(context.Background(), created.ID, CreateMessageRequest{
		Body: "Your order has shipped.",
	})
	require.NoError(t, err)
	assert.Nil(t, notice.SenderID)
	assert.Nil(t, notice.RecipientID)

	// Unknown sender is a validation failure.
	_, err = f.service.CreateMessage(context.Background(), created.ID, CreateMessageRequest{
		SenderID: &stranger,
		Body:     "hi",
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	// So is an unknown recipient.
	_, err = f.service.CreateMessage(context.Background(), created.ID, CreateMessageRequest{
		SenderID:    &buyer,
		RecipientID: &stranger,
		Body:        "hi",
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	// Unknown order is not found, not validation.
	_, err = f.service.CreateMessage(context.Background(), 9999, CreateMessageRequest{
		SenderID: &buyer,
		Body:     "hi",
	})
	assert.ErrorIs(t, err, order.ErrOrderNotFound)

	list, err := f.service.ListMessages(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "When does it ship?", list[0].Body)

	_, err = f.service.ListMessages(context.Background(), 9999)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)

	read, err := f.service.MarkMessageRead(context.Background(), msg.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	assert.NotNil(t, read.ReadAt)

	_, err = f.service.MarkMessageRead(context.Background(), 9999)
	assert.ErrorIs(t, err, order.ErrMessageNotFound)
}
