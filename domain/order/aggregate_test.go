package order

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumapp/marketplace/domain/shared"
)

func validSpec() CreateSpec {
	return CreateSpec{
		UserID: 7,
		SubOrders: []SubOrderSpec{
			{
				StoreID:           11,
				ShippingCOP:       200,
				MarketplaceFeeCOP: 300,
				Items: []ItemSpec{
					{ProductID: 1, Title: "Ceramic mug", UnitPriceCOP: 1000, Quantity: 2},
					{ProductID: 2, Title: "Coaster set", UnitPriceCOP: 500, Quantity: 1},
				},
			},
		},
	}
}

func TestNewOrderDerivesAllTotals(t *testing.T) {
	variantID := int64(42)
	spec := validSpec()
	spec.SubOrders = append(spec.SubOrders, SubOrderSpec{
		StoreID:           12,
		ShippingCOP:       0,
		MarketplaceFeeCOP: 150,
		Items: []ItemSpec{
			{ProductID: 3, ProductVariantID: &variantID, Title: "Tote bag", UnitPriceCOP: 3000, Quantity: 1},
		},
	})

	o, err := NewOrder(spec)
	require.NoError(t, err)

	assert.Equal(t, int64(7), o.UserID())
	assert.Equal(t, DefaultCurrency, o.Currency())
	assert.Equal(t, StatusPending, o.Status())
	assert.NotEmpty(t, o.ExternalID())
	assert.True(t, o.IsNew())
	assert.Equal(t, 0, o.Version())

	subs := o.SubOrders()
	require.Len(t, subs, 2)

	// Store 11: 2×1000 + 1×500 = 2500 subtotal, net 2500+200−300 = 2400.
	first := subs[0]
	assert.Equal(t, int64(2500), first.Subtotal().Amount())
	assert.Equal(t, int64(200), first.Shipping().Amount())
	assert.Equal(t, int64(300), first.MarketplaceFee().Amount())
	assert.Equal(t, int64(2400), first.SellerNet().Amount())
	assert.Equal(t, StatusPending, first.Status())

	items := first.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(2000), items[0].TotalPrice().Amount())
	assert.Equal(t, int64(500), items[1].TotalPrice().Amount())

	// Store 12: 3000 subtotal, net 3000+0−150 = 2850.
	second := subs[1]
	assert.Equal(t, int64(3000), second.Subtotal().Amount())
	assert.Equal(t, int64(2850), second.SellerNet().Amount())
	require.Len(t, second.Items(), 1)
	assert.Equal(t, &variantID, second.Items()[0].ProductVariantID())

	// Order total sums subtotal plus shipping, never the fee:
	// (2500+200) + (3000+0) = 5700.
	assert.Equal(t, int64(5700), o.TotalAmount().Amount())

	events := o.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventOrderPlaced, events[0].EventName())
	assert.Equal(t, o.ExternalID(), events[0].AggregateID())
}

func TestNewOrderValidation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*CreateSpec)
		sentinel error
	}{
		{"zero user", func(s *CreateSpec) { s.UserID = 0 }, shared.ErrInvalidInput},
		{"no sub-orders", func(s *CreateSpec) { s.SubOrders = nil }, ErrEmptySubOrders},
		{"zero store", func(s *CreateSpec) { s.SubOrders[0].StoreID = 0 }, shared.ErrInvalidInput},
		{"no items", func(s *CreateSpec) { s.SubOrders[0].Items = nil }, ErrEmptyItems},
		{"negative shipping", func(s *CreateSpec) { s.SubOrders[0].ShippingCOP = -1 }, ErrNegativeShipping},
		{"negative fee", func(s *CreateSpec) { s.SubOrders[0].MarketplaceFeeCOP = -1 }, ErrNegativeFee},
		{"zero quantity", func(s *CreateSpec) { s.SubOrders[0].Items[0].Quantity = 0 }, ErrInvalidQuantity},
		{"zero unit price", func(s *CreateSpec) { s.SubOrders[0].Items[0].UnitPriceCOP = 0 }, ErrInvalidUnitPrice},
		{"empty title", func(s *CreateSpec) { s.SubOrders[0].Items[0].Title = "" }, shared.ErrInvalidInput},
		{"bad variant id", func(s *CreateSpec) {
			bad := int64(0)
			s.SubOrders[0].Items[0].ProductVariantID = &bad
		}, shared.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := validSpec()
			tt.mutate(&spec)
			o, err := NewOrder(spec)
			assert.Nil(t, o)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			// Every rejection is a validation failure to the API layer.
			assert.ErrorIs(t, err, shared.ErrInvalidInput)
		})
	}
}

func TestNewOrderRejectsNonPositiveSellerNet(t *testing.T) {
	// subtotal 2500 + shipping 200 = 2700 gross.
	spec := validSpec()

	// Fee larger than gross drives the net negative.
	spec.SubOrders[0].MarketplaceFeeCOP = 2701
	_, err := NewOrder(spec)
	assert.ErrorIs(t, err, ErrNonPositiveSellerNet)

	// A net of exactly zero is rejected as well.
	spec.SubOrders[0].MarketplaceFeeCOP = 2700
	_, err = NewOrder(spec)
	assert.ErrorIs(t, err, ErrNonPositiveSellerNet)

	// One centavo of net is enough.
	spec.SubOrders[0].MarketplaceFeeCOP = 2699
	o, err := NewOrder(spec)
	require.NoError(t, err)
	assert.Equal(t, int64(1), o.SubOrders()[0].SellerNet().Amount())
}

func TestApplyPatch(t *testing.T) {
	o, err := NewOrder(validSpec())
	require.NoError(t, err)
	o.PullEvents()

	confirmed := StatusConfirmed
	addr := json.RawMessage(`{"city":"Bogotá"}`)
	err = o.Apply(Patch{Status: &confirmed, ShippingAddress: &addr})
	require.NoError(t, err)

	assert.Equal(t, StatusConfirmed, o.Status())
	assert.Equal(t, addr, o.ShippingAddress())
	assert.Nil(t, o.BillingAddress())

	events := o.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventOrderUpdated, events[0].EventName())
}

func TestApplyEmptyPatch(t *testing.T) {
	o, err := NewOrder(validSpec())
	require.NoError(t, err)

	err = o.Apply(Patch{})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Equal(t, StatusPending, o.Status())
}

func TestMarkDeleted(t *testing.T) {
	o, err := NewOrder(validSpec())
	require.NoError(t, err)
	o.PullEvents()

	require.Nil(t, o.DeletedAt())
	o.MarkDeleted()
	require.NotNil(t, o.DeletedAt())

	events := o.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventOrderDeleted, events[0].EventName())
}

func TestBindIdentity(t *testing.T) {
	o, err := NewOrder(validSpec())
	require.NoError(t, err)

	o.BindIdentity(100, []int64{200}, [][]int64{{300, 301}})
	o.ClearNew()

	assert.Equal(t, int64(100), o.ID())
	assert.False(t, o.IsNew())

	sub := o.SubOrders()[0]
	assert.Equal(t, int64(200), sub.ID())
	assert.Equal(t, int64(100), sub.OrderID())

	items := sub.Items()
	assert.Equal(t, int64(300), items[0].ID())
	assert.Equal(t, int64(301), items[1].ID())
	assert.Equal(t, int64(200), items[0].SubOrderID())
}

func TestChangeSubOrderStatus(t *testing.T) {
	o, err := NewOrder(validSpec())
	require.NoError(t, err)
	o.BindIdentity(100, []int64{200}, [][]int64{{300, 301}})
	o.PullEvents()

	err = o.ChangeSubOrderStatus(200, StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, o.SubOrders()[0].Status())

	events := o.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventSubOrderStatusChange, events[0].EventName())

	// Skipping a step in the fulfilment chain is rejected.
	err = o.ChangeSubOrderStatus(200, StatusDelivered)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	assert.Equal(t, StatusConfirmed, o.SubOrders()[0].Status())

	// Unknown sub-order id.
	err = o.ChangeSubOrderStatus(999, StatusConfirmed)
	assert.ErrorIs(t, err, ErrSubOrderNotFound)
}

func TestSubOrdersReturnsCopy(t *testing.T) {
	o, err := NewOrder(validSpec())
	require.NoError(t, err)

	subs := o.SubOrders()
	subs[0] = SubOrder{}
	assert.Equal(t, int64(11), o.SubOrders()[0].StoreID())
}

func TestReconstructRoundTrip(t *testing.T) {
	o, err := NewOrder(validSpec())
	require.NoError(t, err)
	o.BindIdentity(100, []int64{200}, [][]int64{{300, 301}})

	sub := o.SubOrders()[0]
	items := sub.Items()
	dto := ReconstructionDTO{
		ID:             o.ID(),
		ExternalID:     o.ExternalID(),
		UserID:         o.UserID(),
		Currency:       o.Currency(),
		TotalAmountCOP: o.TotalAmount().Amount(),
		Status:         o.Status(),
		Version:        3,
		CreatedAt:      o.CreatedAt(),
		UpdatedAt:      o.UpdatedAt(),
		SubOrders: []SubOrderReconstructionDTO{{
			ID:                sub.ID(),
			ExternalID:        sub.ExternalID(),
			OrderID:           sub.OrderID(),
			StoreID:           sub.StoreID(),
			SubtotalCOP:       sub.Subtotal().Amount(),
			ShippingCOP:       sub.Shipping().Amount(),
			MarketplaceFeeCOP: sub.MarketplaceFee().Amount(),
			SellerNetCOP:      sub.SellerNet().Amount(),
			Status:            sub.Status(),
			CreatedAt:         sub.CreatedAt(),
			UpdatedAt:         sub.UpdatedAt(),
			Items: []ItemReconstructionDTO{{
				ID:            items[0].ID(),
				SubOrderID:    items[0].SubOrderID(),
				ProductID:     items[0].ProductID(),
				Title:         items[0].Title(),
				UnitPriceCOP:  items[0].UnitPrice().Amount(),
				Quantity:      items[0].Quantity(),
				TotalPriceCOP: items[0].TotalPrice().Amount(),
				CreatedAt:     items[0].CreatedAt(),
			}},
		}},
	}

	loaded := Reconstruct(dto)
	assert.Equal(t, o.ExternalID(), loaded.ExternalID())
	assert.Equal(t, int64(2700), loaded.TotalAmount().Amount())
	assert.Equal(t, 3, loaded.Version())
	assert.False(t, loaded.IsNew())
	assert.Empty(t, loaded.PullEvents())

	loadedSub := loaded.SubOrders()[0]
	assert.Equal(t, int64(2400), loadedSub.SellerNet().Amount())
	require.Len(t, loadedSub.Items(), 1)
	assert.Equal(t, "Ceramic mug", loadedSub.Items()[0].Title())
}
