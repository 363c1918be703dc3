package cart_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/event"
	"github.com/example/storefront/internal/infrastructure/store/mocks"
)

type recordingNotifier struct {
	events []event.CartChanged
}

func (r *recordingNotifier) CartChanged(_ context.Context, e event.CartChanged) {
	r.events = append(r.events, e)
}

func testProducts() *mocks.MockProductStore {
	return mocks.NewMockProductStore(
		product.Product{ID: "1", Name: "Minimalist Backpack", Price: decimal.RequireFromString("89.99")},
		product.Product{ID: "2", Name: "Classic Watch", Price: decimal.RequireFromString("149.99")},
	)
}

func newTestService() (*cart.Service, *mocks.MockCartStore, *mocks.MockProductStore, *recordingNotifier) {
	cartStore := mocks.NewMockCartStore()
	productStore := testProducts()
	notifier := &recordingNotifier{}
	svc := cart.NewService(cartStore, productStore, notifier)
	return svc, cartStore, productStore, notifier
}

// ============================================
// Add Tests
// ============================================

func TestService_Add_RepeatedAddsAccumulate(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Add(ctx, "user-1", "1", 1))
	}

	items, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "1", items[0].ProductID)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestService_Add_CreatesCartLazily(t *testing.T) {
	svc, cartStore, _, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "user-1", "2", 3))

	assert.Len(t, cartStore.AddCalls, 1)
	assert.Equal(t, mocks.CartMutation{UserID: "user-1", ProductID: "2", Quantity: 3}, cartStore.AddCalls[0])
}

func TestService_Add_UnknownProduct(t *testing.T) {
	svc, cartStore, _, notifier := newTestService()
	ctx := context.Background()

	err := svc.Add(ctx, "user-1", "nope", 1)

	assert.ErrorIs(t, err, cart.ErrUnknownProduct)
	assert.Empty(t, cartStore.AddCalls)
	assert.Empty(t, notifier.events)
}

func TestService_Add_EmptyProductID(t *testing.T) {
	svc, _, _, _ := newTestService()

	err := svc.Add(context.Background(), "user-1", "", 1)

	assert.ErrorIs(t, err, cart.ErrInvalidProduct)
}

func TestService_Add_NonPositiveQuantity(t *testing.T) {
	svc, _, _, _ := newTestService()

	assert.ErrorIs(t, svc.Add(context.Background(), "user-1", "1", 0), cart.ErrInvalidQuantity)
	assert.ErrorIs(t, svc.Add(context.Background(), "user-1", "1", -2), cart.ErrInvalidQuantity)
}

func TestService_Add_FiresSignal(t *testing.T) {
	svc, _, _, notifier := newTestService()

	require.NoError(t, svc.Add(context.Background(), "user-1", "1", 2))

	require.Len(t, notifier.events, 1)
	e := notifier.events[0]
	assert.Equal(t, event.CartItemAdded, e.Type)
	assert.Equal(t, "user-1", e.UserID)
	assert.Equal(t, "1", e.ProductID)
	assert.Equal(t, 2, e.Quantity)
}

// ============================================
// SetQuantity Tests
// ============================================

func TestService_SetQuantity_Overwrites(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "user-1", "1", 1))
	require.NoError(t, svc.SetQuantity(ctx, "user-1", "1", 7))

	items, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Quantity)
}

func TestService_SetQuantity_ZeroRemovesEntry(t *testing.T) {
	// setQuantity(u, p, 0) is equivalent to remove(u, p)
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "user-1", "1", 2))
	require.NoError(t, svc.SetQuantity(ctx, "user-1", "1", 0))

	items, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestService_SetQuantity_NegativeRemovesEntry(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "user-1", "1", 2))
	require.NoError(t, svc.SetQuantity(ctx, "user-1", "1", -3))

	items, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestService_SetQuantity_NoCart(t *testing.T) {
	svc, _, _, _ := newTestService()

	err := svc.SetQuantity(context.Background(), "user-1", "1", 2)

	assert.ErrorIs(t, err, cart.ErrNotFound)
}

func TestService_SetQuantity_ProductNotInCart(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "user-1", "1", 1))

	err := svc.SetQuantity(ctx, "user-1", "2", 2)

	assert.ErrorIs(t, err, cart.ErrNotFound)
}

// ============================================
// Remove Tests
// ============================================

func TestService_Remove_Existing(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "user-1", "1", 1))
	require.NoError(t, svc.Remove(ctx, "user-1", "1"))

	items, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestService_Remove_AbsentEntryIsIdempotent(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "user-1", "1", 2))

	// Removing something that was never added neither fails nor disturbs
	// the rest of the cart.
	require.NoError(t, svc.Remove(ctx, "user-1", "2"))

	items, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "1", items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
}

// ============================================
// Clear Tests
// ============================================

func TestService_Clear(t *testing.T) {
	svc, _, _, notifier := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "user-1", "1", 1))
	require.NoError(t, svc.Add(ctx, "user-1", "2", 1))
	require.NoError(t, svc.Clear(ctx, "user-1"))

	items, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, items)

	last := notifier.events[len(notifier.events)-1]
	assert.Equal(t, event.CartCleared, last.Type)
}

func TestService_Clear_EmptyCartIsIdempotent(t *testing.T) {
	svc, _, _, _ := newTestService()

	assert.NoError(t, svc.Clear(context.Background(), "user-1"))
	assert.NoError(t, svc.Clear(context.Background(), "user-1"))
}

// ============================================
// Get / Count Tests
// ============================================

func TestService_Get_MissingCartIsEmpty(t *testing.T) {
	svc, _, _, _ := newTestService()

	items, err := svc.Get(context.Background(), "never-seen")

	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestService_Get_ResolvesProducts(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "user-1", "1", 2))

	items, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "Minimalist Backpack", items[0].Product.Name)
}

func TestService_Get_DanglingReferenceKeepsEntry(t *testing.T) {
	svc, _, productStore, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "user-1", "1", 2))
	productStore.Delete("1")

	items, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].Product)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestService_Count_SumsQuantities(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "user-1", "1", 2))
	require.NoError(t, svc.Add(ctx, "user-1", "2", 3))

	count, err := svc.Count(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}
