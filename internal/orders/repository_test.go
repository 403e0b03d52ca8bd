package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fornodoro/backend/pkg/db/models"
	"github.com/fornodoro/backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  subtotal NUMERIC NOT NULL,
  discount NUMERIC NOT NULL DEFAULT 0,
  delivery_fee NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL,
  address TEXT NOT NULL,
  payment_method TEXT NOT NULL,
  change_for NUMERIC,
  coupon_code TEXT,
  points_earned INTEGER NOT NULL DEFAULT 0,
  points_redeemed INTEGER NOT NULL DEFAULT 0,
  observations TEXT,
  pix_payload TEXT,
  pix_expires_at DATETIME,
  confirmed_at DATETIME,
  delivered_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  type TEXT NOT NULL,
  name TEXT NOT NULL,
  size TEXT,
  flavors TEXT,
  crust TEXT,
  dough TEXT,
  extras TEXT,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  total NUMERIC NOT NULL,
  observations TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	require.NoError(t, db.Exec(`DELETE FROM order_items`).Error)
	require.NoError(t, db.Exec(`DELETE FROM orders`).Error)

	return db
}

func testOrder(userID uuid.UUID, status enums.OrderStatus) *models.Order {
	return &models.Order{
		ID:            uuid.New(),
		UserID:        &userID,
		Status:        status,
		Subtotal:      decimal.RequireFromString("60.00"),
		Discount:      decimal.Zero,
		DeliveryFee:   decimal.RequireFromString("5.90"),
		Total:         decimal.RequireFromString("65.90"),
		Address:       "Rua Augusta 1500, São Paulo",
		PaymentMethod: enums.PaymentMethodPix,
	}
}

func TestRepositoryCreateAndFindByID(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	order := testOrder(userID, enums.OrderStatusPendingPayment)
	size := "grande"
	order.Items = []models.OrderItem{
		{
			ID:        uuid.New(),
			Type:      enums.OrderItemTypePizza,
			Name:      "Pizza grande",
			Size:      &size,
			Flavors:   []string{"Calabresa", "Marguerita"},
			Quantity:  2,
			UnitPrice: decimal.RequireFromString("30.00"),
			Total:     decimal.RequireFromString("60.00"),
		},
	}

	require.NoError(t, repo.Create(ctx, order))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	assert.Equal(t, enums.OrderStatusPendingPayment, found.Status)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Pizza grande", found.Items[0].Name)
	assert.Equal(t, []string{"Calabresa", "Marguerita"}, found.Items[0].Flavors)
	assert.True(t, found.Total.Equal(decimal.RequireFromString("65.90")))
}

func TestRepositoryListByUserScopesAndCounts(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	owner := uuid.New()
	other := uuid.New()
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, testOrder(owner, enums.OrderStatusConfirmed)))
	}
	require.NoError(t, repo.Create(ctx, testOrder(other, enums.OrderStatusConfirmed)))

	orders, total, err := repo.ListByUser(ctx, owner, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, orders, 2)
	for _, order := range orders {
		require.NotNil(t, order.UserID)
		assert.Equal(t, owner, *order.UserID)
	}
}

func TestRepositoryListFiltersByStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	require.NoError(t, repo.Create(ctx, testOrder(userID, enums.OrderStatusPreparing)))
	require.NoError(t, repo.Create(ctx, testOrder(userID, enums.OrderStatusPreparing)))
	require.NoError(t, repo.Create(ctx, testOrder(userID, enums.OrderStatusDelivered)))

	status := enums.OrderStatusPreparing
	orders, total, err := repo.List(ctx, &status, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, orders, 2)
	for _, order := range orders {
		assert.Equal(t, enums.OrderStatusPreparing, order.Status)
	}
}

func TestRepositoryFindExpiredPendingPayment(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	now := time.Now().UTC()

	expired := testOrder(userID, enums.OrderStatusPendingPayment)
	past := now.Add(-5 * time.Minute)
	expired.PixExpiresAt = &past
	require.NoError(t, repo.Create(ctx, expired))

	live := testOrder(userID, enums.OrderStatusPendingPayment)
	future := now.Add(10 * time.Minute)
	live.PixExpiresAt = &future
	require.NoError(t, repo.Create(ctx, live))

	// Already confirmed orders never show up even with a stale expiry.
	paid := testOrder(userID, enums.OrderStatusConfirmed)
	paid.PixExpiresAt = &past
	require.NoError(t, repo.Create(ctx, paid))

	stale, err := repo.FindExpiredPendingPayment(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, expired.ID, stale[0].ID)
}

func TestRepositoryUpdatePersistsStatusTransition(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := testOrder(uuid.New(), enums.OrderStatusConfirmed)
	require.NoError(t, repo.Create(ctx, order))

	now := time.Now().UTC()
	order.Status = enums.OrderStatusDelivered
	order.DeliveredAt = &now
	require.NoError(t, repo.Update(ctx, order))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, found.Status)
	require.NotNil(t, found.DeliveredAt)
}
