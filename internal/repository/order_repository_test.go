package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindfulpages/order-intake/internal/domain"
)

func testOrder() *domain.Order {
	orderID := uuid.New()
	return &domain.Order{
		ID:          orderID,
		OrderNumber: "123456",
		OrderDate:   time.Now(),
		Customer: domain.Customer{
			FirstName: "Ana",
			LastName:  "Ivanova",
			Email:     "ana@example.com",
			Phone:     "0888123456",
		},
		Shipping: domain.ShippingAddress{
			Address:    "1 Vitosha Blvd",
			City:       "Sofia",
			PostalCode: "1000",
			Country:    "Bulgaria",
		},
		PaymentMethod: domain.PaymentMethodCash,
		Subtotal:      30,
		ShippingCost:  5,
		Tax:           3,
		TotalAmount:   38,
		Status:        domain.OrderStatusPending,
		Items: []domain.OrderItem{
			{OrderID: orderID, ItemID: "1", Title: "Осъзнато хранене", Price: 30, Quantity: 1, Type: domain.ItemTypeBook},
		},
	}
}

func TestCreateOrder_StandardPath(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewOrderRepository(db, nil)
	privileged, err := repo.CreateOrder(testOrder())

	assert.NoError(t, err)
	assert.False(t, privileged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrder_PrivilegedPathPreferred(t *testing.T) {
	db, stdMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	serviceDB, svcMock, err := sqlmock.New()
	require.NoError(t, err)
	defer serviceDB.Close()

	svcMock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewOrderRepository(db, serviceDB)
	privileged, err := repo.CreateOrder(testOrder())

	assert.NoError(t, err)
	assert.True(t, privileged)
	assert.NoError(t, svcMock.ExpectationsWereMet())
	// The standard pool must not be touched when the privileged insert wins.
	assert.NoError(t, stdMock.ExpectationsWereMet())
}

func TestCreateOrder_PrivilegedFailureFallsBack(t *testing.T) {
	db, stdMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	serviceDB, svcMock, err := sqlmock.New()
	require.NoError(t, err)
	defer serviceDB.Close()

	svcMock.ExpectExec("INSERT INTO orders").WillReturnError(errors.New("connection reset"))
	stdMock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewOrderRepository(db, serviceDB)
	privileged, err := repo.CreateOrder(testOrder())

	assert.NoError(t, err)
	assert.False(t, privileged)
	assert.NoError(t, stdMock.ExpectationsWereMet())
}

func TestCreateOrder_UniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO orders").WillReturnError(&pq.Error{
		Code:       "23505",
		Constraint: "orders_order_number_key",
	})

	repo := NewOrderRepository(db, nil)
	_, err = repo.CreateOrder(testOrder())

	assert.ErrorIs(t, err, domain.ErrOrderNumberTaken)
}

func TestCreateOrder_RLSRejection(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO orders").WillReturnError(&pq.Error{
		Code:    "42501",
		Message: "new row violates row-level security policy for table \"orders\"",
	})

	repo := NewOrderRepository(db, nil)
	_, err = repo.CreateOrder(testOrder())

	var ierr *domain.IntakeError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, domain.ErrKindRowLevelSecurityBlocked, ierr.Kind)
	assert.Equal(t, "42501", ierr.Code)
	assert.NotEmpty(t, ierr.Hint)
}

func TestCreateOrder_GenericPersistenceFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO orders").WillReturnError(&pq.Error{
		Code:    "23502",
		Message: "null value in column \"customer_email\"",
	})

	repo := NewOrderRepository(db, nil)
	_, err = repo.CreateOrder(testOrder())

	var ierr *domain.IntakeError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, domain.ErrKindPersistenceFailure, ierr.Kind)
	assert.Equal(t, "23502", ierr.Code)
}

func TestCreateOrderItems_BatchInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	order := testOrder()
	order.Items = append(order.Items, domain.OrderItem{
		OrderID: order.ID, ItemID: "2", Title: "Консултация", Price: 50, Quantity: 2, Type: domain.ItemTypeService,
	})

	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(
			order.ID, "1", "Осъзнато хранене", 30.0, 1, domain.ItemTypeBook,
			order.ID, "2", "Консултация", 50.0, 2, domain.ItemTypeService,
		).
		WillReturnResult(sqlmock.NewResult(0, 2))

	repo := NewOrderRepository(db, nil)
	err = repo.CreateOrderItems(order.Items, false)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderItems_UsesWinningTier(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	serviceDB, svcMock, err := sqlmock.New()
	require.NoError(t, err)
	defer serviceDB.Close()

	svcMock.ExpectExec("INSERT INTO order_items").WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewOrderRepository(db, serviceDB)
	err = repo.CreateOrderItems(testOrder().Items, true)

	assert.NoError(t, err)
	assert.NoError(t, svcMock.ExpectationsWereMet())
}

func TestGetOrderByNumber(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orderID := uuid.New()
	orderDate := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs("123456").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "order_number", "order_date",
			"customer_first_name", "customer_last_name", "customer_email", "customer_phone",
			"shipping_address", "shipping_city", "shipping_postal_code", "shipping_country",
			"payment_method", "notes", "subtotal", "shipping_cost", "tax", "total_amount", "status",
		}).AddRow(
			orderID, "123456", orderDate,
			"Ana", "Ivanova", "ana@example.com", "0888123456",
			"1 Vitosha Blvd", "Sofia", "1000", "Bulgaria",
			"cash", nil, 30.0, 5.0, 3.0, 38.0, "pending",
		))

	mock.ExpectQuery("SELECT (.+) FROM order_items").
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows([]string{
			"order_id", "item_id", "title", "price", "quantity", "item_type",
		}).AddRow(orderID, "1", "Осъзнато хранене", 30.0, 1, "book"))

	repo := NewOrderRepository(db, nil)
	order, err := repo.GetOrderByNumber("123456")

	require.NoError(t, err)
	assert.Equal(t, "123456", order.OrderNumber)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "", order.Notes)
	require.Len(t, order.Items, 1)
	assert.Equal(t, domain.ItemTypeBook, order.Items[0].Type)
}

func TestGetOrderByNumber_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs("999999").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewOrderRepository(db, nil)
	_, err = repo.GetOrderByNumber("999999")

	assert.Error(t, err)
}
