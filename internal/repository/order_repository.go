package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/lib/pq"

	"github.com/mindfulpages/order-intake/internal/domain"
)

// Postgres error codes inspected on the insert path.
const (
	pqUniqueViolation       = "23505"
	pqInsufficientPrivilege = "42501"
)

// OrderRepository writes orders through two credential tiers. db is the
// standard application credential and is always present; serviceDB is the
// elevated credential that bypasses row-level security, nil when the
// deployment has not configured one.
type OrderRepository struct {
	db        *sql.DB
	serviceDB *sql.DB
}

func NewOrderRepository(db, serviceDB *sql.DB) *OrderRepository {
	return &OrderRepository{db: db, serviceDB: serviceDB}
}

const insertOrderQuery = `
	INSERT INTO orders (
		id, order_number, order_date,
		customer_first_name, customer_last_name, customer_email, customer_phone,
		shipping_address, shipping_city, shipping_postal_code, shipping_country,
		payment_method, notes, subtotal, shipping_cost, tax, total_amount, status
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
`

// CreateOrder inserts the order row, preferring the elevated credential when
// one is configured. It reports which tier succeeded so the item insert can
// use the same one. The two fallback causes are deliberate, separate
// branches: an absent service credential skips straight to the standard
// path, while a failed privileged insert logs and then falls back.
func (r *OrderRepository) CreateOrder(order *domain.Order) (privileged bool, err error) {
	if r.serviceDB != nil {
		privErr := r.execInsertOrder(r.serviceDB, order)
		if privErr == nil {
			return true, nil
		}
		if isUniqueViolation(privErr) {
			// A collision will fail the standard path identically.
			return false, domain.ErrOrderNumberTaken
		}
		log.Printf("Privileged order insert failed, falling back to standard credential: %v", privErr)
	}

	if stdErr := r.execInsertOrder(r.db, order); stdErr != nil {
		if isUniqueViolation(stdErr) {
			return false, domain.ErrOrderNumberTaken
		}
		if code, ok := isRLSRejection(stdErr); ok {
			return false, domain.ErrRowLevelSecurityBlocked(stdErr.Error(), code)
		}
		return false, domain.ErrPersistenceFailure(stdErr.Error(), pqCode(stdErr))
	}

	return false, nil
}

func (r *OrderRepository) execInsertOrder(db *sql.DB, order *domain.Order) error {
	_, err := db.Exec(
		insertOrderQuery,
		order.ID,
		order.OrderNumber,
		order.OrderDate,
		order.Customer.FirstName,
		order.Customer.LastName,
		order.Customer.Email,
		order.Customer.Phone,
		order.Shipping.Address,
		order.Shipping.City,
		order.Shipping.PostalCode,
		order.Shipping.Country,
		order.PaymentMethod,
		order.Notes,
		order.Subtotal,
		order.ShippingCost,
		order.Tax,
		order.TotalAmount,
		order.Status,
	)
	return err
}

// CreateOrderItems batch-inserts the line items in one statement, on the
// tier that won the order insert.
func (r *OrderRepository) CreateOrderItems(items []domain.OrderItem, privileged bool) error {
	if len(items) == 0 {
		return nil
	}

	db := r.db
	if privileged && r.serviceDB != nil {
		db = r.serviceDB
	}

	var (
		placeholders []string
		args         []interface{}
	)
	for i, item := range items {
		base := i * 6
		placeholders = append(placeholders, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6,
		))
		args = append(args, item.OrderID, item.ItemID, item.Title, item.Price, item.Quantity, item.Type)
	}

	query := fmt.Sprintf(
		"INSERT INTO order_items (order_id, item_id, title, price, quantity, item_type) VALUES %s",
		strings.Join(placeholders, ", "),
	)

	if _, err := db.Exec(query, args...); err != nil {
		return fmt.Errorf("order items insert error: %v", err)
	}

	return nil
}

const selectOrderQuery = `
	SELECT id, order_number, order_date,
		   customer_first_name, customer_last_name, customer_email, customer_phone,
		   shipping_address, shipping_city, shipping_postal_code, shipping_country,
		   payment_method, notes, subtotal, shipping_cost, tax, total_amount, status
	FROM orders
	WHERE order_number = $1
`

// GetOrderByNumber loads an order and its line items by display number.
func (r *OrderRepository) GetOrderByNumber(orderNumber string) (*domain.Order, error) {
	order := &domain.Order{}
	var notes sql.NullString

	err := r.db.QueryRow(selectOrderQuery, orderNumber).Scan(
		&order.ID,
		&order.OrderNumber,
		&order.OrderDate,
		&order.Customer.FirstName,
		&order.Customer.LastName,
		&order.Customer.Email,
		&order.Customer.Phone,
		&order.Shipping.Address,
		&order.Shipping.City,
		&order.Shipping.PostalCode,
		&order.Shipping.Country,
		&order.PaymentMethod,
		&notes,
		&order.Subtotal,
		&order.ShippingCost,
		&order.Tax,
		&order.TotalAmount,
		&order.Status,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("order not found: %s", orderNumber)
		}
		return nil, fmt.Errorf("order retrieval error: %v", err)
	}
	order.Notes = notes.String

	rows, err := r.db.Query(
		"SELECT order_id, item_id, title, price, quantity, item_type FROM order_items WHERE order_id = $1",
		order.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("order items retrieval error: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.OrderID, &item.ItemID, &item.Title, &item.Price, &item.Quantity, &item.Type); err != nil {
			return nil, fmt.Errorf("order item scan error: %v", err)
		}
		order.Items = append(order.Items, item)
	}

	return order, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pqUniqueViolation
	}
	return false
}

// isRLSRejection matches both the 42501 privilege code and the textual
// row-level security message some policy rejections carry.
func isRLSRejection(err error) (code string, ok bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if string(pqErr.Code) == pqInsufficientPrivilege {
			return string(pqErr.Code), true
		}
		if strings.Contains(pqErr.Message, "row-level security") {
			return string(pqErr.Code), true
		}
	}
	return "", false
}

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
