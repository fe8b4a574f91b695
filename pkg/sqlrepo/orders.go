package sqlrepo

import (
	"context"
	"database/sql"

	"github.com/repobind/repobind/pkg/errors"
	"github.com/repobind/repobind/pkg/facade"
	"github.com/repobind/repobind/pkg/sequence"
	"github.com/repobind/repobind/pkg/types"
)

// OrderRecord is the orders row shape.
type OrderRecord struct {
	ID         int64
	Customer   string
	TotalCents int64
}

// Order is the orders domain object.
type Order struct {
	ID       int64
	Customer string
	Total    float64
}

// OrderDAO is the orders access object.
type OrderDAO struct {
	types.Base[OrderRecord, Order, int64]
	db *sql.DB
}

// NewOrderDAO creates the orders access object over db.
func NewOrderDAO(db *sql.DB) *OrderDAO {
	return &OrderDAO{db: db}
}

// TableName implements types.TableNamer.
func (d *OrderDAO) TableName() string { return "orders" }

// InsertAll implements types.BatchWriter.
func (d *OrderDAO) InsertAll(ctx context.Context, records []OrderRecord) error {
	q := conn(ctx, d.db)
	for _, r := range records {
		_, err := q.ExecContext(ctx,
			`INSERT INTO orders (id, customer, total_cents) VALUES (?, ?, ?)`,
			r.ID, r.Customer, r.TotalCents)
		if err != nil {
			return err
		}
	}
	return nil
}

// UpdateAll implements types.BatchWriter.
func (d *OrderDAO) UpdateAll(ctx context.Context, records []OrderRecord) error {
	q := conn(ctx, d.db)
	for _, r := range records {
		_, err := q.ExecContext(ctx,
			`UPDATE orders SET customer = ?, total_cents = ? WHERE id = ?`,
			r.Customer, r.TotalCents, r.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

// FindByID implements types.Finder.
func (d *OrderDAO) FindByID(ctx context.Context, id int64) (Order, error) {
	var r OrderRecord
	err := conn(ctx, d.db).QueryRowContext(ctx,
		`SELECT id, customer, total_cents FROM orders WHERE id = ?`, id).
		Scan(&r.ID, &r.Customer, &r.TotalCents)
	if err == sql.ErrNoRows {
		return Order{}, errors.Newf(errors.ErrNotFound, "no order %d", id)
	}
	if err != nil {
		return Order{}, err
	}
	return Order{ID: r.ID, Customer: r.Customer, Total: float64(r.TotalCents) / 100}, nil
}

// Count returns the number of order rows outside any boundary.
func (d *OrderDAO) Count(ctx context.Context) (int64, error) {
	var n int64
	err := conn(ctx, d.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n)
	return n, err
}

// OrderRepository is the user-declared contract served by the order
// facade's proxy binding.
type OrderRepository interface {
	types.Repository[OrderRecord, Order, int64, *OrderDAO]
}

// Candidates returns the sample model's discovery candidates.
func Candidates(db *sql.DB) []types.Candidate {
	return []types.Candidate{
		facade.CandidateFor[OrderRecord, Order, int64](NewOrderDAO(db)),
		types.Interface[OrderRepository](),
	}
}

// OrderSequence is the key orders draw generated IDs from.
const OrderSequence = "orders_seq"

// Sequences returns a sequence registry for the orders model, with the
// counter seeded past the highest ID already present in the table.
func Sequences(ctx context.Context, db *sql.DB) (*sequence.Registry, error) {
	var max int64
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM orders`).Scan(&max); err != nil {
		return nil, err
	}
	reg := sequence.NewRegistry()
	if err := reg.Register(OrderSequence, sequence.NewCounter[int64](max+1)); err != nil {
		return nil, err
	}
	return reg, nil
}
