package database

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Tato-23/TareaTiendaOnline/internal/domain"
)

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// SelectAll returns every catalog row.
func (r *ProductRepository) SelectAll(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT producto_id, nombre, precio, descripcion, stock
		FROM productos
		`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.Stock); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Insert stores a new product and returns the assigned id.
func (r *ProductRepository) Insert(ctx context.Context, p domain.Product) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO productos (nombre, precio, descripcion, stock)
		VALUES ($1,$2,$3,$4)
		RETURNING producto_id
		`, p.Name, p.Price, p.Description, p.Stock).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// GetOrder fetches a single order row without its line items.
func (r *OrderRepository) GetOrder(ctx context.Context, id int64) (*domain.OrderRow, error) {
	var row domain.OrderRow
	err := r.pool.QueryRow(ctx, `
		SELECT pedido_id, cliente, fecha_pedido
		FROM pedidos
		WHERE pedido_id=$1
		`, id).Scan(&row.ID, &row.Client, &row.Date)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// GetLineItems fetches the order's line items joined to the catalog for
// current name and price.
func (r *OrderRepository) GetLineItems(ctx context.Context, orderID int64) ([]domain.LineItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT pp.producto_id, p.nombre, p.precio, pp.cantidad
		FROM pedido_productos pp
		JOIN productos p ON p.producto_id = pp.producto_id
		WHERE pp.pedido_id=$1
		`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.LineItem
	for rows.Next() {
		var it domain.LineItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Price, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// SelectAll returns every order with its joined line items, in store
// iteration order.
func (r *OrderRepository) SelectAll(ctx context.Context) ([]domain.OrderRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT pedido_id, cliente, fecha_pedido
		FROM pedidos
		`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OrderRow
	for rows.Next() {
		var row domain.OrderRow
		if err := rows.Scan(&row.ID, &row.Client, &row.Date); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		items, err := r.GetLineItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

// InsertOrder writes the order row plus all line-item rows in a single
// transaction and returns the assigned id.
func (r *OrderRepository) InsertOrder(ctx context.Context, client string, date time.Time, items []domain.LineItem) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO pedidos (cliente, fecha_pedido)
		VALUES ($1,$2)
		RETURNING pedido_id
		`, client, date).Scan(&id)
	if err != nil {
		return 0, err
	}

	for _, it := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO pedido_productos (pedido_id, producto_id, cantidad)
			VALUES ($1,$2,$3)
			`, id, it.ProductID, it.Quantity)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateOrder rewrites the order row and, when replaceItems is set, swaps
// the whole line-item set. One transaction, all-or-nothing.
func (r *OrderRepository) UpdateOrder(ctx context.Context, id int64, client string, date time.Time, items []domain.LineItem, replaceItems bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE pedidos SET cliente=$1, fecha_pedido=$2
		WHERE pedido_id=$3
		`, client, date, id)
	if err != nil {
		return err
	}

	if replaceItems {
		if _, err := tx.Exec(ctx, `DELETE FROM pedido_productos WHERE pedido_id=$1`, id); err != nil {
			return err
		}
		for _, it := range items {
			_, err := tx.Exec(ctx, `
				INSERT INTO pedido_productos (pedido_id, producto_id, cantidad)
				VALUES ($1,$2,$3)
				`, id, it.ProductID, it.Quantity)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

// DeleteOrder removes the line items and then the order row in one
// transaction. Deleting an absent order is not an error.
func (r *OrderRepository) DeleteOrder(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM pedido_productos WHERE pedido_id=$1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM pedidos WHERE pedido_id=$1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
