package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/bookstore-storefront/internal/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("product not found")

const productColumns = `id, name, authors, price::text, COALESCE(description, ''), COALESCE(image_url, ''), stock, created_at, updated_at`

type Repo struct{ DB postgres.DB }

// GetPriceByID returns the current catalog price, or ErrNotFound.
func (r *Repo) GetPriceByID(ctx context.Context, id int64) (decimal.Decimal, error) {
	var s string
	err := r.DB.QueryRow(ctx, `SELECT price::text FROM products WHERE id=$1`, id).Scan(&s)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, ErrNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(s)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (Product, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

// List returns one page of products, newest first. A non-empty search matches
// name, authors or description case-insensitively.
func (r *Repo) List(ctx context.Context, page, limit int, search string) (Page, error) {
	where, args := "", []any{}
	if search != "" {
		where = ` WHERE name ILIKE $1 OR authors ILIKE $1 OR description ILIKE $1`
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return Page{}, err
	}

	n := len(args)
	q := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		productColumns, where, n+1, n+2)
	rows, err := r.DB.Query(ctx, q, append(args, limit, (page-1)*limit)...)
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	out := Page{Products: []Product{}, TotalProducts: total, CurrentPage: page, Limit: limit}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return Page{}, err
		}
		out.Products = append(out.Products, p)
	}
	if err := rows.Err(); err != nil {
		return Page{}, err
	}
	out.TotalPages = totalPages(total, limit)
	out.HasNextPage = page < out.TotalPages
	out.HasPrevPage = page > 1
	return out, nil
}

// AddProducts inserts the batch in one transaction and returns the ids in input order.
func (r *Repo) AddProducts(ctx context.Context, in []NewProduct) ([]int64, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ids := make([]int64, 0, len(in))
	for _, p := range in {
		var id int64
		err := tx.QueryRow(ctx, `
			INSERT INTO products(name, authors, price, description, image_url, stock)
			VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6)
			RETURNING id`,
			p.Name, p.Authors, p.Price.StringFixed(2), p.Description, p.ImageURL, p.Stock,
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("insert product %q: %w", p.Name, err)
		}
		ids = append(ids, id)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ids, nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p     Product
		price string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Authors, &price, &p.Description, &p.ImageURL, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Product{}, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return Product{}, fmt.Errorf("product %d price %q: %w", p.ID, price, err)
	}
	p.Price = d
	return p, nil
}
