package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productCols = []string{"id", "name", "authors", "price", "description", "image_url", "stock", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (*Repo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &Repo{DB: mock}, mock
}

func TestRepo_GetPriceByID(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(pgxmock.PgxPoolIface)
		want    string
		wantErr error
	}{
		{
			name: "found",
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectQuery(`SELECT price::text FROM products`).WithArgs(int64(1)).
					WillReturnRows(pgxmock.NewRows([]string{"price"}).AddRow("10.00"))
			},
			want: "10",
		},
		{
			name: "missing",
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectQuery(`SELECT price::text FROM products`).WithArgs(int64(1)).WillReturnError(pgx.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			tt.setup(mock)

			got, err := repo.GetPriceByID(context.Background(), 1)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.True(t, decimal.RequireFromString(tt.want).Equal(got))
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepo_GetPriceByID_DriverError(t *testing.T) {
	repo, mock := newMockRepo(t)
	boom := errors.New("conn reset")
	mock.ExpectQuery(`SELECT price::text`).WithArgs(int64(3)).WillReturnError(boom)

	_, err := repo.GetPriceByID(context.Background(), 3)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestRepo_List(t *testing.T) {
	now := time.Now()

	t.Run("search pages results", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM products WHERE name ILIKE \$1`).WithArgs("%go%").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
		mock.ExpectQuery(`LIMIT \$2 OFFSET \$3`).WithArgs("%go%", 2, 0).
			WillReturnRows(pgxmock.NewRows(productCols).
				AddRow(int64(3), "Go in Action", "Kennedy", "30.00", "", "", 4, now, now).
				AddRow(int64(2), "Learning Go", "Bodner", "25.50", "Idioms", "", 0, now, now))

		page, err := repo.List(context.Background(), 1, 2, "go")
		require.NoError(t, err)
		assert.Equal(t, 3, page.TotalProducts)
		assert.Equal(t, 2, page.TotalPages)
		assert.True(t, page.HasNextPage)
		assert.False(t, page.HasPrevPage)
		require.Len(t, page.Products, 2)
		assert.Equal(t, "25.50", page.Products[1].Price.StringFixed(2))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no search", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM products$`).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`LIMIT \$1 OFFSET \$2`).WithArgs(50, 50).
			WillReturnRows(pgxmock.NewRows(productCols))

		page, err := repo.List(context.Background(), 2, 50, "")
		require.NoError(t, err)
		assert.Empty(t, page.Products)
		assert.NotNil(t, page.Products)
		assert.True(t, page.HasPrevPage)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepo_AddProducts(t *testing.T) {
	in := []NewProduct{
		{Name: "Go in Action", Authors: "Kennedy", Price: decimal.RequireFromString("30"), Stock: 4},
		{Name: "Learning Go", Authors: "Bodner", Price: decimal.RequireFromString("25.5"), ImageURL: "https://img/lg.png", Stock: 2},
	}

	t.Run("commits batch", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO products`).WithArgs("Go in Action", "Kennedy", "30.00", "", "", 4).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(10)))
		mock.ExpectQuery(`INSERT INTO products`).WithArgs("Learning Go", "Bodner", "25.50", "", "https://img/lg.png", 2).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(11)))
		mock.ExpectCommit()
		mock.ExpectRollback()

		ids, err := repo.AddProducts(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, []int64{10, 11}, ids)
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO products`).WithArgs("Go in Action", "Kennedy", "30.00", "", "", 4).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(10)))
		mock.ExpectQuery(`INSERT INTO products`).WithArgs("Learning Go", "Bodner", "25.50", "", "https://img/lg.png", 2).
			WillReturnError(errors.New("value too long"))
		mock.ExpectRollback()

		_, err := repo.AddProducts(context.Background(), in)
		assert.ErrorContains(t, err, `insert product "Learning Go"`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
