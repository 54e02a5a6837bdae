package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/inkhouse/storyapi/internal/data/pgxutil"
	"github.com/inkhouse/storyapi/internal/domain/model"
)

// AccountRepo provides database operations for the account allow list.
type AccountRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewAccountRepo creates a new AccountRepo with real time provider.
func NewAccountRepo(db *sql.DB) *AccountRepo {
	return &AccountRepo{DB: db, timeProvider: RealTimeProvider{}}
}

const accountColumns = `id, email, role, created_at`

// Lookup finds an allow-list entry by email. Matching is case-insensitive.
// Returns ErrAccountNotFound when no entry exists.
func (r *AccountRepo) Lookup(ctx context.Context, email string) (*model.AllowedAccount, error) {
	var acct model.AllowedAccount
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+accountColumns+`
			FROM allowed_accounts
			WHERE lower(email) = lower($1)`, email)
		if err != nil {
			return err
		}
		defer rows.Close()
		acct, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.AllowedAccount])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	return &acct, nil
}

// Count returns the number of allow-list entries.
func (r *AccountRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `SELECT COUNT(*) FROM allowed_accounts`).Scan(&count)
	}); err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}

// Create inserts a new allow-list entry.
func (r *AccountRepo) Create(ctx context.Context, req *model.CreateAccountRequest) (*model.AllowedAccount, error) {
	if req == nil {
		return nil, errors.New("create account request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.AllowedAccount
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO allowed_accounts (id, email, role, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING `+accountColumns,
			uuid.NewString(), req.Email, req.Role, r.timeProvider.Now().UTC())
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.AllowedAccount])
		return err
	}); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return &out, nil
}

// List returns all allow-list entries ordered by email.
func (r *AccountRepo) List(ctx context.Context) ([]*model.AllowedAccount, error) {
	var rowsOut []model.AllowedAccount
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+accountColumns+`
			FROM allowed_accounts
			ORDER BY email ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.AllowedAccount])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	res := make([]*model.AllowedAccount, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Delete removes an allow-list entry by ID.
func (r *AccountRepo) Delete(ctx context.Context, id string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM allowed_accounts WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete account: %w", err)
	}
	return rows > 0, nil
}
