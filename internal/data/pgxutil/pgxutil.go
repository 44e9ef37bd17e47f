package pgxutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// WithConn acquires a *pgx.Conn via the stdlib bridge and executes fn with it.
func WithConn(ctx context.Context, db *sql.DB, fn func(*pgx.Conn) error) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get conn from pool: %w", err)
	}
	defer func() {
		// connection close failure is best-effort and ignored
		_ = conn.Close()
	}()

	return conn.Raw(func(dc any) error {
		std, ok := dc.(*stdlib.Conn)
		if !ok {
			return errors.New("unexpected driver connection type; expected *stdlib.Conn")
		}
		return fn(std.Conn())
	})
}

// WithTx runs fn inside a pgx transaction using the stdlib bridge. The
// transaction commits only when fn returns nil; any error rolls it back,
// and a rollback failure is joined onto the unit's error.
func WithTx(ctx context.Context, db *sql.DB, fn func(pgx.Tx) error) error {
	return WithConn(ctx, db, func(pgxConn *pgx.Conn) (err error) {
		tx, err := pgxConn.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin pgx tx: %w", err)
		}
		defer func() {
			err = foldRollback(err, tx.Rollback(ctx))
		}()
		if err = fn(tx); err != nil {
			return err
		}
		if err = tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit pgx tx: %w", err)
		}
		return nil
	})
}

// foldRollback joins a rollback failure into the unit's error. After a
// successful commit the transaction is already closed; that outcome is not
// a failure.
func foldRollback(err, rollbackErr error) error {
	if rollbackErr == nil || errors.Is(rollbackErr, pgx.ErrTxClosed) {
		return err
	}
	return errors.Join(err, fmt.Errorf("rollback pgx tx: %w", rollbackErr))
}
