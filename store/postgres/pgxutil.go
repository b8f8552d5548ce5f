// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package postgres

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// stdlibOpen opens a database/sql handle over the same dsn, for sqlx's
// multi-row Select paths; the pgxpool.Pool above handles everything else
// directly through pgx.
func stdlibOpen(dsn string) *sql.DB {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		panic(err)
	}
	return db
}

// pgxUniqueViolation reports whether err is a postgres unique_violation
// (SQLSTATE 23505), the signal for both duplicate child-transaction
// nonces and duplicate contract registration.
func pgxUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
