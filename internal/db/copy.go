package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// CopyFrom bulk-loads rows into table over the COPY protocol.
func CopyFrom(ctx context.Context, dst Copier, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	n, err := dst.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, eris.Wrapf(err, "db: COPY INTO %s", table)
	}
	return n, nil
}

// ResetSequence moves the serial sequence behind table.id past the largest
// id present. COPY with explicit ids does not advance it.
func ResetSequence(ctx context.Context, ex Execer, table string) error {
	ident := pgx.Identifier{table}.Sanitize()
	sql := fmt.Sprintf(
		`SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)`,
		table, ident,
	)
	if _, err := ex.Exec(ctx, sql); err != nil {
		return eris.Wrapf(err, "db: reset sequence for %s", table)
	}
	return nil
}
