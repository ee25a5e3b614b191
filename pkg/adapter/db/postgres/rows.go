package postgres

import "database/sql"

type rowsAdapter struct {
	*sql.Rows
}

func (ra rowsAdapter) Close() {
	_ = ra.Rows.Close()
}
