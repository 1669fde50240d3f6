package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	_ "modernc.org/sqlite"
)

// LabelColumn is the optional text column LoadSQLite reads labels from.
const LabelColumn = "label"

var identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func checkIdent(kind, s string) error {
	if !identRE.MatchString(s) {
		return fmt.Errorf("dataset: invalid %s name %q", kind, s)
	}
	return nil
}

// LoadSQLite reads float32 little-endian BLOBs from column of table in the
// SQLite database at path, ordered by rowid. If the table has a text column
// named "label" it fills Labels.
func LoadSQLite(ctx context.Context, path, table, column string) (*Dataset, error) {
	if err := checkIdent("table", table); err != nil {
		return nil, err
	}
	if err := checkIdent("column", column); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open database: %w", err)
	}
	defer db.Close()

	hasLabel, err := hasColumn(ctx, db, table, LabelColumn)
	if err != nil {
		return nil, err
	}

	labelExpr := "NULL"
	if hasLabel {
		labelExpr = LabelColumn
	}

	query := fmt.Sprintf("SELECT %s, %s FROM %s ORDER BY rowid", column, labelExpr, table)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("dataset: query %s: %w", table, err)
	}
	defer rows.Close()

	ds := &Dataset{}
	if hasLabel {
		ds.Labels = []string{}
	}

	for row := 0; rows.Next(); row++ {
		var blob []byte
		var label sql.NullString
		if err := rows.Scan(&blob, &label); err != nil {
			return nil, fmt.Errorf("dataset: scan row %d: %w", row, err)
		}

		p, err := decodeFloat32s(blob)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if ds.Dim == 0 {
			ds.Dim = len(p)
		}
		if len(p) == 0 || len(p) != ds.Dim {
			return nil, malformed("row %d: dimension %d, want %d", row, len(p), ds.Dim)
		}

		ds.Points = append(ds.Points, p)
		if hasLabel {
			ds.Labels = append(ds.Labels, label.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", table, err)
	}

	if len(ds.Points) == 0 {
		return nil, ErrEmpty
	}
	return ds, nil
}

// SaveSQLite writes ds into table, creating it if needed. Labels are stored
// when ds carries them.
func SaveSQLite(ctx context.Context, path, table, column string, ds *Dataset) error {
	if err := checkIdent("table", table); err != nil {
		return err
	}
	if err := checkIdent("column", column); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("dataset: open database: %w", err)
	}
	defer db.Close()

	schema := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s BLOB NOT NULL, %s TEXT)", table, column, LabelColumn)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("dataset: create %s: %w", table, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (?, ?)", table, column, LabelColumn))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range ds.Points {
		var label any
		if ds.Labels != nil {
			label = ds.Label(i)
		}
		if _, err := stmt.ExecContext(ctx, encodeFloat32s(p), label); err != nil {
			return fmt.Errorf("dataset: insert row %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func hasColumn(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return false, fmt.Errorf("dataset: inspect %s: %w", table, err)
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, err
		}
		if name == column {
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		return false, err
	}
	return found, nil
}
