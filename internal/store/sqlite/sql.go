package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
)

// RunSQL executes an ad-hoc query. Numeric param keys ("1", "2", ...)
// bind positionally, any other key binds as a named parameter (:name).
func (c *Client) RunSQL(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	rows, err := c.db.QueryContext(ctx, query, bindParams(params)...)
	if err != nil {
		return nil, fmt.Errorf("running sql: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("getting columns: %w", err)
	}

	results := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sql rows: %w", err)
	}

	return results, nil
}

func bindParams(params map[string]any) []any {
	var positions []int
	var names []string
	for key := range params {
		if n, err := strconv.Atoi(key); err == nil {
			positions = append(positions, n)
			continue
		}
		names = append(names, key)
	}
	sort.Ints(positions)
	sort.Strings(names)

	args := make([]any, 0, len(params))
	for _, n := range positions {
		args = append(args, params[strconv.Itoa(n)])
	}
	for _, name := range names {
		args = append(args, sql.Named(name, params[name]))
	}
	return args
}
