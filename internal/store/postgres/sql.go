package postgres

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/jackc/pgx/v5"
)

// RunSQL executes an ad-hoc query. Numeric param keys ("1", "2", ...)
// bind to $1, $2; otherwise the params bind as @name arguments.
func (c *Client) RunSQL(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	rows, err := c.pool.Query(ctx, query, bindParams(params)...)
	if err != nil {
		return nil, fmt.Errorf("running sql: %w", err)
	}
	defer rows.Close()

	fieldDescriptions := rows.FieldDescriptions()
	results := make([]map[string]any, 0)

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("getting row values: %w", err)
		}

		row := make(map[string]any, len(fieldDescriptions))
		for i, fd := range fieldDescriptions {
			row[fd.Name] = values[i]
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sql rows: %w", err)
	}

	return results, nil
}

func bindParams(params map[string]any) []any {
	if len(params) == 0 {
		return nil
	}

	positions := make([]int, 0, len(params))
	for key := range params {
		n, err := strconv.Atoi(key)
		if err != nil {
			return []any{pgx.NamedArgs(params)}
		}
		positions = append(positions, n)
	}
	sort.Ints(positions)

	args := make([]any, 0, len(positions))
	for _, n := range positions {
		args = append(args, params[strconv.Itoa(n)])
	}
	return args
}
