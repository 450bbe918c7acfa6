package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"micelio/internal/config"
	"micelio/internal/content"
	"micelio/internal/store"
)

func querySQLCmd() *cobra.Command {
	var bindings []string
	cmd := &cobra.Command{
		Use:   "sql <statement>",
		Short: "Run SQL against the index tables (entities, relations)",
		Long: "Run SQL against the index tables. entities holds one row per content entry\n" +
			"(kind, entity_id, name, tags, properties, body); relations links entity rows by\n" +
			"rel_type (related_to, simultaneous_with). Rows are printed as JSON with\n" +
			"reference markup left as written.",
		Example: "  micelio query sql \"SELECT entity_id, name FROM entities WHERE kind = :kind\" --param kind=event\n" +
			"  micelio query sql \"SELECT name FROM entities WHERE kind = ?1\" --param 1=song",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParamPairs(bindings)
			if err != nil {
				return err
			}
			return runSQL(strings.Join(args, " "), params)
		},
	}
	cmd.Flags().StringArrayVar(&bindings, "param", nil, "Binding as name=value or position=value; numbers bind as numbers (repeatable)")
	return cmd
}

func runSQL(statement string, params map[string]any) error {
	return withIndex(func(ctx context.Context, _ *config.ProjectConfig, db store.Store) error {
		rows, err := db.RunSQL(ctx, statement, params)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Fprintln(os.Stdout, "[]")
			return nil
		}
		out, err := content.Encode(rows)
		if err != nil {
			return fmt.Errorf("encoding rows: %w", err)
		}
		_, err = os.Stdout.Write(out)
		return err
	})
}

// parseParamPairs turns repeated name=value flags into bindings. Plain
// decimal numbers bind as numbers so start_percent and end_percent compare
// numerically. Anything else, including ids with leading zeros, binds as
// text.
func parseParamPairs(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		name, raw, found := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !found || name == "" {
			return nil, fmt.Errorf("binding %q must look like name=value", pair)
		}
		if _, dup := params[name]; dup {
			return nil, fmt.Errorf("binding %q given twice", name)
		}
		params[name] = bindValue(strings.TrimSpace(raw))
	}
	return params, nil
}

func bindValue(raw string) any {
	digits := strings.TrimLeft(raw, "+-")
	if digits == "" || digits[0] < '0' || digits[0] > '9' {
		return raw
	}
	if len(digits) > 1 && digits[0] == '0' && digits[1] != '.' {
		return raw
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(f, 0) {
		return f
	}
	return raw
}
