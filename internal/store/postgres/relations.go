package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"micelio/internal/store"
)

func (c *Client) ClearRelations(ctx context.Context, from store.EntityRef) error {
	query := `
DELETE FROM relations
WHERE src_id = (SELECT id FROM entities WHERE kind = $1 AND entity_id = $2)
`
	if _, err := c.pool.Exec(ctx, query, from.Kind, from.ID); err != nil {
		return fmt.Errorf("clearing relations for %s/%s: %w", from.Kind, from.ID, err)
	}
	return nil
}

// UpsertRelation links two indexed entities. Both ends must already exist.
func (c *Client) UpsertRelation(ctx context.Context, from, to store.EntityRef, relType string) error {
	srcID, err := c.rowID(ctx, from)
	if err != nil {
		return err
	}
	dstID, err := c.rowID(ctx, to)
	if err != nil {
		return err
	}

	query := `
INSERT INTO relations (src_id, dst_id, rel_type)
VALUES ($1, $2, $3)
ON CONFLICT (src_id, dst_id, rel_type) DO NOTHING
`
	if _, err := c.pool.Exec(ctx, query, srcID, dstID, relType); err != nil {
		return fmt.Errorf("upserting relation %s/%s -> %s/%s: %w", from.Kind, from.ID, to.Kind, to.ID, err)
	}
	return nil
}

func (c *Client) GetRelations(ctx context.Context, ref store.EntityRef, direction string) ([]store.Relation, error) {
	direction, err := store.NormalizeDirection(direction)
	if err != nil {
		return nil, err
	}

	query := `
SELECT s.kind, s.entity_id, s.name, d.kind, d.entity_id, d.name, r.rel_type,
    CASE WHEN s.kind = $1 AND s.entity_id = $2 THEN 'outgoing' ELSE 'incoming' END AS direction
FROM relations r
JOIN entities s ON s.id = r.src_id
JOIN entities d ON d.id = r.dst_id
WHERE ($3 IN ('outgoing', 'both') AND s.kind = $1 AND s.entity_id = $2)
   OR ($3 IN ('incoming', 'both') AND d.kind = $1 AND d.entity_id = $2)
ORDER BY r.rel_type, d.name
`

	rows, err := c.pool.Query(ctx, query, ref.Kind, ref.ID, direction)
	if err != nil {
		return nil, fmt.Errorf("getting relations: %w", err)
	}
	defer rows.Close()

	relations := []store.Relation{}
	for rows.Next() {
		var r store.Relation
		err := rows.Scan(
			&r.From.Kind, &r.From.ID, &r.From.Name,
			&r.To.Kind, &r.To.ID, &r.To.Name,
			&r.Type, &r.Direction,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning relation: %w", err)
		}
		relations = append(relations, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating relations: %w", err)
	}
	return relations, nil
}

func (c *Client) rowID(ctx context.Context, ref store.EntityRef) (int64, error) {
	var id int64
	err := c.pool.QueryRow(ctx,
		`SELECT id FROM entities WHERE kind = $1 AND entity_id = $2`, ref.Kind, ref.ID,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s/%s", store.ErrNotIndexed, ref.Kind, ref.ID)
	}
	if err != nil {
		return 0, fmt.Errorf("looking up %s/%s: %w", ref.Kind, ref.ID, err)
	}
	return id, nil
}
