package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"micelio/internal/store"
)

func (c *Client) UpsertEntity(ctx context.Context, e store.EntityInput) error {
	propsJSON, err := json.Marshal(e.Properties)
	if err != nil {
		return fmt.Errorf("marshaling properties: %w", err)
	}

	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}

	query := `
INSERT INTO entities (entity_id, kind, name, source_file, source_hash, tags, properties, body, last_indexed, search_vector)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(),
    setweight(to_tsvector('simple', coalesce($3, '')), 'A') ||
    setweight(to_tsvector('simple', array_to_string($6::text[], ' ')), 'B') ||
    setweight(to_tsvector('simple', coalesce($8, '')), 'C')
)
ON CONFLICT (kind, entity_id) DO UPDATE SET
    name = EXCLUDED.name,
    source_file = EXCLUDED.source_file,
    source_hash = EXCLUDED.source_hash,
    tags = EXCLUDED.tags,
    properties = EXCLUDED.properties,
    body = EXCLUDED.body,
    last_indexed = now(),
    search_vector = EXCLUDED.search_vector
`

	_, err = c.pool.Exec(ctx, query,
		e.ID,
		e.Kind,
		e.Name,
		e.SourceFile,
		e.SourceHash,
		tags,
		propsJSON,
		e.Body,
	)
	if err != nil {
		return fmt.Errorf("upserting entity: %w", err)
	}
	return nil
}

func (c *Client) GetEntity(ctx context.Context, kind, id string) (*store.Entity, error) {
	query := `
SELECT entity_id, kind, name, source_file, source_hash, tags, properties, body
FROM entities
WHERE kind = $1 AND entity_id = $2
`

	var e store.Entity
	var propsBytes []byte
	err := c.pool.QueryRow(ctx, query, kind, id).Scan(
		&e.ID,
		&e.Kind,
		&e.Name,
		&e.SourceFile,
		&e.SourceHash,
		&e.Tags,
		&propsBytes,
		&e.Body,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting entity: %w", err)
	}

	if len(propsBytes) > 0 {
		if err := json.Unmarshal(propsBytes, &e.Properties); err != nil {
			return nil, fmt.Errorf("unmarshaling properties: %w", err)
		}
	}
	if e.Properties == nil {
		e.Properties = map[string]any{}
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	return &e, nil
}

func (c *Client) ListEntities(ctx context.Context, kind, tag string) ([]store.EntitySummary, error) {
	query := `
SELECT entity_id, kind, name, tags
FROM entities
WHERE ($1 = '' OR kind = $1)
  AND ($2 = '' OR lower($2) = ANY(SELECT lower(t) FROM unnest(tags) AS t))
ORDER BY kind, name
`

	rows, err := c.pool.Query(ctx, query, kind, tag)
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}
	defer rows.Close()

	summaries := []store.EntitySummary{}
	for rows.Next() {
		var s store.EntitySummary
		if err := rows.Scan(&s.ID, &s.Kind, &s.Name, &s.Tags); err != nil {
			return nil, fmt.Errorf("scanning entity summary: %w", err)
		}
		if s.Tags == nil {
			s.Tags = []string{}
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entity summaries: %w", err)
	}
	return summaries, nil
}

// RemoveStaleEntities deletes every entity of kind whose id is not in keep.
func (c *Client) RemoveStaleEntities(ctx context.Context, kind string, keep []string) (int64, error) {
	if keep == nil {
		keep = []string{}
	}

	query := `
DELETE FROM entities
WHERE kind = $1
  AND NOT (entity_id = ANY($2))
`

	tag, err := c.pool.Exec(ctx, query, kind, keep)
	if err != nil {
		return 0, fmt.Errorf("removing stale entities: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GetKindHashes returns the stored source hash per entity id.
func (c *Client) GetKindHashes(ctx context.Context, kind string) (map[string]string, error) {
	rows, err := c.pool.Query(ctx, `SELECT entity_id, source_hash FROM entities WHERE kind = $1`, kind)
	if err != nil {
		return nil, fmt.Errorf("query kind hashes: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]string)
	for rows.Next() {
		var id, hash string
		if err := rows.Scan(&id, &hash); err != nil {
			return nil, fmt.Errorf("scanning kind hash: %w", err)
		}
		hashes[id] = hash
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating kind hashes: %w", err)
	}
	return hashes, nil
}
