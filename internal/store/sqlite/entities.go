package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

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
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("marshaling tags: %w", err)
	}

	query := `
	INSERT INTO entities (entity_id, kind, name, source_file, source_hash, tags, properties, body, last_indexed)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
	ON CONFLICT (kind, entity_id) DO UPDATE SET
		name = excluded.name,
		source_file = excluded.source_file,
		source_hash = excluded.source_hash,
		tags = excluded.tags,
		properties = excluded.properties,
		body = excluded.body,
		last_indexed = datetime('now')
	`

	_, err = c.db.ExecContext(ctx, query,
		e.ID,
		e.Kind,
		e.Name,
		e.SourceFile,
		e.SourceHash,
		string(tagsJSON),
		string(propsJSON),
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
	WHERE kind = ? AND entity_id = ?
	`

	var e store.Entity
	var tagsText, propsText string
	err := c.db.QueryRowContext(ctx, query, kind, id).Scan(
		&e.ID,
		&e.Kind,
		&e.Name,
		&e.SourceFile,
		&e.SourceHash,
		&tagsText,
		&propsText,
		&e.Body,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting entity: %w", err)
	}

	if propsText != "" {
		if err := json.Unmarshal([]byte(propsText), &e.Properties); err != nil {
			return nil, fmt.Errorf("unmarshaling properties: %w", err)
		}
	}
	if tagsText != "" {
		if err := json.Unmarshal([]byte(tagsText), &e.Tags); err != nil {
			return nil, fmt.Errorf("unmarshaling tags: %w", err)
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
	WHERE (? = '' OR kind = ?)
	ORDER BY kind, name
	`

	rows, err := c.db.QueryContext(ctx, query, kind, kind)
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}
	defer rows.Close()

	summaries := []store.EntitySummary{}
	for rows.Next() {
		var s store.EntitySummary
		var tagsText string
		if err := rows.Scan(&s.ID, &s.Kind, &s.Name, &tagsText); err != nil {
			return nil, fmt.Errorf("scanning entity summary: %w", err)
		}
		if tagsText != "" {
			if err := json.Unmarshal([]byte(tagsText), &s.Tags); err != nil {
				return nil, fmt.Errorf("unmarshaling tags: %w", err)
			}
		}
		if s.Tags == nil {
			s.Tags = []string{}
		}
		if tag != "" && !containsTag(s.Tags, tag) {
			continue
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
	args := make([]any, 0, len(keep)+1)
	args = append(args, kind)
	query := `DELETE FROM entities WHERE kind = ?`
	if len(keep) > 0 {
		placeholders := make([]string, len(keep))
		for i, id := range keep {
			placeholders[i] = "?"
			args = append(args, id)
		}
		query += fmt.Sprintf(" AND entity_id NOT IN (%s)", strings.Join(placeholders, ", "))
	}

	result, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("removing stale entities: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}
	return affected, nil
}

// GetKindHashes returns the stored source hash per entity id.
func (c *Client) GetKindHashes(ctx context.Context, kind string) (map[string]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT entity_id, source_hash FROM entities WHERE kind = ?`, kind)
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

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
