package postgres

import (
	"context"
	"fmt"
)

// Search vectors use the 'simple' configuration: content is Spanish and
// English mixed, and stemming either way hurts proper names.
const ddl = `
CREATE TABLE IF NOT EXISTS entities (
    id            BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    entity_id     TEXT NOT NULL,
    kind          TEXT NOT NULL,
    name          TEXT NOT NULL,
    source_file   TEXT DEFAULT '',
    source_hash   TEXT DEFAULT '',
    tags          TEXT[] DEFAULT '{}',
    properties    JSONB DEFAULT '{}',
    body          TEXT DEFAULT '',
    search_vector TSVECTOR,
    last_indexed  TIMESTAMPTZ DEFAULT now(),
    CONSTRAINT uq_entity_kind_id UNIQUE (kind, entity_id)
);

CREATE TABLE IF NOT EXISTS relations (
    id       BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    src_id   BIGINT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
    dst_id   BIGINT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
    rel_type TEXT NOT NULL,
    CONSTRAINT uq_relation UNIQUE (src_id, dst_id, rel_type)
);

CREATE INDEX IF NOT EXISTS idx_entities_search ON entities USING GIN (search_vector);
CREATE INDEX IF NOT EXISTS idx_entities_kind ON entities (kind);
CREATE INDEX IF NOT EXISTS idx_entities_tags ON entities USING GIN (tags);
CREATE INDEX IF NOT EXISTS idx_relations_src ON relations (src_id);
CREATE INDEX IF NOT EXISTS idx_relations_dst ON relations (dst_id);
`

func (c *Client) EnsureSchema(ctx context.Context) error {
	// a multi-statement Exec runs as one implicit transaction
	if _, err := c.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
