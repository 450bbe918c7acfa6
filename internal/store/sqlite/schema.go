package sqlite

import (
	"context"
	"fmt"
	"strings"
)

const ddl = `
CREATE TABLE IF NOT EXISTS entities (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	entity_id    TEXT NOT NULL,
	kind         TEXT NOT NULL,
	name         TEXT NOT NULL,
	source_file  TEXT DEFAULT '',
	source_hash  TEXT DEFAULT '',
	tags         TEXT DEFAULT '[]',
	properties   TEXT DEFAULT '{}',
	body         TEXT DEFAULT '',
	last_indexed TEXT DEFAULT (datetime('now')),
	CONSTRAINT uq_entity_kind_id UNIQUE (kind, entity_id)
);

CREATE TABLE IF NOT EXISTS relations (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	src_id   INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
	dst_id   INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
	rel_type TEXT NOT NULL,
	CONSTRAINT uq_relation UNIQUE (src_id, dst_id, rel_type)
);

CREATE INDEX IF NOT EXISTS idx_entities_kind ON entities (kind);
CREATE INDEX IF NOT EXISTS idx_relations_src ON relations (src_id);
CREATE INDEX IF NOT EXISTS idx_relations_dst ON relations (dst_id);

CREATE VIRTUAL TABLE IF NOT EXISTS entities_fts USING fts5(
	name,
	tags,
	body,
	content=entities,
	content_rowid=id,
	tokenize='unicode61 remove_diacritics 2'
);

CREATE TRIGGER IF NOT EXISTS entities_ai AFTER INSERT ON entities BEGIN
	INSERT INTO entities_fts(rowid, name, tags, body)
	VALUES (new.id, new.name, new.tags, new.body);
END;

CREATE TRIGGER IF NOT EXISTS entities_ad AFTER DELETE ON entities BEGIN
	INSERT INTO entities_fts(entities_fts, rowid, name, tags, body)
	VALUES ('delete', old.id, old.name, old.tags, old.body);
END;

CREATE TRIGGER IF NOT EXISTS entities_au AFTER UPDATE ON entities BEGIN
	INSERT INTO entities_fts(entities_fts, rowid, name, tags, body)
	VALUES ('delete', old.id, old.name, old.tags, old.body);
	INSERT INTO entities_fts(rowid, name, tags, body)
	VALUES (new.id, new.name, new.tags, new.body);
END;
`

func (c *Client) EnsureSchema(ctx context.Context) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(ddl) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}

	return nil
}

// splitStatements splits a DDL script on statement-ending semicolons.
// Semicolons inside a trigger body only end the statement at END;.
func splitStatements(script string) []string {
	var statements []string
	var current strings.Builder
	inBody := false

	for _, line := range strings.Split(script, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		upper := strings.ToUpper(stripped)
		switch {
		case strings.HasSuffix(upper, " BEGIN"):
			inBody = true
		case inBody && upper == "END;":
			inBody = false
			statements = append(statements, current.String())
			current.Reset()
		case !inBody && strings.HasSuffix(stripped, ";"):
			statements = append(statements, current.String())
			current.Reset()
		}
	}

	if strings.TrimSpace(current.String()) != "" {
		statements = append(statements, current.String())
	}

	return statements
}
