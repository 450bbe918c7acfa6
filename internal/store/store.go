package store

import "context"

// Store is the searchable content index.
type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	UpsertEntity(ctx context.Context, e EntityInput) error
	RemoveStaleEntities(ctx context.Context, kind string, keep []string) (int64, error)
	GetKindHashes(ctx context.Context, kind string) (map[string]string, error)

	ClearRelations(ctx context.Context, from EntityRef) error
	UpsertRelation(ctx context.Context, from, to EntityRef, relType string) error
	GetRelations(ctx context.Context, ref EntityRef, direction string) ([]Relation, error)

	GetEntity(ctx context.Context, kind, id string) (*Entity, error)
	ListEntities(ctx context.Context, kind, tag string) ([]EntitySummary, error)
	Search(ctx context.Context, query, kind string) ([]SearchResult, error)

	RunSQL(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}
