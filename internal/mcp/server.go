package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"micelio/internal/config"
	"micelio/internal/store"
)

// Querier is the read side of store.Store the tools need.
type Querier interface {
	GetEntity(ctx context.Context, kind, id string) (*store.Entity, error)
	ListEntities(ctx context.Context, kind, tag string) ([]store.EntitySummary, error)
	Search(ctx context.Context, query, kind string) ([]store.SearchResult, error)
	GetRelations(ctx context.Context, ref store.EntityRef, direction string) ([]store.Relation, error)
}

type Server struct {
	stages config.StageSet
	db     Querier
	mcp    *sdk.Server
}

func NewServer(stages config.StageSet, db Querier, version string) *Server {
	s := &Server{
		stages: stages.Sorted(),
		db:     db,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "micelio",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
