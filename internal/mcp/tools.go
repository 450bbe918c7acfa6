package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"micelio/internal/content"
	"micelio/internal/store"
)

type SearchContentInput struct {
	Query string `json:"query" jsonschema:"search terms"`
	Kind  string `json:"kind,omitempty" jsonschema:"restrict to character, location, song, plot, intro or event"`
}

type GetEntityInput struct {
	Kind string `json:"kind" jsonschema:"entity kind"`
	ID   string `json:"id" jsonschema:"entity id"`
}

type GetRelationsInput struct {
	Kind      string `json:"kind" jsonschema:"entity kind"`
	ID        string `json:"id" jsonschema:"entity id"`
	Direction string `json:"direction,omitempty" jsonschema:"outgoing, incoming, or both"`
}

type ListEntitiesInput struct {
	Kind string `json:"kind,omitempty" jsonschema:"entity kind filter"`
	Tag  string `json:"tag,omitempty" jsonschema:"tag filter"`
}

type GetStagesInput struct{}

type EntityOutput struct {
	ID         string         `json:"id"`
	Kind       string         `json:"kind"`
	Name       string         `json:"name"`
	SourceFile string         `json:"source_file"`
	Tags       []string       `json:"tags"`
	Properties map[string]any `json:"properties"`
	Body       string         `json:"body"`
}

type EntitySummaryOutput struct {
	ID   string   `json:"id"`
	Kind string   `json:"kind"`
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

type EntityRefOutput struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Name string `json:"name"`
}

type RelationOutput struct {
	From      EntityRefOutput `json:"from"`
	To        EntityRefOutput `json:"to"`
	Type      string          `json:"type"`
	Direction string          `json:"direction"`
}

type SearchResultOutput struct {
	ID      string   `json:"id"`
	Kind    string   `json:"kind"`
	Name    string   `json:"name"`
	Tags    []string `json:"tags"`
	Score   float64  `json:"score"`
	Snippet string   `json:"snippet"`
}

type SearchContentOutput struct {
	Results []SearchResultOutput `json:"results"`
}

type ListEntitiesOutput struct {
	Entities []EntitySummaryOutput `json:"entities"`
}

type GetRelationsOutput struct {
	Relations []RelationOutput `json:"relations"`
}

type StageOutput struct {
	Key          string  `json:"key"`
	Name         string  `json:"name"`
	Color        string  `json:"color"`
	PercentStart float64 `json:"percent_start"`
	PercentEnd   float64 `json:"percent_end"`
	Order        int     `json:"order"`
}

type GetStagesOutput struct {
	Stages []StageOutput `json:"stages"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "search_content",
		Description: "Search characters, locations, songs, plots and timeline events by name, tags and text",
	}, s.handleSearchContent)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_entity",
		Description: "Retrieve one entity with its linked properties",
	}, s.handleGetEntity)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_relations",
		Description: "List the relations of an entity",
	}, s.handleGetRelations)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_entities",
		Description: "List entities with optional kind and tag filters",
	}, s.handleListEntities)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_stages",
		Description: "Return the narrative stages and their progress ranges",
	}, s.handleGetStages)
}

func validKind(kind string, required bool) error {
	if kind == "" {
		if required {
			return fmt.Errorf("kind is required")
		}
		return nil
	}
	if !content.Kind(kind).Valid() {
		return fmt.Errorf("unknown kind: %s", kind)
	}
	return nil
}

func (s *Server) handleSearchContent(ctx context.Context, req *sdk.CallToolRequest, input SearchContentInput) (*sdk.CallToolResult, SearchContentOutput, error) {
	if input.Query == "" {
		return nil, SearchContentOutput{}, fmt.Errorf("query is required")
	}
	if err := validKind(input.Kind, false); err != nil {
		return nil, SearchContentOutput{}, err
	}
	results, err := s.db.Search(ctx, input.Query, input.Kind)
	if err != nil {
		return nil, SearchContentOutput{}, err
	}

	output := make([]SearchResultOutput, 0, len(results))
	for _, r := range results {
		output = append(output, SearchResultOutput{
			ID:      r.ID,
			Kind:    r.Kind,
			Name:    r.Name,
			Tags:    append([]string{}, r.Tags...),
			Score:   r.Score,
			Snippet: r.Snippet,
		})
	}
	return nil, SearchContentOutput{Results: output}, nil
}

func (s *Server) handleGetEntity(ctx context.Context, req *sdk.CallToolRequest, input GetEntityInput) (*sdk.CallToolResult, EntityOutput, error) {
	if err := validKind(input.Kind, true); err != nil {
		return nil, EntityOutput{}, err
	}
	if input.ID == "" {
		return nil, EntityOutput{}, fmt.Errorf("id is required")
	}
	entity, err := s.db.GetEntity(ctx, input.Kind, input.ID)
	if err != nil {
		return nil, EntityOutput{}, err
	}
	if entity == nil {
		return nil, EntityOutput{}, fmt.Errorf("entity not found: %s/%s", input.Kind, input.ID)
	}
	return nil, entityOutput(entity), nil
}

func (s *Server) handleGetRelations(ctx context.Context, req *sdk.CallToolRequest, input GetRelationsInput) (*sdk.CallToolResult, GetRelationsOutput, error) {
	if err := validKind(input.Kind, true); err != nil {
		return nil, GetRelationsOutput{}, err
	}
	if input.ID == "" {
		return nil, GetRelationsOutput{}, fmt.Errorf("id is required")
	}
	direction, err := store.NormalizeDirection(input.Direction)
	if err != nil {
		return nil, GetRelationsOutput{}, err
	}
	rels, err := s.db.GetRelations(ctx, store.EntityRef{Kind: input.Kind, ID: input.ID}, direction)
	if err != nil {
		return nil, GetRelationsOutput{}, err
	}

	output := make([]RelationOutput, 0, len(rels))
	for _, rel := range rels {
		output = append(output, RelationOutput{
			From:      refOutput(rel.From),
			To:        refOutput(rel.To),
			Type:      rel.Type,
			Direction: rel.Direction,
		})
	}
	return nil, GetRelationsOutput{Relations: output}, nil
}

func (s *Server) handleListEntities(ctx context.Context, req *sdk.CallToolRequest, input ListEntitiesInput) (*sdk.CallToolResult, ListEntitiesOutput, error) {
	if err := validKind(input.Kind, false); err != nil {
		return nil, ListEntitiesOutput{}, err
	}
	items, err := s.db.ListEntities(ctx, input.Kind, input.Tag)
	if err != nil {
		return nil, ListEntitiesOutput{}, err
	}

	output := make([]EntitySummaryOutput, 0, len(items))
	for _, item := range items {
		output = append(output, EntitySummaryOutput{
			ID:   item.ID,
			Kind: item.Kind,
			Name: item.Name,
			Tags: append([]string{}, item.Tags...),
		})
	}
	return nil, ListEntitiesOutput{Entities: output}, nil
}

func (s *Server) handleGetStages(ctx context.Context, req *sdk.CallToolRequest, input GetStagesInput) (*sdk.CallToolResult, GetStagesOutput, error) {
	output := make([]StageOutput, 0, len(s.stages))
	for _, stage := range s.stages {
		output = append(output, StageOutput{
			Key:          stage.Key,
			Name:         stage.Name,
			Color:        stage.Color,
			PercentStart: stage.PercentStart,
			PercentEnd:   stage.PercentEnd,
			Order:        stage.Order,
		})
	}
	return nil, GetStagesOutput{Stages: output}, nil
}

func entityOutput(entity *store.Entity) EntityOutput {
	properties := make(map[string]any, len(entity.Properties))
	for key, value := range entity.Properties {
		properties[key] = value
	}
	return EntityOutput{
		ID:         entity.ID,
		Kind:       entity.Kind,
		Name:       entity.Name,
		SourceFile: entity.SourceFile,
		Tags:       append([]string{}, entity.Tags...),
		Properties: properties,
		Body:       entity.Body,
	}
}

func refOutput(ref store.EntityRef) EntityRefOutput {
	return EntityRefOutput{ID: ref.ID, Kind: ref.Kind, Name: ref.Name}
}
