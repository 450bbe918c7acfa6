package network

import (
	"fmt"

	"micelio/internal/config"
	"micelio/internal/content"
)

type Highlight struct {
	Background string `json:"background"`
	Border     string `json:"border"`
}

type NodeColor struct {
	Background string    `json:"background"`
	Border     string    `json:"border"`
	Highlight  Highlight `json:"highlight"`
}

type Font struct {
	Color string `json:"color"`
	Size  int    `json:"size"`
	Align string `json:"align,omitempty"`
}

type Node struct {
	ID    string    `json:"id"`
	Label string    `json:"label"`
	Title string    `json:"title"`
	Color NodeColor `json:"color"`
	Font  Font      `json:"font"`
	Shape string    `json:"shape"`
	Size  int       `json:"size"`
}

type EdgeColor struct {
	Color     string `json:"color"`
	Highlight string `json:"highlight"`
}

type Smooth struct {
	Type      string  `json:"type"`
	Roundness float64 `json:"roundness"`
}

type Edge struct {
	From   string    `json:"from"`
	To     string    `json:"to"`
	Label  string    `json:"label"`
	Title  string    `json:"title"`
	Color  EdgeColor `json:"color"`
	Arrows string    `json:"arrows"`
	Font   Font      `json:"font"`
	Smooth Smooth    `json:"smooth"`
}

type NodeInfo struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// Graph is the network_data.json document.
type Graph struct {
	Nodes   []Node              `json:"nodes"`
	Edges   []Edge              `json:"edges"`
	NodeMap map[string]NodeInfo `json:"node_map"`
}

// Build turns characters into a relation graph. Relations whose target is
// not a known character are dropped.
func Build(characters []content.Character, cfg config.NetworkConfig) Graph {
	principal := make(map[string]bool, len(cfg.PrincipalIDs))
	for _, id := range cfg.PrincipalIDs {
		principal[id] = true
	}

	g := Graph{
		Nodes:   make([]Node, 0, len(characters)),
		Edges:   []Edge{},
		NodeMap: make(map[string]NodeInfo, len(characters)),
	}
	for _, c := range characters {
		g.NodeMap[c.ID] = NodeInfo{Name: c.Name, Role: c.Role}
	}

	for _, c := range characters {
		color := NodeColorFor(c, cfg)
		size := cfg.Sizes.Default
		if principal[c.ID] {
			size = cfg.Sizes.Principal
		}
		g.Nodes = append(g.Nodes, Node{
			ID:    c.ID,
			Label: c.Name,
			Title: fmt.Sprintf("%s\n%s", c.Name, c.Role),
			Color: NodeColor{
				Background: color,
				Border:     "#fff",
				Highlight:  Highlight{Background: color, Border: "#fff"},
			},
			Font:  Font{Color: "#fff", Size: 14},
			Shape: "dot",
			Size:  size,
		})

		for _, rel := range c.Relations {
			if _, ok := g.NodeMap[rel.Target]; !ok {
				continue
			}
			g.Edges = append(g.Edges, Edge{
				From:   c.ID,
				To:     rel.Target,
				Label:  rel.Type,
				Title:  rel.Type,
				Color:  EdgeColor{Color: cfg.Edges.Color, Highlight: cfg.Edges.Highlight},
				Arrows: "to",
				Font:   Font{Color: "#aaa", Size: 10, Align: "middle"},
				Smooth: Smooth{Type: "curvedCW", Roundness: 0.2},
			})
		}
	}
	return g
}

// NodeColorFor picks the colour of the first configured tag the character
// carries.
func NodeColorFor(c content.Character, cfg config.NetworkConfig) string {
	for _, tc := range cfg.TagColors {
		if c.HasTag(tc.Tag) {
			return tc.Color
		}
	}
	return cfg.DefaultColor
}
