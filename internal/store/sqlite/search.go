package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"micelio/internal/store"
)

func (c *Client) Search(ctx context.Context, query, kind string) ([]store.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	match := matchQuery(query)
	if match == "" {
		return []store.SearchResult{}, nil
	}

	sqlQuery := `
	SELECT e.entity_id, e.kind, e.name, e.tags,
		   -bm25(entities_fts, 10.0, 4.0, 1.0) AS score,
		   snippet(entities_fts, 2, '**', '**', '...', 24) AS snippet
	FROM entities_fts
	JOIN entities e ON entities_fts.rowid = e.id
	WHERE entities_fts MATCH ?
	  AND (? = '' OR e.kind = ?)
	ORDER BY score DESC, e.name ASC
	LIMIT 50
	`

	rows, err := c.db.QueryContext(ctx, sqlQuery, match, kind, kind)
	if err != nil {
		return nil, fmt.Errorf("searching entities: %w", err)
	}
	defer rows.Close()

	results := []store.SearchResult{}
	for rows.Next() {
		var r store.SearchResult
		var tagsText string
		if err := rows.Scan(&r.ID, &r.Kind, &r.Name, &tagsText, &r.Score, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		if tagsText != "" {
			if err := json.Unmarshal([]byte(tagsText), &r.Tags); err != nil {
				return nil, fmt.Errorf("unmarshaling tags: %w", err)
			}
		}
		if r.Tags == nil {
			r.Tags = []string{}
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search results: %w", err)
	}

	return results, nil
}

type queryTerm struct {
	text   string
	op     string
	phrase bool
	prefix bool
	negate bool
}

// splitQuery breaks a web-search style query into quoted phrases, bare
// words and the AND/OR/NOT keywords.
func splitQuery(query string) []queryTerm {
	var terms []queryTerm
	var word strings.Builder
	inPhrase := false
	negatePhrase := false

	flush := func() {
		token := word.String()
		word.Reset()
		if token == "" {
			return
		}
		switch upper := strings.ToUpper(token); upper {
		case "AND", "OR", "NOT":
			terms = append(terms, queryTerm{op: upper})
			return
		}
		term := queryTerm{}
		if strings.HasPrefix(token, "-") {
			term.negate = true
			token = token[1:]
		}
		if strings.HasSuffix(token, "*") {
			term.prefix = true
			token = strings.TrimRight(token, "*")
		}
		token = strings.ReplaceAll(token, `"`, "")
		if token == "" {
			return
		}
		term.text = token
		terms = append(terms, term)
	}

	for _, r := range query {
		switch {
		case r == '"' && inPhrase:
			inPhrase = false
			if text := strings.TrimSpace(word.String()); text != "" {
				terms = append(terms, queryTerm{text: text, phrase: true, negate: negatePhrase})
			}
			word.Reset()
		case r == '"':
			negatePhrase = word.String() == "-"
			if negatePhrase {
				word.Reset()
			}
			flush()
			inPhrase = true
		case inPhrase:
			word.WriteRune(r)
		case unicode.IsSpace(r):
			flush()
		default:
			word.WriteRune(r)
		}
	}
	if inPhrase {
		if text := strings.TrimSpace(word.String()); text != "" {
			terms = append(terms, queryTerm{text: text, phrase: true, negate: negatePhrase})
		}
	} else {
		flush()
	}

	return terms
}

// matchQuery renders a web-search style query as an FTS5 MATCH
// expression. Every word is quoted so ids such as vaquero-atomico do not
// trip the FTS5 syntax. FTS5 NOT is binary, so a negation with nothing
// before it is dropped.
func matchQuery(query string) string {
	var out []string
	pendingOp := ""

	for _, term := range splitQuery(query) {
		if term.op != "" {
			if len(out) > 0 {
				pendingOp = term.op
			}
			continue
		}

		quoted := `"` + term.text + `"`
		if term.prefix && !term.phrase {
			quoted += "*"
		}

		switch {
		case term.negate || pendingOp == "NOT":
			if len(out) == 0 {
				pendingOp = ""
				continue
			}
			out = append(out, "NOT", quoted)
		case len(out) == 0:
			out = append(out, quoted)
		case pendingOp == "OR":
			out = append(out, "OR", quoted)
		default:
			out = append(out, "AND", quoted)
		}
		pendingOp = ""
	}

	return strings.Join(out, " ")
}
