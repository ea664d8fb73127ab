package commands

import (
	"context"
	"sort"
	"strings"

	"clipkeep/internal/application"
	"clipkeep/internal/adapters/filesystem"
	"clipkeep/internal/domain"
	"clipkeep/internal/ports"
)

// SearchResult wraps a history item with a relevance score
type SearchResult struct {
	Item  domain.ClipboardItem
	Score int
}

// SearchCommand searches history with fuzzy ranking
type SearchCommand struct {
	svc   ports.HistoryService
	Query string
	Kind  string
	Limit int
	// Fuzzy ranks every item instead of only substring matches
	Fuzzy bool
}

// NewSearchCommand creates a new SearchCommand
func NewSearchCommand(svc ports.HistoryService, query string) *SearchCommand {
	return &SearchCommand{
		svc:   svc,
		Query: query,
	}
}

// Execute runs the search command and returns scored, sorted results
func (c *SearchCommand) Execute(ctx context.Context) ([]SearchResult, error) {
	if err := application.ValidateRequired("query", c.Query); err != nil {
		return nil, err
	}
	kind, err := application.ValidateKind("kind", c.Kind)
	if err != nil {
		return nil, err
	}
	if err := application.ValidateLimit("limit", c.Limit); err != nil {
		return nil, err
	}

	var candidates []domain.ClipboardItem
	if c.Fuzzy {
		candidates = c.svc.Filter(kind, "")
	} else {
		candidates, err = c.svc.Search(ctx, c.Query, kind, 0)
		if err != nil {
			return nil, err
		}
	}

	results := FuzzySort(candidates, c.Query)
	if c.Limit > 0 && len(results) > c.Limit {
		results = results[:c.Limit]
	}
	return results, nil
}

// FuzzyScore calculates a relevance score for how well target matches query
func FuzzyScore(target, query string) int {
	target = strings.ToLower(target)
	query = strings.ToLower(query)

	if len(query) == 0 {
		return 0
	}

	// Check for exact substring match first (highest priority)
	if strings.Contains(target, query) {
		score := 100
		// Bonus if it starts with query
		if strings.HasPrefix(target, query) {
			score += 50
		}
		return score
	}

	// Fuzzy match: check if chars appear in order
	score := 0
	queryIdx := 0
	prevMatchIdx := -1

	for i := 0; i < len(target) && queryIdx < len(query); i++ {
		if target[i] == query[queryIdx] {
			if prevMatchIdx == i-1 {
				score += 10 // consecutive chars
			}
			if i == 0 {
				score += 15 // start of string
			}
			if i > 0 && isSeparator(target[i-1]) {
				score += 10 // after separator
			}
			score += 1
			prevMatchIdx = i
			queryIdx++
		}
	}

	if queryIdx == len(query) {
		return score
	}
	return 0
}

func isSeparator(b byte) bool {
	switch b {
	case ' ', '.', '-', '/', '_', '\n':
		return true
	}
	return false
}

// FuzzySort ranks items by relevance to the query. Ties keep history order,
// so newer items win.
func FuzzySort(items []domain.ClipboardItem, query string) []SearchResult {
	scored := make([]SearchResult, 0, len(items))

	for _, item := range items {
		best := max(
			FuzzyScore(item.Text, query),
			FuzzyScore(item.SourceAppPath, query),
			fileNameScore(item, query),
		)
		if best > 0 {
			scored = append(scored, SearchResult{Item: item, Score: best})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}

func fileNameScore(item domain.ClipboardItem, query string) int {
	if !item.IsFile() {
		return 0
	}
	return FuzzyScore(filesystem.OriginalName(item.FilePath), query)
}
