package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipkeep/internal/application"
	"clipkeep/internal/domain"
)

func TestFuzzyScore(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		query     string
		wantScore int
		wantMin   int // use this for relative comparisons
	}{
		{
			name:      "exact match",
			target:    "clipboard",
			query:     "clipboard",
			wantScore: 150, // 100 for contains + 50 for prefix
		},
		{
			name:      "prefix match",
			target:    "clipboard history",
			query:     "clipboard",
			wantScore: 150,
		},
		{
			name:      "substring match",
			target:    "my clipboard",
			query:     "clipboard",
			wantScore: 100, // contains only
		},
		{
			name:    "fuzzy match across separators",
			target:  "c-l-i-p",
			query:   "clip",
			wantMin: 40,
		},
		{
			name:      "no match",
			target:    "clipboard",
			query:     "xyz",
			wantScore: 0,
		},
		{
			name:      "empty query",
			target:    "clipboard",
			query:     "",
			wantScore: 0,
		},
		{
			name:    "case insensitive",
			target:  "CLIPBOARD",
			query:   "clipboard",
			wantMin: 100,
		},
		{
			name:    "path match",
			target:  "/usr/bin/firefox",
			query:   "firefox",
			wantMin: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := FuzzyScore(tt.target, tt.query)

			switch {
			case tt.wantScore > 0:
				assert.Equal(t, tt.wantScore, score)
			case tt.wantMin > 0:
				assert.GreaterOrEqual(t, score, tt.wantMin)
			default:
				assert.Zero(t, score)
			}
		})
	}
}

func TestFuzzyScore_Ordering(t *testing.T) {
	query := "notes"

	exactScore := FuzzyScore("notes", query)
	prefixScore := FuzzyScore("notes for tuesday", query)
	containsScore := FuzzyScore("meeting notes", query)
	fuzzyScore := FuzzyScore("n.o.t.e.s", query)

	assert.GreaterOrEqual(t, exactScore, prefixScore)
	assert.GreaterOrEqual(t, prefixScore, containsScore)
	assert.Greater(t, containsScore, fuzzyScore)
}

func TestFuzzySort(t *testing.T) {
	items := []domain.ClipboardItem{
		{ID: "1", Text: "nothing relevant"},
		{ID: "2", Text: "meeting notes"},
		{ID: "3", Text: "File", FilePath: "/store/abc-notes.txt"},
		{ID: "4", Text: "notes for tuesday"},
	}

	sorted := FuzzySort(items, "notes")

	require.Len(t, sorted, 3)
	assert.Equal(t, "4", sorted[0].Item.ID, "prefix match ranks first")
	for i := 1; i < len(sorted); i++ {
		assert.LessOrEqual(t, sorted[i].Score, sorted[i-1].Score)
	}
	// equal scores keep history order
	assert.Equal(t, "2", sorted[1].Item.ID)
	assert.Equal(t, "3", sorted[2].Item.ID)
}

func TestSearchCommand(t *testing.T) {
	svc := newFakeService(
		domain.ClipboardItem{ID: "a", Text: "https://go.dev/doc", Date: time.Unix(3, 0)},
		domain.ClipboardItem{ID: "b", Text: "go doc fmt", Date: time.Unix(2, 0)},
		domain.ClipboardItem{ID: "c", Text: "gdoc", Date: time.Unix(1, 0)},
	)

	t.Run("substring", func(t *testing.T) {
		results, err := NewSearchCommand(svc, "doc").Execute(context.Background())
		require.NoError(t, err)
		assert.Len(t, results, 3)
	})

	t.Run("kind filter", func(t *testing.T) {
		cmd := NewSearchCommand(svc, "doc")
		cmd.Kind = "url"
		results, err := cmd.Execute(context.Background())
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "a", results[0].Item.ID)
	})

	t.Run("fuzzy", func(t *testing.T) {
		cmd := NewSearchCommand(svc, "gdc")
		cmd.Fuzzy = true
		cmd.Limit = 1
		results, err := cmd.Execute(context.Background())
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("empty query", func(t *testing.T) {
		_, err := NewSearchCommand(svc, "  ").Execute(context.Background())
		var verr *application.ValidationError
		assert.True(t, errors.As(err, &verr))
	})

	t.Run("unknown kind", func(t *testing.T) {
		cmd := NewSearchCommand(svc, "doc")
		cmd.Kind = "video"
		_, err := cmd.Execute(context.Background())
		assert.Error(t, err)
	})
}
