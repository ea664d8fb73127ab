package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipkeep/internal/domain"
)

func TestIngest_ConsecutiveDuplicatesCollapse(t *testing.T) {
	env := newTestEnv(t, Limits{})

	assert.Equal(t, domain.OutcomeAccepted, env.submitText(t, "A").Outcome)
	assert.Equal(t, domain.OutcomeDropped, env.submitText(t, "A").Outcome)

	assert.Len(t, env.engine.History(), 1)
}

func TestIngest_NonAdjacentDuplicatesKept(t *testing.T) {
	env := newTestEnv(t, Limits{})

	for _, text := range []string{"A", "B", "A"} {
		require.Equal(t, domain.OutcomeAccepted, env.submitText(t, text).Outcome)
	}

	assert.Equal(t, []string{"A", "B", "A"}, texts(env.engine.History()))
}

func TestIngest_HistoryIsReverseIngestionOrder(t *testing.T) {
	env := newTestEnv(t, Limits{})

	var want []string
	for n := 0; n < 25; n++ {
		text := fmt.Sprintf("item %d", n)
		env.submitText(t, text)
		want = append([]string{text}, want...)
	}
	assert.Equal(t, want, texts(env.engine.History()))

	stored, err := env.store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, texts(stored))
}

func TestIngest_SlowPayloadStaysNewestFirst(t *testing.T) {
	env := newTestEnv(t, Limits{MaxHistory: 2})
	require.Equal(t, domain.OutcomeAccepted, env.submitText(t, "old").Outcome)
	gate := newGatedFiles(env.files)
	env.engine.pipeline.files = gate

	image := Candidate{Classified: domain.Classified{Kind: domain.KindImage, ImageData: []byte("png-bytes")}}
	done := make(chan domain.IngestResult)
	go func() { done <- env.engine.pipeline.Submit(context.Background(), image) }()
	<-gate.entered

	require.Equal(t, domain.OutcomeAccepted, env.submitText(t, "quick").Outcome)
	close(gate.release)
	require.Equal(t, domain.OutcomeAccepted, (<-done).Outcome)

	history := env.engine.History()
	require.Len(t, history, 2)
	assert.Equal(t, []string{domain.ImageText, "quick"}, texts(history))
	assert.True(t, history[0].Date.After(history[1].Date))

	latest, ok := env.engine.pipeline.history.Latest()
	require.True(t, ok)
	assert.Equal(t, domain.ImageText, latest.Text)

	stored, err := env.store.LoadAll(context.Background())
	require.NoError(t, err)
	reloaded := NewHistory()
	reloaded.Replace(stored)
	assert.Equal(t, texts(history), texts(reloaded.Items()))
}

func TestIngest_CapEvictsOldestAndTheirFiles(t *testing.T) {
	env := newTestEnv(t, Limits{MaxHistory: 10})

	var stored []string
	for n := 0; n < 15; n++ {
		// distinct sizes so the size heuristic never shares a copy
		src := env.writeSource(t, fmt.Sprintf("f%02d.bin", n), n+1)
		result := env.engine.pipeline.Submit(context.Background(), fileCandidate(src))
		require.Equal(t, domain.OutcomeAccepted, result.Outcome)
		stored = append(stored, result.Item.FilePath)
	}

	assert.Len(t, env.engine.History(), 10)
	for _, path := range stored[:5] {
		assert.NoFileExists(t, path)
	}
	for _, path := range stored[5:] {
		assert.FileExists(t, path)
	}

	onDisk, err := env.store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, onDisk, 10)
}

func TestIngest_EvictionKeepsSharedFiles(t *testing.T) {
	env := newTestEnv(t, Limits{MaxHistory: 2})

	first := env.engine.pipeline.Submit(context.Background(), fileCandidate(env.writeSource(t, "a.bin", 8)))
	env.submitText(t, "between")
	// same size, so the store hands back the existing copy
	second := env.engine.pipeline.Submit(context.Background(), fileCandidate(env.writeSource(t, "b.bin", 8)))

	require.Equal(t, first.Item.FilePath, second.Item.FilePath)
	assert.Len(t, env.engine.History(), 2)
	assert.FileExists(t, first.Item.FilePath)
}

func TestIngest_LargeFileNeedsConfirmation(t *testing.T) {
	env := newTestEnv(t, Limits{MaxFileSize: 100, AlertThreshold: 10})
	src := env.writeSource(t, "big.bin", 50)

	result := env.engine.pipeline.Submit(context.Background(), fileCandidate(src))

	require.Equal(t, domain.OutcomePending, result.Outcome)
	assert.Empty(t, env.engine.History())
	require.Len(t, env.confirmer.requests, 1)
	assert.Equal(t, int64(50), env.confirmer.requests[0].Size)
	assert.Equal(t, []domain.PendingItem{env.confirmer.requests[0]}, env.engine.Pending())

	orphans, err := env.files.Orphans(nil)
	require.NoError(t, err)
	assert.Empty(t, orphans, "nothing is copied before confirmation")

	resolved, err := env.engine.Resolve(context.Background(), result.PendingID, true)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeAccepted, resolved.Outcome)
	assert.Len(t, env.engine.History(), 1)
	assert.Empty(t, env.engine.Pending())

	_, err = env.engine.Resolve(context.Background(), result.PendingID, true)
	assert.True(t, errors.Is(err, ErrPendingNotFound))
}

func TestIngest_ConfirmerCallbacks(t *testing.T) {
	env := newTestEnv(t, Limits{AlertThreshold: 10})

	env.engine.pipeline.Submit(context.Background(), fileCandidate(env.writeSource(t, "one.bin", 20)))
	env.engine.pipeline.Submit(context.Background(), fileCandidate(env.writeSource(t, "two.bin", 30)))
	require.Len(t, env.confirmer.accepts, 2)

	env.confirmer.accepts[0]()
	env.confirmer.rejects[1]()

	history := env.engine.History()
	require.Len(t, history, 1)
	assert.Equal(t, int64(20), history[0].FileSize)
	assert.Empty(t, env.engine.Pending())
}

func TestIngest_HardCapIgnoresConfirmation(t *testing.T) {
	env := newTestEnv(t, Limits{MaxFileSize: 100, AlertThreshold: 10})
	src := env.writeSource(t, "huge.bin", 200)

	result := env.engine.pipeline.Submit(context.Background(), fileCandidate(src))

	assert.Equal(t, domain.OutcomeDropped, result.Outcome)
	assert.Empty(t, env.confirmer.requests)
	assert.Empty(t, env.engine.Pending())
	assert.Empty(t, env.engine.History())
}

func TestIngest_SuppressedBypassesSizeGates(t *testing.T) {
	env := newTestEnv(t, Limits{MaxFileSize: 100, AlertThreshold: 10})
	c := fileCandidate(env.writeSource(t, "huge.bin", 200))
	c.Suppressed = true

	result := env.engine.pipeline.Submit(context.Background(), c)

	assert.Equal(t, domain.OutcomeAccepted, result.Outcome)
	assert.Empty(t, env.confirmer.requests)
}

func TestIngest_TextIsNeverGated(t *testing.T) {
	env := newTestEnv(t, Limits{MaxFileSize: 4, AlertThreshold: 2})

	result := env.submitText(t, "a fairly long piece of text")

	assert.Equal(t, domain.OutcomeAccepted, result.Outcome)
}

func TestIngest_ExcludedSourceApp(t *testing.T) {
	env := newTestEnv(t, Limits{})
	c := textCandidate("secret")
	c.SourceApp = "/usr/bin/keepassxc"

	result := env.engine.pipeline.Submit(context.Background(), c)

	assert.Equal(t, domain.OutcomeDropped, result.Outcome)
	assert.Empty(t, env.engine.History())
}

func TestIngest_ImageBytes(t *testing.T) {
	env := newTestEnv(t, Limits{})
	c := Candidate{Classified: domain.Classified{Kind: domain.KindImage, ImageData: []byte("png-bytes")}}

	result := env.engine.pipeline.Submit(context.Background(), c)

	require.Equal(t, domain.OutcomeAccepted, result.Outcome)
	assert.Equal(t, domain.ImageText, result.Item.Text)
	assert.Equal(t, int64(9), result.Item.FileSize)
	assert.NotEmpty(t, result.Item.FileHash)
	assert.Equal(t, domain.KindImage, result.Item.Kind())
	assert.FileExists(t, result.Item.FilePath)
}

func TestIngest_MissingSourceFileDropped(t *testing.T) {
	env := newTestEnv(t, Limits{})

	result := env.engine.pipeline.Submit(context.Background(), fileCandidate("/nonexistent/file.txt"))

	assert.Equal(t, domain.OutcomeDropped, result.Outcome)
}

func TestIngest_ExpirePending(t *testing.T) {
	env := newTestEnv(t, Limits{AlertThreshold: 1})
	env.engine.pipeline.Submit(context.Background(), fileCandidate(env.writeSource(t, "a.bin", 10)))
	require.Len(t, env.engine.Pending(), 1)

	// the step clock moves forward on every reading
	assert.Equal(t, 0, env.engine.pipeline.ExpirePending(time.Hour))
	assert.Equal(t, 1, env.engine.pipeline.ExpirePending(0))
	assert.Empty(t, env.engine.Pending())
}

func TestIngest_StorageFailureDropsCandidate(t *testing.T) {
	env := newTestEnv(t, Limits{})
	// make the history directory unwritable by replacing it with a file
	require.NoError(t, os.RemoveAll(env.store.Root()))
	require.NoError(t, os.WriteFile(env.store.Root(), []byte("x"), 0644))

	result := env.submitText(t, "lost")

	assert.Equal(t, domain.OutcomeDropped, result.Outcome)
	assert.Empty(t, env.engine.History())
}
