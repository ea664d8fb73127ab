package confirm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipkeep/internal/domain"
	"clipkeep/internal/logging"
)

func TestParsePolicy(t *testing.T) {
	for _, name := range []string{"defer", "accept", "reject", "ask"} {
		p, err := ParsePolicy(name)
		require.NoError(t, err)
		assert.Equal(t, Policy(name), p)
	}

	_, err := ParsePolicy("sometimes")
	assert.Error(t, err)
}

func TestConfirmer_Policies(t *testing.T) {
	tests := []struct {
		policy     Policy
		wantAccept bool
		wantReject bool
	}{
		{PolicyAccept, true, false},
		{PolicyReject, false, true},
		{PolicyDefer, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			accepted := make(chan struct{}, 1)
			rejected := make(chan struct{}, 1)
			c := New(tt.policy, logging.Discard())

			c.RequestLargeContentConfirmation(domain.PendingItem{ID: "p1", Size: 10},
				func() { accepted <- struct{}{} },
				func() { rejected <- struct{}{} },
			)

			select {
			case <-accepted:
				assert.True(t, tt.wantAccept, "unexpected accept")
			case <-rejected:
				assert.True(t, tt.wantReject, "unexpected reject")
			case <-time.After(100 * time.Millisecond):
				assert.False(t, tt.wantAccept || tt.wantReject, "no answer delivered")
			}
		})
	}
}
