package connector

import (
	"context"
	"testing"

	"replydesk/domain"

	"github.com/stretchr/testify/require"
)

func TestSimulator_BehavesLikeARealConnector(t *testing.T) {
	req := require.New(t)

	sim := NewSimulator(testLog(), domain.SourceInstagram, 42)
	sim.limiter = newRateLimiter(1000)
	req.False(sim.IsConnected())

	req.NoError(sim.Connect(context.Background()))
	req.True(sim.IsConnected())
	req.Equal(domain.ModeSimulated, sim.State().Mode)

	// Fetches are randomized, loop until the first non-empty batch
	var batch []domain.RawMessage
	for i := 0; i < 12 && len(batch) == 0; i++ {
		var err error
		batch, err = sim.FetchMessages(context.Background())
		req.NoError(err)
	}
	req.NotEmpty(batch)
	for _, raw := range batch {
		req.Equal(domain.SourceInstagram, raw.Source)
		req.NotEmpty(raw.Sender)
		req.NotEmpty(raw.Content)
	}

	req.NoError(sim.SendMessage(context.Background(), "someone", "thanks, talk soon"))
}

func TestSimulator_SpeaksWithItsSourcesVoice(t *testing.T) {
	req := require.New(t)

	sim := NewSimulator(testLog(), domain.SourceLinkedin, 3)
	sim.limiter = newRateLimiter(1000)
	req.NoError(sim.Connect(context.Background()))

	var batch []domain.RawMessage
	for i := 0; i < 12 && len(batch) == 0; i++ {
		var err error
		batch, err = sim.FetchMessages(context.Background())
		req.NoError(err)
	}
	req.NotEmpty(batch)

	profile := profileFor(domain.SourceLinkedin)
	for _, raw := range batch {
		req.Contains(profile.senders, raw.Sender)
		req.Contains(profile.templates, raw.Content)
	}
}

func TestSimulator_ConnectHonoursCancellation(t *testing.T) {
	req := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim := NewSimulator(testLog(), domain.SourceGmail, 7)
	req.ErrorIs(sim.Connect(ctx), context.Canceled)
	req.False(sim.IsConnected())
}
