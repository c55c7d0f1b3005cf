package threeds

import (
	// Go Internal Packages
	"context"
	stderrors "errors"
	"testing"
	"time"

	// Local Packages
	errors "nmi-gateway/errors"

	// External Packages
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptProvider replays a fixed event sequence.
type scriptProvider struct {
	events   []Event
	startErr error
	leave    bool // leave the channel open after the script runs out
}

func (p *scriptProvider) Start(_ context.Context, _ TransactionContext) (<-chan Event, error) {
	if p.startErr != nil {
		return nil, p.startErr
	}
	ch := make(chan Event, len(p.events))
	for _, evt := range p.events {
		ch <- evt
	}
	if !p.leave {
		close(ch)
	}
	return ch, nil
}

func newTestCoordinator(provider Provider, action FailureAction) *Coordinator {
	return NewCoordinator(provider, action, zap.NewNop())
}

func TestVerify_NoProvider(t *testing.T) {
	c := newTestCoordinator(nil, FailureDecline)

	outcome, err := c.Verify(context.Background(), TransactionContext{})
	require.Error(t, err)
	require.True(t, errors.Is(errors.AuthUnavailable, err))
	require.False(t, outcome.Submit)
	require.NotEmpty(t, outcome.Message)
}

func TestVerify_CompleteCollectsEvidence(t *testing.T) {
	provider := &scriptProvider{events: []Event{
		{Type: EventComplete, Fields: map[string]any{
			"cavv":             "abc",
			"eci":              "05",
			"three_ds_version": "2.2.0",
			"xid":              nil,
		}},
	}}
	c := newTestCoordinator(provider, FailureDecline)

	outcome, err := c.Verify(context.Background(), TransactionContext{PaymentToken: "tok-1"})
	require.NoError(t, err)
	require.True(t, outcome.Submit)
	require.Equal(t, "abc", outcome.Evidence.Cavv)
	require.Equal(t, "05", outcome.Evidence.Eci)
	require.Equal(t, "2.2.0", outcome.Evidence.ThreeDSVersion)
	require.Empty(t, outcome.Evidence.Xid)
	require.Equal(t, StateComplete, c.State())
}

func TestVerify_ChallengeThenComplete(t *testing.T) {
	provider := &scriptProvider{events: []Event{
		{Type: EventChallenge},
		{Type: EventComplete, Fields: map[string]any{"cavv": "abc"}},
	}}
	c := newTestCoordinator(provider, FailureDecline)

	outcome, err := c.Verify(context.Background(), TransactionContext{})
	require.NoError(t, err)
	require.True(t, outcome.Submit)
	require.Equal(t, StateComplete, c.State())
}

func TestVerify_FailureActions(t *testing.T) {
	failed := []Event{{Type: EventFailure, Message: "authentication failed"}}

	t.Run("decline", func(t *testing.T) {
		c := newTestCoordinator(&scriptProvider{events: failed}, FailureDecline)
		outcome, err := c.Verify(context.Background(), TransactionContext{})
		require.Error(t, err)
		require.True(t, errors.Is(errors.Declined, err))
		require.False(t, outcome.Submit)
		require.NotEmpty(t, outcome.Message)
		require.Equal(t, StateFailure, c.State())
	})

	t.Run("continue without evidence", func(t *testing.T) {
		c := newTestCoordinator(&scriptProvider{events: failed}, FailureContinue)
		outcome, err := c.Verify(context.Background(), TransactionContext{})
		require.NoError(t, err)
		require.True(t, outcome.Submit)
		require.True(t, outcome.Evidence.Empty())
		require.Empty(t, outcome.Warning)
	})

	t.Run("continue with warning", func(t *testing.T) {
		c := newTestCoordinator(&scriptProvider{events: failed}, FailureContinueWithWarning)
		outcome, err := c.Verify(context.Background(), TransactionContext{})
		require.NoError(t, err)
		require.True(t, outcome.Submit)
		require.Equal(t, "authentication_failed", outcome.Warning)
	})
}

func TestVerify_ProviderError(t *testing.T) {
	t.Run("generic error event", func(t *testing.T) {
		provider := &scriptProvider{events: []Event{{Type: EventError, Message: "widget crashed"}}}
		c := newTestCoordinator(provider, FailureContinue)

		// The failure action does not apply to infrastructure errors.
		outcome, err := c.Verify(context.Background(), TransactionContext{})
		require.Error(t, err)
		require.True(t, errors.Is(errors.AuthUnavailable, err))
		require.False(t, outcome.Submit)
	})

	t.Run("inactive merchant account", func(t *testing.T) {
		provider := &scriptProvider{events: []Event{{Type: EventError, Message: "3DSecure is inactive"}}}
		c := newTestCoordinator(provider, FailureDecline)

		outcome, err := c.Verify(context.Background(), TransactionContext{})
		require.Error(t, err)
		require.True(t, errors.Is(errors.AuthUnavailable, err))
		require.Contains(t, outcome.Message, "contact the store")
	})

	t.Run("start error with inactive marker", func(t *testing.T) {
		provider := &scriptProvider{startErr: stderrors.New("merchant: 3DSecure is inactive")}
		c := newTestCoordinator(provider, FailureDecline)

		_, err := c.Verify(context.Background(), TransactionContext{})
		require.Error(t, err)
		require.True(t, errors.Is(errors.AuthUnavailable, err))
	})
}

func TestVerify_ChannelClosedResolvesAsFailure(t *testing.T) {
	c := newTestCoordinator(&scriptProvider{}, FailureContinue)
	outcome, err := c.Verify(context.Background(), TransactionContext{})
	require.NoError(t, err)
	require.True(t, outcome.Submit, "close without terminal event resolves via the failure action")
}

func TestVerify_Timeout(t *testing.T) {
	c := newTestCoordinator(&scriptProvider{leave: true}, FailureDecline)
	c.SetTimeout(20 * time.Millisecond)

	start := time.Now()
	outcome, err := c.Verify(context.Background(), TransactionContext{})
	require.Error(t, err)
	require.True(t, errors.Is(errors.Transport, err))
	require.False(t, outcome.Submit)
	require.Less(t, time.Since(start), 5*time.Second)
	require.Equal(t, StateFailure, c.State())
}

func TestVerify_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestCoordinator(&scriptProvider{leave: true}, FailureDecline)
	outcome, err := c.Verify(ctx, TransactionContext{})
	require.Error(t, err)
	require.True(t, errors.Is(errors.Transport, err))
	require.False(t, outcome.Submit)
}

func TestVerify_RejectsConcurrentVerification(t *testing.T) {
	c := newTestCoordinator(&scriptProvider{leave: true}, FailureDecline)
	c.SetTimeout(200 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Verify(context.Background(), TransactionContext{})
	}()

	// Wait until the first verification is pending.
	require.Eventually(t, func() bool {
		return c.State() == StateVerifying
	}, time.Second, 5*time.Millisecond)

	_, err := c.Verify(context.Background(), TransactionContext{})
	require.Error(t, err)
	require.True(t, errors.Is(errors.Invalid, err))

	<-done

	// Resolved verifications release the pending slot.
	_, err = c.Verify(context.Background(), TransactionContext{})
	require.True(t, errors.Is(errors.Transport, err), "second run reaches the timeout path, not the pending check")
}
