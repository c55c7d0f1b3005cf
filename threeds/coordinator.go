package threeds

import (
	// Go Internal Packages
	"context"
	"strings"
	"sync"
	"time"

	// Local Packages
	errors "nmi-gateway/errors"
	models "nmi-gateway/models"

	// External Packages
	"go.uber.org/zap"
)

// State of one step-up verification attempt.
type State string

const (
	StateIdle      State = "idle"
	StateVerifying State = "verifying"
	StateChallenge State = "challenge"
	StateComplete  State = "complete"
	StateFailure   State = "failure"
)

// FailureAction is the merchant-configured resolution when verification
// fails.
type FailureAction string

const (
	// FailureDecline aborts the checkout: the submit path is re-armed and
	// an error is surfaced without submitting.
	FailureDecline FailureAction = "decline"
	// FailureContinue submits the token with no evidence attached.
	FailureContinue FailureAction = "continue_without_3ds"
	// FailureContinueWithWarning submits the token plus a warning flag for
	// downstream risk review.
	FailureContinueWithWarning FailureAction = "continue_with_warning"
)

// EventType is a provider signal during verification.
type EventType string

const (
	EventChallenge EventType = "challenge"
	EventComplete  EventType = "complete"
	EventFailure   EventType = "failure"
	EventError     EventType = "error"
)

// Event is one provider callback. Complete events carry the raw evidence
// field map; error events carry the provider message.
type Event struct {
	Type    EventType
	Fields  map[string]any
	Message string
}

// TransactionContext is what the provider needs to mount a verification.
type TransactionContext struct {
	Amount          float64
	Currency        string
	PaymentToken    string
	CustomerVaultID string
	Billing         models.Address
	Device          DeviceData
}

// Provider mounts a verification surface and streams events until a
// terminal one. Closing the channel without a terminal event counts as an
// infrastructure error.
type Provider interface {
	Start(ctx context.Context, txn TransactionContext) (<-chan Event, error)
}

// Outcome is the coordinator's terminal decision. Submit tells the checkout
// path whether to proceed (exactly once); Message is the consumer-facing
// text when it must not.
type Outcome struct {
	Submit   bool
	Evidence models.ThreeDSEvidence
	Warning  string
	Message  string
}

// DefaultVerifyTimeout bounds one verification attempt on the client side.
const DefaultVerifyTimeout = 10 * time.Second

// inactiveMarker appears in provider error messages when 3-D Secure is not
// enabled on the merchant account; that sub-case gets a distinct log and
// consumer message.
const inactiveMarker = "3DSecure is inactive"

// Coordinator decorates a tokenized transaction with cardholder
// authentication evidence before submission. One verification may be
// pending at a time, and it resolves exactly once: by a terminal provider
// event, by timeout, or by context cancellation, whichever comes first.
type Coordinator struct {
	provider      Provider
	failureAction FailureAction
	timeout       time.Duration
	logger        *zap.Logger

	mu      sync.Mutex
	state   State
	pending bool
}

func NewCoordinator(provider Provider, failureAction FailureAction, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		provider:      provider,
		failureAction: failureAction,
		timeout:       DefaultVerifyTimeout,
		logger:        logger,
		state:         StateIdle,
	}
}

// SetTimeout overrides the verification timeout; zero or negative keeps the
// default.
func (c *Coordinator) SetTimeout(d time.Duration) {
	if d > 0 {
		c.timeout = d
	}
}

// State returns the coordinator's current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Verify runs one step-up verification for a tokenized transaction and
// returns the terminal outcome. Returns AuthUnavailable when no provider is
// configured, and Invalid when a verification is already pending.
func (c *Coordinator) Verify(ctx context.Context, txn TransactionContext) (Outcome, error) {
	if c.provider == nil {
		return Outcome{Message: "Secure payment verification is currently unavailable."},
			errors.AuthUnavailableErr("step-up provider is not configured", nil)
	}

	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return Outcome{}, errors.E(errors.Invalid, "a verification is already pending", nil)
	}
	c.pending = true
	c.setStateLocked(StateVerifying)
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.pending = false
		c.mu.Unlock()
	}()

	events, err := c.provider.Start(ctx, txn)
	if err != nil {
		c.setState(StateFailure)
		if strings.Contains(err.Error(), inactiveMarker) {
			return c.inactiveOutcome(err)
		}
		return Outcome{Message: "Unable to initialize card verification. Please try again."},
			errors.AuthUnavailableErr("starting step-up verification", err)
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	// The pending operation resolves exactly once; later events on the
	// channel are ignored by returning out of the loop.
	for {
		select {
		case <-ctx.Done():
			c.setState(StateFailure)
			return Outcome{Message: "Payment processing was cancelled."},
				errors.TransportErr("verification cancelled", ctx.Err())

		case <-timer.C:
			c.setState(StateFailure)
			c.logger.Warn("step-up verification timed out")
			return Outcome{Message: "Payment processing timeout. Please try again."},
				errors.TransportErr("verification timed out", nil)

		case evt, ok := <-events:
			if !ok {
				c.setState(StateFailure)
				return c.resolveFailure("verification channel closed by provider")
			}

			switch evt.Type {
			case EventChallenge:
				// No orchestrator call yet; the cardholder is completing
				// the issuer challenge.
				c.setState(StateChallenge)

			case EventComplete:
				c.setState(StateComplete)
				evidence := FilterEvidence(evt.Fields)
				c.logger.Info("step-up verification complete",
					zap.Bool("has_cavv", evidence.Cavv != ""),
					zap.String("three_ds_version", evidence.ThreeDSVersion),
				)
				return Outcome{Submit: true, Evidence: evidence}, nil

			case EventFailure:
				c.setState(StateFailure)
				return c.resolveFailure(evt.Message)

			case EventError:
				c.setState(StateFailure)
				if strings.Contains(evt.Message, inactiveMarker) {
					return c.inactiveOutcome(nil)
				}
				c.logger.Error("step-up provider error", zap.String("message", evt.Message))
				return Outcome{Message: "Payment verification error. Please try again."},
					errors.AuthUnavailableErr("step-up provider error", nil)
			}
		}
	}
}

// resolveFailure applies the merchant's failure action to a failed
// verification. Every branch is terminal and the checkout path submits at
// most once.
func (c *Coordinator) resolveFailure(reason string) (Outcome, error) {
	c.logger.Warn("step-up verification failed", zap.String("reason", reason))

	switch c.failureAction {
	case FailureContinue:
		return Outcome{Submit: true}, nil
	case FailureContinueWithWarning:
		return Outcome{Submit: true, Warning: "authentication_failed"}, nil
	default:
		return Outcome{
			Message: "Card verification failed. Please try a different payment method.",
		}, errors.DeclinedErr("cardholder verification failed")
	}
}

// inactiveOutcome handles the distinct sub-case of 3-D Secure not being
// enabled on the merchant account.
func (c *Coordinator) inactiveOutcome(err error) (Outcome, error) {
	c.logger.Error("3-D Secure is not enabled on the merchant account", zap.Error(err))
	return Outcome{
		Message: "Secure payment verification is currently unavailable. Please contact the store or try a different payment method.",
	}, errors.AuthUnavailableErr("3-D Secure inactive on merchant account", err)
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.setStateLocked(s)
	c.mu.Unlock()
}

func (c *Coordinator) setStateLocked(s State) {
	c.state = s
}
