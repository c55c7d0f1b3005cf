package nmi

import (
	// Go Internal Packages
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	// Local Packages
	errors "nmi-gateway/errors"
	models "nmi-gateway/models"

	// External Packages
	"go.uber.org/zap"
)

// DefaultAPIURL is the processor's transaction endpoint.
const DefaultAPIURL = "https://secure.nmi.com/api/transact.php"

// RequestTimeout bounds one processor exchange. There is no cancellation
// path once the call is issued; it runs to completion or times out.
const RequestTimeout = 45 * time.Second

const maxRedirects = 5

// Credentials authenticate the merchant against the processor. Immutable
// after construction; the private key is mandatory.
type Credentials struct {
	PublicKey  string
	PrivateKey string
	TestMode   bool
}

// Client owns credentials, endpoint selection and the network exchange.
// One POST per Send, no automatic retry: the processor's idempotency
// semantics for retried charges are unsafe to assume, so retry policy is
// left to the caller, which currently performs none.
//
// The last-response cache is a single-writer convenience over the most
// recent call. Concurrent logical transactions must each use their own
// Client rather than share this cache.
type Client struct {
	creds      Credentials
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger

	mu           sync.Mutex
	lastResponse *Response
}

// NewClient builds a transaction client. An empty endpoint selects the
// processor default.
func NewClient(creds Credentials, endpoint string, logger *zap.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultAPIURL
	}
	return &Client{
		creds:    creds,
		endpoint: endpoint,
		logger:   logger,
		httpClient: &http.Client{
			Timeout: RequestTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
	}
}

// Send performs one transaction exchange. Validation failures are resolved
// locally without touching the network; transport failures and non-200
// statuses come back as transport errors with the body unparsed.
func (c *Client) Send(ctx context.Context, req url.Values) (Response, error) {
	if err := c.validateRequest(req); err != nil {
		return Response{}, err
	}

	// The private key travels in the POST body, never as a URL parameter,
	// so it cannot leak into access logs.
	body := url.Values{}
	for k, vs := range req {
		body[k] = vs
	}
	body.Set("security_key", c.creds.PrivateKey)

	c.logger.Debug("processor request",
		zap.String("endpoint", c.endpoint),
		zap.String("type", req.Get("type")),
		zap.Bool("test_mode", c.creds.TestMode),
		zap.Any("fields", redactParams(body)),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(body.Encode()))
	if err != nil {
		return Response{}, errors.TransportErr("building processor request", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("processor request failed", zap.Error(err))
		return Response{}, errors.TransportErr("processor request failed", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Response{}, errors.TransportErr("reading processor response", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		c.logger.Error("processor returned http error",
			zap.Int("status", httpResp.StatusCode),
			zap.String("body", string(raw)),
		)
		return Response{}, errors.TransportErr(
			fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode, http.StatusText(httpResp.StatusCode)), nil)
	}

	parsed := ParseResponse(string(raw))
	resp := Classify(parsed)

	c.mu.Lock()
	c.lastResponse = &resp
	c.mu.Unlock()

	c.logger.Info("processor request completed",
		zap.String("type", req.Get("type")),
		zap.String("transaction_id", resp.TransactionID),
		zap.String("response", parsed["response"]),
		zap.String("response_code", resp.ResponseCode),
	)

	return resp, nil
}

// validateRequest enforces the local preconditions: a configured private
// key and a known transaction type.
func (c *Client) validateRequest(req url.Values) error {
	if c.creds.PrivateKey == "" {
		mode := "live"
		if c.creds.TestMode {
			mode = "test"
		}
		return errors.E(errors.Invalid,
			fmt.Sprintf("private key is required for %s mode requests", mode), nil)
	}

	txType := req.Get("type")
	if txType == "" {
		return errors.MissingFieldErr("type")
	}
	if !ValidTransactionType(txType) {
		return errors.E(errors.Invalid, "invalid transaction type: "+txType, nil)
	}
	return nil
}

// LastResponse returns the cached result of the most recent call, or nil.
func (c *Client) LastResponse() *Response {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastResponse
}

// LastTransactionID returns the transaction id of the most recent call.
func (c *Client) LastTransactionID() string {
	if resp := c.LastResponse(); resp != nil {
		return resp.TransactionID
	}
	return ""
}

// LastSuccessful reports whether the most recent call classified as success.
func (c *Client) LastSuccessful() bool {
	resp := c.LastResponse()
	return resp != nil && resp.Success
}

// LastErrorMessage returns the message of the most recent call, or a
// placeholder when nothing was sent yet.
func (c *Client) LastErrorMessage() string {
	resp := c.LastResponse()
	if resp == nil {
		return "No response available"
	}
	return resp.ResponseMessage
}

// sensitive fields are masked before any payload reaches the logger.
var sensitiveFields = map[string]bool{
	"cvv":          true,
	"security_key": true,
	"checkaccount": true,
	"checkaba":     true,
}

// redactParams masks card and account data for logging: the card number
// keeps its last four digits, everything else sensitive is starred out.
func redactParams(params url.Values) map[string]string {
	redacted := make(map[string]string, len(params))
	for key, vals := range params {
		if len(vals) == 0 {
			continue
		}
		val := vals[len(vals)-1]
		switch {
		case key == "ccnumber":
			redacted[key] = models.MaskCardNumber(val)
		case sensitiveFields[key]:
			redacted[key] = strings.Repeat("*", len(val))
		default:
			redacted[key] = val
		}
	}
	return redacted
}
