package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/0xPolygon/cdk-gateway/log"
	"github.com/0xPolygon/cdk-gateway/types"
	"github.com/ethereum/go-ethereum/rpc"
)

var errNullResult = errors.New("null result")

// Client talks to the gateway backend over JSON-RPC
type Client struct {
	logger  *log.Logger
	rpc     *rpc.Client
	timeout time.Duration
	scope   ScopeProvider
}

// NewClient dials the backend described by cfg
func NewClient(ctx context.Context, logger *log.Logger, cfg Config) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("error dialing gateway backend %s: %w", cfg.URL, err)
	}

	return NewClientWithRPC(logger, rpcClient, cfg.RequestTimeout.Duration), nil
}

// NewClientWithRPC wraps an already connected rpc client
func NewClientWithRPC(logger *log.Logger, rpcClient *rpc.Client, timeout time.Duration) *Client {
	return &Client{
		logger:  logger,
		rpc:     rpcClient,
		timeout: timeout,
		scope:   ScopeFunc(func() Scope { return Scope{} }),
	}
}

// SetScope sets the source of the headers sent on every call
func (c *Client) SetScope(scope ScopeProvider) {
	c.scope = scope
}

// Close closes the underlying connection
func (c *Client) Close() {
	c.rpc.Close()
}

// call performs method and decodes a non null answer into result.
// Every failure matches types.ErrRemoteSyncFailure.
func (c *Client) call(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	scope := c.scope.Scope()
	if metadata, ok := ProjectMetadataFromContext(ctx); ok {
		scope.ProjectMetadata = metadata
	}
	header := scope.Header()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	ctx = rpc.NewContextWithHeaders(ctx, header)

	c.logger.Debugf("calling %s (request id %s)", method, header.Get(HeaderRequestID))
	if err := c.rpc.CallContext(ctx, result, method, args...); err != nil {
		c.logger.Warnf("%s failed (request id %s): %v", method, header.Get(HeaderRequestID), err)
		return fmt.Errorf("%w: %s: %w", types.ErrRemoteSyncFailure, method, err)
	}

	return nil
}

func nullResult(method string) error {
	return fmt.Errorf("%w: %s: %w", types.ErrRemoteSyncFailure, method, errNullResult)
}
