package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/0xPolygon/cdk-gateway/log"
	"github.com/0xPolygon/cdk-gateway/types"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/time/rate"
)

// DefaultPollInterval is the pace of WaitSubmittedBatch when none is configured
const DefaultPollInterval = 2 * time.Second

// ReadBackend is the subset of the gateway backend answering reads
type ReadBackend interface {
	GetGatewaySubmittedBatch(ctx context.Context, hash common.Hash) (*types.SubmittedBatch, error)
	GetGatewaySubmittedBatches(ctx context.Context, account common.Address, page uint64) (*types.SubmittedBatches, error)
	GetGatewaySupportedToken(ctx context.Context, token common.Address) (*types.SupportedToken, error)
	GetGatewaySupportedTokens(ctx context.Context) ([]types.SupportedToken, error)
	EstimateGatewayKnownOp(
		ctx context.Context, op types.KnownOp, refundToken *common.Address,
	) (*types.EstimatedKnownOp, error)
}

// Tracker follows submitted batches and answers the gateway's price lists
type Tracker struct {
	logger       *log.Logger
	backend      ReadBackend
	pollInterval time.Duration
}

// NewTracker returns a tracker polling every pollInterval, DefaultPollInterval if zero
func NewTracker(logger *log.Logger, backend ReadBackend, pollInterval time.Duration) *Tracker {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	return &Tracker{
		logger:       logger,
		backend:      backend,
		pollInterval: pollInterval,
	}
}

// GetSubmittedBatch returns the relay record of hash
func (t *Tracker) GetSubmittedBatch(ctx context.Context, hash common.Hash) (*types.SubmittedBatch, error) {
	batch, err := t.backend.GetGatewaySubmittedBatch(ctx, hash)
	if err != nil {
		return nil, remoteErr("getGatewaySubmittedBatch", err)
	}

	return batch, nil
}

// GetSubmittedBatches returns a page of the batches submitted for account
func (t *Tracker) GetSubmittedBatches(
	ctx context.Context, account common.Address, page uint64,
) (*types.SubmittedBatches, error) {
	if page == 0 {
		page = 1
	}
	batches, err := t.backend.GetGatewaySubmittedBatches(ctx, account, page)
	if err != nil {
		return nil, remoteErr("getGatewaySubmittedBatches", err)
	}

	return batches, nil
}

// WaitSubmittedBatch polls hash until its state is final or ctx is done
func (t *Tracker) WaitSubmittedBatch(ctx context.Context, hash common.Hash) (*types.SubmittedBatch, error) {
	limiter := rate.NewLimiter(rate.Every(t.pollInterval), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("stopped waiting for batch %s: %w", hash.Hex(), err)
		}
		batch, err := t.GetSubmittedBatch(ctx, hash)
		if err != nil {
			return nil, err
		}
		if batch.State.IsFinal() {
			t.logger.Infof("batch %s is %s", hash.Hex(), batch.State)
			return batch, nil
		}
		t.logger.Debugf("batch %s is %s, waiting", hash.Hex(), batch.State)
	}
}

// GetSupportedToken returns the refund terms of token
func (t *Tracker) GetSupportedToken(ctx context.Context, token common.Address) (*types.SupportedToken, error) {
	res, err := t.backend.GetGatewaySupportedToken(ctx, token)
	if err != nil {
		return nil, remoteErr("getGatewaySupportedToken", err)
	}

	return res, nil
}

// GetSupportedTokens returns every token accepted as refund
func (t *Tracker) GetSupportedTokens(ctx context.Context) ([]types.SupportedToken, error) {
	res, err := t.backend.GetGatewaySupportedTokens(ctx)
	if err != nil {
		return nil, remoteErr("getGatewaySupportedTokens", err)
	}

	return res, nil
}

// EstimateKnownOp prices op without building a batch
func (t *Tracker) EstimateKnownOp(
	ctx context.Context, op types.KnownOp, refundToken *common.Address,
) (*types.EstimatedKnownOp, error) {
	res, err := t.backend.EstimateGatewayKnownOp(ctx, op, refundToken)
	if err != nil {
		return nil, remoteErr("estimateGatewayKnownOp", err)
	}

	return res, nil
}
