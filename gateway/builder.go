package gateway

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/0xPolygon/cdk-gateway/api"
	cdkcommon "github.com/0xPolygon/cdk-gateway/common"
	"github.com/0xPolygon/cdk-gateway/log"
	"github.com/0xPolygon/cdk-gateway/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// State of the batch builder
type State int

const (
	Empty State = iota
	Draft
	Estimated
)

func (s State) String() string {
	switch s {
	case Empty:
		return "Empty"
	case Draft:
		return "Draft"
	case Estimated:
		return "Estimated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// BatchBackend is the subset of the gateway backend used by the builder
type BatchBackend interface {
	EstimateGatewayBatch(ctx context.Context, params api.EstimateBatchParams) (*types.EstimatedBatch, error)
	SubmitGatewayBatch(ctx context.Context, params api.SubmitBatchParams) (*types.SubmittedBatch, error)
}

// Contract is the gateway contract of the current network
type Contract interface {
	GetAccountNonce(ctx context.Context, account common.Address) (*big.Int, error)
	EncodeSendBatchFromAccount(
		account, owner common.Address, to []common.Address, data [][]byte,
	) (types.TransactionRequest, error)
	EncodeDelegateBatch(
		account common.Address, nonce *big.Int, to []common.Address, data [][]byte, signature []byte,
	) (types.TransactionRequest, error)
	DelegatedBatchTypedData(
		account common.Address, nonce *big.Int, to []common.Address, data [][]byte,
	) apitypes.TypedData
	DelegatedBatchWithGasPriceTypedData(
		account common.Address, nonce *big.Int, to []common.Address, data [][]byte, gasPrice *big.Int,
	) apitypes.TypedData
}

// ContractResolver returns the gateway contract of the current network
type ContractResolver interface {
	GatewayContract() (Contract, error)
}

// Signer signs typed data with the owner wallet
type Signer interface {
	SignTypedData(ctx context.Context, typedData apitypes.TypedData) ([]byte, error)
}

// pairing ties an estimate to the exact draft it was computed for
type pairing struct {
	estimate    *types.EstimatedBatch
	account     common.Address
	fingerprint common.Hash
	version     uint64
}

// Builder accumulates the calls of the next gateway batch.
// Callers must not run Append, Estimate and Submit concurrently on the same
// builder: the draft stays consistent but the resulting order is undefined.
type Builder struct {
	logger    *log.Logger
	backend   BatchBackend
	contracts ContractResolver
	signer    Signer
	now       func() time.Time

	mu       sync.Mutex
	requests []types.PendingBatchRequest
	// version increases on every draft change
	version uint64
	pairing *pairing
}

// NewBuilder returns an empty builder
func NewBuilder(logger *log.Logger, backend BatchBackend, contracts ContractResolver, signer Signer) *Builder {
	return &Builder{
		logger:    logger,
		backend:   backend,
		contracts: contracts,
		signer:    signer,
		now:       time.Now,
	}
}

// State returns the current state
func (b *Builder) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state()
}

// state reports Draft once the paired estimate expired, as Submit would reject it
func (b *Builder) state() State {
	switch {
	case len(b.requests) == 0:
		return Empty
	case b.pairing != nil && b.pairing.version == b.version && !b.pairing.estimate.Expired(b.now()):
		return Estimated
	default:
		return Draft
	}
}

// Batch returns a snapshot of the pending requests and their estimate
func (b *Builder) Batch() types.GatewayBatch {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.snapshot()
}

func (b *Builder) snapshot() types.GatewayBatch {
	batch := types.GatewayBatch{
		Requests: make([]types.PendingBatchRequest, len(b.requests)),
	}
	copy(batch.Requests, b.requests)
	if b.state() == Estimated {
		estimate := *b.pairing.estimate
		batch.Estimation = &estimate
	}

	return batch
}

// Append queues requests at the end of the draft, invalidating any estimate
func (b *Builder) Append(requests ...types.PendingBatchRequest) types.GatewayBatch {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, r := range requests {
		b.requests = append(b.requests, types.PendingBatchRequest{
			To:   r.To,
			Data: append(hexutil.Bytes{}, r.Data...),
		})
	}
	if len(requests) > 0 {
		b.version++
		b.pairing = nil
	}
	b.logger.Debugf("appended %d requests, draft holds %d", len(requests), len(b.requests))

	return b.snapshot()
}

// Clear discards the draft and its estimate
func (b *Builder) Clear() types.GatewayBatch {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.requests = nil
	b.pairing = nil
	b.version++
	b.logger.Debug("cleared gateway batch")

	return b.snapshot()
}

type draft struct {
	to          []common.Address
	data        [][]byte
	fingerprint common.Hash
	version     uint64
}

func (b *Builder) draft() (draft, error) {
	if len(b.requests) == 0 {
		return draft{}, types.ErrEmptyBatch
	}
	d := draft{
		to:      make([]common.Address, len(b.requests)),
		data:    make([][]byte, len(b.requests)),
		version: b.version,
	}
	for i, r := range b.requests {
		d.to[i] = r.To
		d.data[i] = append([]byte{}, r.Data...)
	}
	d.fingerprint = cdkcommon.BatchHash(d.to, d.data)

	return d, nil
}

// Estimate asks the gateway to price the draft for account and pairs the
// answer with it. A failure keeps the draft and any previous estimate.
func (b *Builder) Estimate(
	ctx context.Context, account common.Address, refundToken *common.Address,
) (types.GatewayBatch, error) {
	b.mu.Lock()
	d, err := b.draft()
	b.mu.Unlock()
	if err != nil {
		return types.GatewayBatch{}, err
	}

	estimate, err := b.backend.EstimateGatewayBatch(ctx, api.EstimateBatchParams{
		Account:     account,
		To:          d.to,
		Data:        toHex(d.data),
		RefundToken: refundToken,
	})
	if err != nil {
		return types.GatewayBatch{}, remoteErr("estimateGatewayBatch", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.version != d.version {
		return types.GatewayBatch{}, fmt.Errorf("%w: draft changed while estimating", types.ErrStaleEstimate)
	}
	b.pairing = &pairing{
		estimate:    estimate,
		account:     account,
		fingerprint: d.fingerprint,
		version:     d.version,
	}
	b.logger.Infof("estimated batch of %d requests for %s: gas %d at price %s",
		len(d.to), account.Hex(), estimate.EstimatedGas, estimate.EstimatedGasPrice)

	return b.snapshot(), nil
}

// Encode projects the draft into a transaction. With delegate unset the
// owner calls the gateway directly. With delegate set the owner signs the
// batch and any forwarder may send the transaction.
func (b *Builder) Encode(
	ctx context.Context, account, owner common.Address, delegate bool,
) (types.TransactionRequest, error) {
	b.mu.Lock()
	d, err := b.draft()
	b.mu.Unlock()
	if err != nil {
		return types.TransactionRequest{}, err
	}
	contract, err := b.contracts.GatewayContract()
	if err != nil {
		return types.TransactionRequest{}, err
	}

	if !delegate {
		return contract.EncodeSendBatchFromAccount(account, owner, d.to, d.data)
	}

	nonce, err := contract.GetAccountNonce(ctx, account)
	if err != nil {
		return types.TransactionRequest{}, err
	}
	signature, err := b.signer.SignTypedData(ctx, contract.DelegatedBatchTypedData(account, nonce, d.to, d.data))
	if err != nil {
		return types.TransactionRequest{}, fmt.Errorf("error signing delegated batch: %w", err)
	}

	return contract.EncodeDelegateBatch(account, nonce, d.to, d.data, signature)
}

// Submit hands the estimated draft to the gateway. On success the submitted
// requests leave the draft. On failure the draft and its estimate are kept.
func (b *Builder) Submit(ctx context.Context, account common.Address) (*types.SubmittedBatch, error) {
	b.mu.Lock()
	d, p, err := b.paired(account)
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}

	contract, err := b.contracts.GatewayContract()
	if err != nil {
		return nil, err
	}
	nonce, err := contract.GetAccountNonce(ctx, account)
	if err != nil {
		return nil, err
	}
	estimate := p.estimate
	typedData := contract.DelegatedBatchWithGasPriceTypedData(account, nonce, d.to, d.data, estimate.EstimatedGasPrice)
	signature, err := b.signer.SignTypedData(ctx, typedData)
	if err != nil {
		return nil, fmt.Errorf("error signing batch: %w", err)
	}

	submitted, err := b.backend.SubmitGatewayBatch(ctx, api.SubmitBatchParams{
		Account:          account,
		Nonce:            nonce,
		To:               d.to,
		Data:             toHex(d.data),
		SenderSignature:  signature,
		GasPrice:         estimate.EstimatedGasPrice,
		GasLimit:         estimate.EstimatedGas,
		RefundToken:      estimate.RefundToken,
		RefundAmount:     estimate.RefundAmount,
		RefundTokenPayee: estimate.RefundTokenPayee,
		RefundSignature:  estimate.Signature,
	})
	if err != nil {
		return nil, remoteErr("submitGatewayBatch", err)
	}

	b.mu.Lock()
	b.dropSubmitted(d)
	b.mu.Unlock()
	b.logger.Infof("submitted batch %s for %s", submitted.Hash.Hex(), account.Hex())

	return submitted, nil
}

// paired returns the draft when it is still the one the estimate was made for
func (b *Builder) paired(account common.Address) (draft, *pairing, error) {
	d, err := b.draft()
	if err != nil {
		return draft{}, nil, err
	}
	p := b.pairing
	switch {
	case p == nil || p.version != d.version:
		return draft{}, nil, fmt.Errorf("%w: batch is not estimated", types.ErrStaleEstimate)
	case p.fingerprint != d.fingerprint:
		return draft{}, nil, fmt.Errorf("%w: estimate does not match the draft", types.ErrStaleEstimate)
	case p.account != account:
		return draft{}, nil, fmt.Errorf("%w: estimate was made for %s", types.ErrStaleEstimate, p.account.Hex())
	case p.estimate.Expired(b.now()):
		return draft{}, nil, fmt.Errorf("%w: estimate expired at %s",
			types.ErrStaleEstimate, p.estimate.ExpiredAt.Format(time.RFC3339))
	}

	return d, p, nil
}

// dropSubmitted removes the submitted requests if they still head the draft
func (b *Builder) dropSubmitted(d draft) {
	n := len(d.to)
	if len(b.requests) < n {
		return
	}
	to := make([]common.Address, n)
	data := make([][]byte, n)
	for i, r := range b.requests[:n] {
		to[i] = r.To
		data[i] = r.Data
	}
	if cdkcommon.BatchHash(to, data) != d.fingerprint {
		return
	}

	if n == len(b.requests) {
		b.requests = nil
	} else {
		b.requests = append([]types.PendingBatchRequest{}, b.requests[n:]...)
	}
	b.pairing = nil
	b.version++
}

func toHex(data [][]byte) []hexutil.Bytes {
	res := make([]hexutil.Bytes, len(data))
	for i, d := range data {
		res[i] = d
	}

	return res
}

func remoteErr(method string, err error) error {
	if errors.Is(err, types.ErrRemoteSyncFailure) {
		return err
	}

	return fmt.Errorf("%w: %s: %w", types.ErrRemoteSyncFailure, method, err)
}
