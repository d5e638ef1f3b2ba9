package api

import (
	"context"
	"math/big"

	"github.com/0xPolygon/cdk-gateway/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// EstimateBatchParams asks the gateway to price a draft
type EstimateBatchParams struct {
	Account     common.Address   `json:"account"`
	To          []common.Address `json:"to"`
	Data        []hexutil.Bytes  `json:"data"`
	RefundToken *common.Address  `json:"refundToken,omitempty"`
}

// SubmitBatchParams hands a signed draft and its estimate to the gateway
type SubmitBatchParams struct {
	Account          common.Address   `json:"account"`
	Nonce            *big.Int         `json:"nonce"`
	To               []common.Address `json:"to"`
	Data             []hexutil.Bytes  `json:"data"`
	SenderSignature  hexutil.Bytes    `json:"senderSignature"`
	GasPrice         *big.Int         `json:"gasPrice"`
	GasLimit         uint64           `json:"gasLimit"`
	RefundToken      *common.Address  `json:"refundToken,omitempty"`
	RefundAmount     *big.Int         `json:"refundAmount"`
	RefundTokenPayee common.Address   `json:"refundTokenPayee"`
	// RefundSignature is the gateway's signature of the estimate
	RefundSignature hexutil.Bytes `json:"refundSignature"`
}

// EstimateGatewayBatch prices a draft
func (c *Client) EstimateGatewayBatch(ctx context.Context, params EstimateBatchParams) (*types.EstimatedBatch, error) {
	const method = "gateway_estimateGatewayBatch"

	var res *types.EstimatedBatch
	if err := c.call(ctx, &res, method, params); err != nil {
		return nil, err
	}
	if res == nil || res.EstimatedGasPrice == nil {
		return nil, nullResult(method)
	}

	return res, nil
}

// SubmitGatewayBatch relays a signed and estimated draft
func (c *Client) SubmitGatewayBatch(ctx context.Context, params SubmitBatchParams) (*types.SubmittedBatch, error) {
	const method = "gateway_submitGatewayBatch"

	var res *types.SubmittedBatch
	if err := c.call(ctx, &res, method, params); err != nil {
		return nil, err
	}
	if res == nil || res.Hash == (common.Hash{}) {
		return nil, nullResult(method)
	}

	return res, nil
}

// GetGatewaySubmittedBatch returns the relay record of hash
func (c *Client) GetGatewaySubmittedBatch(ctx context.Context, hash common.Hash) (*types.SubmittedBatch, error) {
	const method = "gateway_getGatewaySubmittedBatch"

	var res *types.SubmittedBatch
	if err := c.call(ctx, &res, method, hash); err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nullResult(method)
	}

	return res, nil
}

// GetGatewaySubmittedBatches returns a page of the batches relayed for account
func (c *Client) GetGatewaySubmittedBatches(
	ctx context.Context, account common.Address, page uint64,
) (*types.SubmittedBatches, error) {
	const method = "gateway_getGatewaySubmittedBatches"

	var res *types.SubmittedBatches
	if err := c.call(ctx, &res, method, account, page); err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nullResult(method)
	}

	return res, nil
}

// GetGatewaySupportedToken returns the refund terms of token
func (c *Client) GetGatewaySupportedToken(ctx context.Context, token common.Address) (*types.SupportedToken, error) {
	const method = "gateway_getGatewaySupportedToken"

	var res *types.SupportedToken
	if err := c.call(ctx, &res, method, token); err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nullResult(method)
	}

	return res, nil
}

// GetGatewaySupportedTokens returns every token accepted as refund
func (c *Client) GetGatewaySupportedTokens(ctx context.Context) ([]types.SupportedToken, error) {
	var res []types.SupportedToken
	if err := c.call(ctx, &res, "gateway_getGatewaySupportedTokens"); err != nil {
		return nil, err
	}

	return res, nil
}

// EstimateGatewayKnownOp prices a known operation
func (c *Client) EstimateGatewayKnownOp(
	ctx context.Context, op types.KnownOp, refundToken *common.Address,
) (*types.EstimatedKnownOp, error) {
	const method = "gateway_estimateGatewayKnownOp"

	var res *types.EstimatedKnownOp
	if err := c.call(ctx, &res, method, op, refundToken); err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nullResult(method)
	}

	return res, nil
}
