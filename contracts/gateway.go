package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/0xPolygon/cdk-gateway/types"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

const (
	// DomainName is the EIP-712 domain name of the gateway contract
	DomainName = "Gateway"
	// DomainVersion is the EIP-712 domain version of the gateway contract
	DomainVersion = "1"

	delegatedBatchType             = "DelegatedBatch"
	delegatedBatchWithGasPriceType = "DelegatedBatchWithGasPrice"
)

// Gateway encodes batches for the gateway contract and reads account nonces from it
type Gateway struct {
	address  common.Address
	chainID  uint64
	contract *bind.BoundContract
}

// NewGateway returns the gateway deployed at address on chainID. caller may be
// nil when nonces are never read.
func NewGateway(address common.Address, chainID uint64, caller bind.ContractCaller) *Gateway {
	g := &Gateway{
		address: address,
		chainID: chainID,
	}
	if caller != nil {
		g.contract = bind.NewBoundContract(address, GatewayABI, caller, nil, nil)
	}

	return g
}

// Address returns the gateway address
func (g *Gateway) Address() common.Address {
	return g.address
}

// GetAccountNonce reads the delegated batch nonce of account
func (g *Gateway) GetAccountNonce(ctx context.Context, account common.Address) (*big.Int, error) {
	if g.contract == nil {
		return nil, fmt.Errorf("gateway %s has no chain client", g.address.Hex())
	}

	var out []interface{}
	if err := g.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getAccountNonce", account); err != nil {
		return nil, fmt.Errorf("error calling gateway.getAccountNonce: %w", err)
	}
	nonce, ok := abi.ConvertType(out[0], new(big.Int)).(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected getAccountNonce output %T", out[0])
	}

	return nonce, nil
}

// EncodeSendBatchFromAccount builds the direct call an owner sends from its own wallet
func (g *Gateway) EncodeSendBatchFromAccount(
	account, owner common.Address, to []common.Address, data [][]byte,
) (types.TransactionRequest, error) {
	calldata, err := GatewayABI.Pack("sendBatchFromAccount", account, to, data)
	if err != nil {
		return types.TransactionRequest{}, fmt.Errorf("error encoding sendBatchFromAccount: %w", err)
	}

	return types.TransactionRequest{
		From: &owner,
		To:   g.address,
		Data: calldata,
	}, nil
}

// EncodeDelegateBatch builds the forwarded call carrying the owner's signature.
// Any wallet may send it.
func (g *Gateway) EncodeDelegateBatch(
	account common.Address, nonce *big.Int, to []common.Address, data [][]byte, signature []byte,
) (types.TransactionRequest, error) {
	calldata, err := GatewayABI.Pack("delegateBatch", account, nonce, to, data, signature)
	if err != nil {
		return types.TransactionRequest{}, fmt.Errorf("error encoding delegateBatch: %w", err)
	}

	return types.TransactionRequest{
		To:   g.address,
		Data: calldata,
	}, nil
}

// DelegatedBatchTypedData is the message an owner signs to let a forwarder send a batch
func (g *Gateway) DelegatedBatchTypedData(
	account common.Address, nonce *big.Int, to []common.Address, data [][]byte,
) apitypes.TypedData {
	return apitypes.TypedData{
		Types:       g.types(),
		PrimaryType: delegatedBatchType,
		Domain:      g.domain(),
		Message:     batchMessage(account, nonce, to, data),
	}
}

// DelegatedBatchWithGasPriceTypedData is the message an owner signs to let the gateway relay a batch
func (g *Gateway) DelegatedBatchWithGasPriceTypedData(
	account common.Address, nonce *big.Int, to []common.Address, data [][]byte, gasPrice *big.Int,
) apitypes.TypedData {
	msg := batchMessage(account, nonce, to, data)
	msg["gasPrice"] = new(big.Int).Set(gasPrice)

	return apitypes.TypedData{
		Types:       g.types(),
		PrimaryType: delegatedBatchWithGasPriceType,
		Domain:      g.domain(),
		Message:     msg,
	}
}

func (g *Gateway) domain() apitypes.TypedDataDomain {
	return apitypes.TypedDataDomain{
		Name:              DomainName,
		Version:           DomainVersion,
		ChainId:           math.NewHexOrDecimal256(int64(g.chainID)),
		VerifyingContract: g.address.Hex(),
	}
}

func (g *Gateway) types() apitypes.Types {
	batch := []apitypes.Type{
		{Name: "account", Type: "address"},
		{Name: "nonce", Type: "uint256"},
		{Name: "to", Type: "address[]"},
		{Name: "data", Type: "bytes[]"},
	}

	return apitypes.Types{
		"EIP712Domain": {
			{Name: "name", Type: "string"},
			{Name: "version", Type: "string"},
			{Name: "chainId", Type: "uint256"},
			{Name: "verifyingContract", Type: "address"},
		},
		delegatedBatchType:             batch,
		delegatedBatchWithGasPriceType: append(append([]apitypes.Type{}, batch...), apitypes.Type{Name: "gasPrice", Type: "uint256"}),
	}
}

func batchMessage(account common.Address, nonce *big.Int, to []common.Address, data [][]byte) apitypes.TypedDataMessage {
	toValues := make([]interface{}, len(to))
	for i, addr := range to {
		toValues[i] = addr.Hex()
	}
	dataValues := make([]interface{}, len(data))
	for i, d := range data {
		dataValues[i] = hexutil.Encode(d)
	}

	return apitypes.TypedDataMessage{
		"account": account.Hex(),
		"nonce":   new(big.Int).Set(nonce),
		"to":      toValues,
		"data":    dataValues,
	}
}
