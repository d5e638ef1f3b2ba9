package wallet

import (
	"context"
	"fmt"
	"math/big"

	"github.com/0xPolygon/cdk-gateway/types"
	"github.com/ethereum/go-ethereum"
	ethCommon "github.com/ethereum/go-ethereum/common"
	ethTypes "github.com/ethereum/go-ethereum/core/types"
)

// EthClienter is the subset of ethclient.Client needed to send a transaction
type EthClienter interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account ethCommon.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *ethTypes.Transaction) error
}

// SendTransaction signs req with the provider key and broadcasts it through client
func (p *KeyProvider) SendTransaction(
	ctx context.Context, client EthClienter, req types.TransactionRequest,
) (ethCommon.Hash, error) {
	if req.From != nil && *req.From != p.address {
		return ethCommon.Hash{}, fmt.Errorf("transaction must be sent by %s, wallet is %s", req.From.Hex(), p.address.Hex())
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return ethCommon.Hash{}, fmt.Errorf("error getting chain id: %w", err)
	}
	nonce, err := client.PendingNonceAt(ctx, p.address)
	if err != nil {
		return ethCommon.Hash{}, fmt.Errorf("error getting nonce: %w", err)
	}
	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return ethCommon.Hash{}, fmt.Errorf("error getting gas price: %w", err)
	}
	value := req.Value
	if value == nil {
		value = big.NewInt(0)
	}
	to := req.To
	gas, err := client.EstimateGas(ctx, ethereum.CallMsg{
		From:     p.address,
		To:       &to,
		GasPrice: gasPrice,
		Value:    value,
		Data:     req.Data,
	})
	if err != nil {
		return ethCommon.Hash{}, fmt.Errorf("error estimating gas: %w", err)
	}

	tx := ethTypes.NewTx(&ethTypes.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       &to,
		Value:    value,
		Data:     req.Data,
	})
	signed, err := ethTypes.SignTx(tx, ethTypes.LatestSignerForChainID(chainID), p.key)
	if err != nil {
		return ethCommon.Hash{}, fmt.Errorf("error signing transaction: %w", err)
	}
	if err := client.SendTransaction(ctx, signed); err != nil {
		return ethCommon.Hash{}, fmt.Errorf("error sending transaction: %w", err)
	}

	return signed.Hash(), nil
}
