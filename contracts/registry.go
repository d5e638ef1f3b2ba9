package contracts

import (
	"fmt"
	"math/big"

	"github.com/0xPolygon/cdk-gateway/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// AccountRegistry derives contract account addresses and encodes owner management calls
type AccountRegistry struct {
	address      common.Address
	byteCodeHash common.Hash
}

// NewAccountRegistry returns the registry deployed at address. byteCodeHash is
// the keccak of the account init code used by create2.
func NewAccountRegistry(address common.Address, byteCodeHash common.Hash) *AccountRegistry {
	return &AccountRegistry{
		address:      address,
		byteCodeHash: byteCodeHash,
	}
}

// Address returns the registry address
func (r *AccountRegistry) Address() common.Address {
	return r.address
}

// ComputeAccountCreate2Address returns the contract account owned by owner.
// It returns false when the registry is not configured or owner is zero.
func (r *AccountRegistry) ComputeAccountCreate2Address(owner common.Address) (common.Address, bool) {
	if r == nil || r.address == (common.Address{}) || r.byteCodeHash == (common.Hash{}) || owner == (common.Address{}) {
		return common.Address{}, false
	}
	salt := crypto.Keccak256Hash(owner.Bytes())

	return crypto.CreateAddress2(r.address, salt, r.byteCodeHash.Bytes()), true
}

// EncodeAddAccountOwner builds the registry call adding owner to account
func (r *AccountRegistry) EncodeAddAccountOwner(account, owner common.Address) (types.TransactionRequest, error) {
	return r.encode("addAccountOwner", account, owner)
}

// EncodeRemoveAccountOwner builds the registry call removing owner from account
func (r *AccountRegistry) EncodeRemoveAccountOwner(account, owner common.Address) (types.TransactionRequest, error) {
	return r.encode("removeAccountOwner", account, owner)
}

// EncodeExecuteAccountTransaction builds the registry call executing a transaction from account
func (r *AccountRegistry) EncodeExecuteAccountTransaction(
	account, to common.Address, value *big.Int, data []byte,
) (types.TransactionRequest, error) {
	if value == nil {
		value = big.NewInt(0)
	}
	if data == nil {
		data = []byte{}
	}

	return r.encode("executeAccountTransaction", account, to, value, data)
}

func (r *AccountRegistry) encode(method string, args ...interface{}) (types.TransactionRequest, error) {
	data, err := AccountRegistryABI.Pack(method, args...)
	if err != nil {
		return types.TransactionRequest{}, fmt.Errorf("error encoding %s: %w", method, err)
	}

	return types.TransactionRequest{
		To:   r.address,
		Data: data,
	}, nil
}
