package contracts

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const gatewayABIJSON = `[
	{
		"type": "function",
		"name": "sendBatchFromAccount",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "account", "type": "address"},
			{"name": "to", "type": "address[]"},
			{"name": "data", "type": "bytes[]"}
		],
		"outputs": []
	},
	{
		"type": "function",
		"name": "delegateBatch",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "account", "type": "address"},
			{"name": "nonce", "type": "uint256"},
			{"name": "to", "type": "address[]"},
			{"name": "data", "type": "bytes[]"},
			{"name": "senderSignature", "type": "bytes"}
		],
		"outputs": []
	},
	{
		"type": "function",
		"name": "getAccountNonce",
		"stateMutability": "view",
		"inputs": [
			{"name": "account", "type": "address"}
		],
		"outputs": [
			{"name": "", "type": "uint256"}
		]
	}
]`

const accountRegistryABIJSON = `[
	{
		"type": "function",
		"name": "addAccountOwner",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "account", "type": "address"},
			{"name": "owner", "type": "address"}
		],
		"outputs": []
	},
	{
		"type": "function",
		"name": "removeAccountOwner",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "account", "type": "address"},
			{"name": "owner", "type": "address"}
		],
		"outputs": []
	},
	{
		"type": "function",
		"name": "executeAccountTransaction",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "account", "type": "address"},
			{"name": "to", "type": "address"},
			{"name": "value", "type": "uint256"},
			{"name": "data", "type": "bytes"}
		],
		"outputs": []
	}
]`

var (
	// GatewayABI is the parsed gateway contract interface
	GatewayABI = mustParseABI(gatewayABIJSON)
	// AccountRegistryABI is the parsed personal account registry interface
	AccountRegistryABI = mustParseABI(accountRegistryABIJSON)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}

	return parsed
}
