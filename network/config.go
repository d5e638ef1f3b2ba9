package network

import (
	"github.com/ethereum/go-ethereum/common"
)

// Config is the configuration of the supported networks
type Config struct {
	// Name is the network selected on startup. Empty leaves the chain id unresolved.
	Name string `mapstructure:"Name"`
	// Networks lists every network the client may switch to
	Networks []NetworkConfig `mapstructure:"Networks"`
}

// NetworkConfig describes one supported chain and the gateway contracts deployed on it
type NetworkConfig struct {
	Name    string `mapstructure:"Name"`
	ChainID uint64 `mapstructure:"ChainID"`
	// URLRPC node used for on-chain reads and to send encoded batches
	URLRPC string `mapstructure:"URLRPC"`
	// GatewayAddr is the address of the gateway contract
	GatewayAddr common.Address `mapstructure:"GatewayAddr"`
	// AccountRegistryAddr is the address of the personal account registry (create2 deployer)
	AccountRegistryAddr common.Address `mapstructure:"AccountRegistryAddr"`
	// AccountByteCodeHash is the init code hash used to derive contract account addresses
	AccountByteCodeHash common.Hash `mapstructure:"AccountByteCodeHash"`
}
