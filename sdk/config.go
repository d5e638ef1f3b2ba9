package sdk

import (
	cfgTypes "github.com/0xPolygon/cdk-gateway/config/types"
	"github.com/0xPolygon/cdk-gateway/network"
	"github.com/0xPolygon/cdk-gateway/types"
)

// Config is the configuration of an Sdk instance
type Config struct {
	// Network lists the supported networks and the one selected on startup
	Network network.Config `mapstructure:"Network"`
	// Project selected on startup, an empty key selects none
	Project types.Project `mapstructure:"Project"`
	// SessionDBPath is the sqlite file sessions are kept in. Empty keeps them in memory.
	SessionDBPath string `mapstructure:"SessionDBPath"`
	// PollInterval is the pace of WaitGatewaySubmittedBatch
	PollInterval cfgTypes.Duration `mapstructure:"PollInterval"`
}
