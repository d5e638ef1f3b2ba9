package api

import "github.com/0xPolygon/cdk-gateway/config/types"

// Config is the configuration of the gateway backend client
type Config struct {
	// URL of the backend JSON-RPC endpoint
	URL string `mapstructure:"URL"`
	// RequestTimeout bounds every backend call. Zero disables it.
	RequestTimeout types.Duration `mapstructure:"RequestTimeout"`
}
