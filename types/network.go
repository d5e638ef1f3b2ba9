package types

// Network is a supported chain
type Network struct {
	Name    string `json:"name" mapstructure:"Name"`
	ChainID uint64 `json:"chainId" mapstructure:"ChainID"`
}

// Project scopes backend calls to an application
type Project struct {
	Key      string `json:"key" mapstructure:"Key"`
	Metadata string `json:"metadata,omitempty" mapstructure:"Metadata"`
}
