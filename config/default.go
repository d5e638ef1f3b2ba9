package config

// DefaultMandatoryVars have no sensible default, they depend on the deployment
const DefaultMandatoryVars = `
# BackendURL is the JSON-RPC endpoint of the gateway backend
BackendURL = "http://localhost:8080/rpc"

# NetworkName is the network selected on startup, it must be one of [[SDK.Network.Networks]]
NetworkName = "local"
# ChainID of the default network
ChainID = 1337
# L2URL is the node used for on-chain reads and to broadcast encoded batches
L2URL = "http://localhost:8545"
# GatewayAddr is the address of the gateway contract
GatewayAddr = "0x0000000000000000000000000000000000000000"
# AccountRegistryAddr is the address of the contract account registry
AccountRegistryAddr = "0x0000000000000000000000000000000000000000"
# AccountByteCodeHash is the init code hash of the contract accounts
AccountByteCodeHash = "0x0000000000000000000000000000000000000000000000000000000000000000"
`

// DefaultVars are used to avoid repetition in config files
const DefaultVars = `
PathRWData = "/tmp/cdk-gateway"
`

// DefaultValues is the default configuration
const DefaultValues = `
# This is the default configuration for the cdk-gateway daemon

# Log configuration
[Log]
  # Environment is the environment where the daemon is running
  Environment = "development" # "production" or "development"
  # Level is the log level
  Level = "info"
  # Outputs are the outputs where the logs will be written
  Outputs = ["stderr"]

[RPC]
  # Host defines the network adapter that will be used to serve the HTTP requests
  Host = "0.0.0.0"
  # Port defines the port to serve the accountgw endpoints via HTTP
  Port = 5577
  # ReadTimeout bounds the HTTP read and every query endpoint
  ReadTimeout = "5s"
  # WriteTimeout bounds the HTTP write and the endpoints that estimate, submit,
  # send or wait for a batch
  WriteTimeout = "60s"
  # MaxRequestsPerIPAndSecond defines how much requests a single IP can
  # send within a single second
  MaxRequestsPerIPAndSecond = 10

[Backend]
  # URL of the gateway backend
  URL = "{{BackendURL}}"
  # RequestTimeout bounds every backend call, "0s" disables it
  RequestTimeout = "10s"

[Wallet]
  # Path of the keystore file, empty runs the daemon without a wallet
  Path = ""
  Password = ""

[SDK]
  # SessionDBPath is the sqlite file sessions are kept in, empty keeps them in memory
  SessionDBPath = "{{PathRWData}}/sessions.sqlite"
  # PollInterval is the pace at which a submitted batch is polled while waiting for it
  PollInterval = "2s"

  [SDK.Project]
    # Key of the project selected on startup, empty selects none
    Key = ""
    Metadata = ""

  [SDK.Network]
    Name = "{{NetworkName}}"

    [[SDK.Network.Networks]]
      Name = "{{NetworkName}}"
      ChainID = {{ChainID}}
      URLRPC = "{{L2URL}}"
      GatewayAddr = "{{GatewayAddr}}"
      AccountRegistryAddr = "{{AccountRegistryAddr}}"
      AccountByteCodeHash = "{{AccountByteCodeHash}}"
`
