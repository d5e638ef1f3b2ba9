package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/0xPolygon/cdk-gateway/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFile(nil, "")
	require.NoError(t, err)

	require.Equal(t, log.EnvironmentDevelopment, cfg.Log.Environment)
	require.Equal(t, 5577, cfg.RPC.Port)
	require.Equal(t, 60*time.Second, cfg.RPC.WriteTimeout.Duration)
	require.Equal(t, "http://localhost:8080/rpc", cfg.Backend.URL)
	require.Equal(t, 10*time.Second, cfg.Backend.RequestTimeout.Duration)
	require.Equal(t, "/tmp/cdk-gateway/sessions.sqlite", cfg.SDK.SessionDBPath)
	require.Equal(t, 2*time.Second, cfg.SDK.PollInterval.Duration)
	require.Empty(t, cfg.SDK.Project.Key)
	require.Empty(t, cfg.Wallet.Path)

	require.Equal(t, "local", cfg.SDK.Network.Name)
	require.Len(t, cfg.SDK.Network.Networks, 1)
	require.Equal(t, "local", cfg.SDK.Network.Networks[0].Name)
	require.Equal(t, uint64(1337), cfg.SDK.Network.Networks[0].ChainID)
	require.Equal(t, "http://localhost:8545", cfg.SDK.Network.Networks[0].URLRPC)
}

func TestLoadFileOverrides(t *testing.T) {
	gatewayAddr := "0x00000000000000000000000000000000000000aa"
	file := `
BackendURL = "https://gateway.example/rpc"
GatewayAddr = "` + gatewayAddr + `"
ChainID = 137
NetworkName = "polygon"

[SDK]
  SessionDBPath = ""
  [SDK.Project]
    Key = "project-key"
    Metadata = "{\"tag\":1}"

[Wallet]
  Path = "/keys/owner.keystore"
  Password = "secret"
`
	saveDir := t.TempDir()
	cfg, err := LoadFile([]FileData{{Name: "custom", Content: file}}, saveDir)
	require.NoError(t, err)

	require.Equal(t, "https://gateway.example/rpc", cfg.Backend.URL)
	require.Equal(t, "polygon", cfg.SDK.Network.Name)
	require.Equal(t, uint64(137), cfg.SDK.Network.Networks[0].ChainID)
	require.Equal(t, common.HexToAddress(gatewayAddr), cfg.SDK.Network.Networks[0].GatewayAddr)
	require.Empty(t, cfg.SDK.SessionDBPath)
	require.Equal(t, "project-key", cfg.SDK.Project.Key)
	require.Equal(t, `{"tag":1}`, cfg.SDK.Project.Metadata)
	require.Equal(t, "/keys/owner.keystore", cfg.Wallet.Path)

	saved, err := os.ReadFile(filepath.Join(saveDir, SaveConfigFileName))
	require.NoError(t, err)
	require.Contains(t, string(saved), "https://gateway.example/rpc")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CDKGW_SDK_POLLINTERVAL", "5s")
	t.Setenv("CDKGW_BackendURL", "http://from-env/rpc")

	cfg, err := LoadFile(nil, "")
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, cfg.SDK.PollInterval.Duration)
	require.Equal(t, "http://from-env/rpc", cfg.Backend.URL)
}

func TestLoadMissingVar(t *testing.T) {
	_, err := LoadFile([]FileData{{Name: "custom", Content: "[Backend]\nURL = \"{{Undefined}}\"\n"}}, "")
	require.ErrorIs(t, err, ErrMissingVars)
}

func TestReadFiles(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "gw.toml")
	jsonPath := filepath.Join(dir, "gw.json")
	require.NoError(t, os.WriteFile(tomlPath, []byte("[Backend]\nURL = \"http://toml\"\n"), 0600))
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"SDK": {"PollInterval": "7s"}}`), 0600))

	files, err := readFiles([]string{tomlPath, jsonPath})
	require.NoError(t, err)
	cfg, err := LoadFile(files, "")
	require.NoError(t, err)
	require.Equal(t, "http://toml", cfg.Backend.URL)
	require.Equal(t, 7*time.Second, cfg.SDK.PollInterval.Duration)

	_, err = readFiles([]string{filepath.Join(dir, "missing.toml")})
	require.Error(t, err)
}

func TestSchema(t *testing.T) {
	raw, err := Schema()
	require.NoError(t, err)

	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &schema))
	props, ok := schema["properties"].(map[string]interface{})
	require.True(t, ok)
	for _, key := range []string{"Log", "RPC", "Backend", "SDK", "Wallet"} {
		require.Contains(t, props, key)
	}
}
