package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/0xPolygon/cdk-gateway/api"
	"github.com/0xPolygon/cdk-gateway/config/types"
	"github.com/0xPolygon/cdk-gateway/log"
	"github.com/0xPolygon/cdk-gateway/sdk"
	jRPC "github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/invopop/jsonschema"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
)

const (
	// FlagCfg is the flag for cfg.
	FlagCfg = "cfg"
	// FlagSaveConfigPath is the flag to save the final configuration file
	FlagSaveConfigPath = "save-config-path"
	// FlagSchema prints the JSON schema of the configuration instead of the defaults
	FlagSchema = "schema"

	EnvVarPrefix       = "CDKGW"
	ConfigType         = "toml"
	SaveConfigFileName = "cdk_gateway_config.toml"

	DefaultCreationFilePermissions = os.FileMode(0600)
)

/*
Config represents the configuration of the account gateway daemon
The file is [TOML format]

[TOML format]: https://en.wikipedia.org/wiki/TOML
*/
type Config struct {
	// Configure Log level for all the services, allow also to store the logs in a file
	Log log.Config `mapstructure:"Log"`
	// RPC is the config for the accountgw JSON-RPC server
	RPC jRPC.Config `mapstructure:"RPC"`
	// Backend is the gateway backend the client talks to
	Backend api.Config `mapstructure:"Backend"`
	// SDK holds the networks, the project and the session storage of the client
	SDK sdk.Config `mapstructure:"SDK"`
	// Wallet is the keystore of the key that signs in the client's name.
	// An empty path starts the daemon without a wallet.
	Wallet types.KeystoreFileConfig `mapstructure:"Wallet"`
}

// Load loads the configuration
func Load(ctx *cli.Context) (*Config, error) {
	filesData, err := readFiles(ctx.StringSlice(FlagCfg))
	if err != nil {
		return nil, fmt.Errorf("error reading files:  Err:%w", err)
	}

	return LoadFile(filesData, ctx.String(FlagSaveConfigPath))
}

func readFiles(files []string) ([]FileData, error) {
	result := make([]FileData, 0, len(files))
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error reading file content: %s. Err:%w", file, err)
		}
		fileContent := string(content)
		if ext := getFileExtension(file); ext != ConfigType {
			fileContent, err = convertFileToToml(fileContent, ext)
			if err != nil {
				return nil, fmt.Errorf("error converting file: %s from %s to TOML. Err:%w", file, ext, err)
			}
		}
		result = append(result, FileData{Name: file, Content: fileContent})
	}
	return result, nil
}

func getFileExtension(fileName string) string {
	return fileName[strings.LastIndex(fileName, ".")+1:]
}

// LoadFile renders the defaults overridden by files and decodes the result.
// When saveConfigPath is set the rendered file is written there.
func LoadFile(files []FileData, saveConfigPath string) (*Config, error) {
	fileData := make([]FileData, 0, len(files)+3)
	fileData = append(fileData, FileData{Name: "default_mandatory_vars", Content: DefaultMandatoryVars})
	fileData = append(fileData, FileData{Name: "default_vars", Content: DefaultVars})
	fileData = append(fileData, FileData{Name: "default_values", Content: DefaultValues})
	fileData = append(fileData, files...)

	rendered, err := NewConfigRender(fileData, EnvVarPrefix).Render()
	if err != nil {
		return nil, err
	}
	if saveConfigPath != "" {
		fullPath := filepath.Join(saveConfigPath, SaveConfigFileName)
		if err := os.WriteFile(fullPath, []byte(rendered), DefaultCreationFilePermissions); err != nil {
			err = fmt.Errorf("error writing config file: %s. Err: %w", fullPath, err)
			log.Error(err)
			return nil, err
		}
	}

	return LoadFileFromString(rendered, ConfigType)
}

// LoadFileFromString decodes an already rendered config. Keys are
// overridable by CDKGW_ prefixed environment variables (SDK.PollInterval is
// CDKGW_SDK_POLLINTERVAL).
func LoadFileFromString(configFileData string, configType string) (*Config, error) {
	expectedKeys, err := defaultKeys()
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := loadString(cfg, configFileData, configType, true, EnvVarPrefix, expectedKeys); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveConfigToString returns cfg as JSON
func SaveConfigToString(cfg Config) (string, error) {
	b, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Schema returns the JSON schema of Config
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		FieldNameTag:              "mapstructure",
		AllowAdditionalProperties: true,
		ExpandedStruct:            true,
	}
	schema := r.Reflect(&Config{})
	schema.Title = "cdk-gateway config file"

	return json.MarshalIndent(schema, "", "  ")
}

func defaultKeys() ([]string, error) {
	v := viper.New()
	v.SetConfigType(ConfigType)
	defaults := DefaultMandatoryVars + DefaultVars + DefaultValues
	if err := v.ReadConfig(bytes.NewBufferString(defaults)); err != nil {
		return nil, fmt.Errorf("error reading default config: %w", err)
	}

	return v.AllKeys(), nil
}

func loadString(cfg *Config, configData string, configType string,
	allowEnvVars bool, envPrefix string, expectedKeys []string) error {
	v := viper.New()
	v.SetConfigType(configType)
	if allowEnvVars {
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.SetEnvPrefix(envPrefix)
		v.AutomaticEnv()
	}
	if err := v.ReadConfig(bytes.NewBufferString(configData)); err != nil {
		return err
	}
	decodeHooks := []viper.DecoderConfigOption{
		// this allows arrays to be decoded from env var separated by ",", example: MY_VAR="value1,value2,value3"
		viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(), mapstructure.StringToSliceHookFunc(","))),
	}
	if err := v.Unmarshal(cfg, decodeHooks...); err != nil {
		return err
	}

	for _, field := range getUnexpectedFields(v.AllKeys(), expectedKeys) {
		log.Warnf("field %s in config file is unknown and will be ignored", field)
	}

	return nil
}

func getUnexpectedFields(keysOnFile, expectedConfigKeys []string) []string {
	wrongFields := make([]string, 0)
	for _, key := range keysOnFile {
		if !contains(expectedConfigKeys, key) {
			wrongFields = append(wrongFields, key)
		}
	}
	return wrongFields
}
