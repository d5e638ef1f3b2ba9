package main

import (
	"os"

	cdkgateway "github.com/0xPolygon/cdk-gateway"
	"github.com/0xPolygon/cdk-gateway/config"
	"github.com/0xPolygon/cdk-gateway/log"
	"github.com/urfave/cli/v2"
)

const appName = "cdk-gateway"

var (
	configFileFlag = cli.StringSliceFlag{
		Name:     config.FlagCfg,
		Aliases:  []string{"c"},
		Usage:    "Configuration file(s)",
		Required: true,
	}
	saveConfigFlag = cli.StringFlag{
		Name:     config.FlagSaveConfigPath,
		Aliases:  []string{"s"},
		Usage:    "Save final configuration into to the indicated path (name: cdk_gateway_config.toml)",
		Required: false,
	}
	schemaFlag = cli.BoolFlag{
		Name:     config.FlagSchema,
		Usage:    "Print the JSON schema of the configuration instead of the default values",
		Required: false,
	}
)

func main() {
	app := cli.NewApp()
	app.Name = appName
	app.Version = cdkgateway.Version
	app.Commands = []*cli.Command{
		{
			Name:    "version",
			Aliases: []string{},
			Usage:   "Application version and build",
			Action:  versionCmd,
		},
		{
			Name:    "run",
			Aliases: []string{},
			Usage:   "Run the account gateway daemon",
			Action:  start,
			Flags:   []cli.Flag{&configFileFlag, &saveConfigFlag},
		},
		{
			Name:    "config",
			Aliases: []string{},
			Usage:   "Print the default configuration",
			Action:  configCmd,
			Flags:   []cli.Flag{&schemaFlag},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
		os.Exit(1)
	}
}
