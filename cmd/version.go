package main

import (
	"os"

	cdkgateway "github.com/0xPolygon/cdk-gateway"
	"github.com/urfave/cli/v2"
)

func versionCmd(*cli.Context) error {
	cdkgateway.PrintVersion(os.Stdout)
	return nil
}
