package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	cdkgateway "github.com/0xPolygon/cdk-gateway"
	"github.com/0xPolygon/cdk-gateway/api"
	cdkcommon "github.com/0xPolygon/cdk-gateway/common"
	"github.com/0xPolygon/cdk-gateway/config"
	"github.com/0xPolygon/cdk-gateway/config/types"
	"github.com/0xPolygon/cdk-gateway/log"
	"github.com/0xPolygon/cdk-gateway/rpc"
	"github.com/0xPolygon/cdk-gateway/sdk"
	"github.com/0xPolygon/cdk-gateway/wallet"
	jRPC "github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/urfave/cli/v2"
)

func start(cliCtx *cli.Context) error {
	c, err := config.Load(cliCtx)
	if err != nil {
		return err
	}

	log.Init(c.Log)

	if c.Log.Environment == log.EnvironmentDevelopment {
		cdkgateway.PrintVersion(os.Stdout)
		log.Info("Starting application")
	} else if c.Log.Environment == log.EnvironmentProduction {
		logVersion()
	}

	provider, err := newWalletProvider(c.Wallet)
	if err != nil {
		return err
	}
	backend, err := api.NewClient(cliCtx.Context, log.WithFields("module", cdkcommon.BACKEND), c.Backend)
	if err != nil {
		return err
	}
	gw, err := sdk.New(c.SDK, provider, backend, sdk.WithLogger(log.WithFields("module", cdkcommon.SDK)))
	if err != nil {
		backend.Close()
		return err
	}

	server := createRPC(c.RPC, gw)
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal(err)
		}
	}()

	waitSignal([]func(){
		func() {
			if err := server.Stop(); err != nil {
				log.Warnf("error stopping rpc server: %v", err)
			}
		},
		gw.Destroy,
		backend.Close,
	})

	return nil
}

// newWalletProvider opens the keystore, an empty path runs without a wallet
func newWalletProvider(cfg types.KeystoreFileConfig) (wallet.Provider, error) {
	if cfg.Path == "" {
		log.Warn("no wallet keystore configured, operations that need a wallet will fail")
		return nil, nil
	}
	provider, err := wallet.NewKeyProviderFromKeystore(cfg)
	if err != nil {
		return nil, fmt.Errorf("error opening wallet keystore %s: %w", cfg.Path, err)
	}
	log.Infof("wallet %s loaded", provider.Address().Hex())

	return provider, nil
}

func createRPC(cfg jRPC.Config, gw rpc.Gatewayer) *jRPC.Server {
	logger := log.WithFields("module", cdkcommon.RPC)
	services := []jRPC.Service{
		{
			Name: rpc.ACCOUNTGW,
			Service: rpc.NewGatewayEndpoints(
				logger,
				cfg.WriteTimeout.Duration,
				cfg.ReadTimeout.Duration,
				gw,
			),
		},
	}

	return jRPC.NewServer(cfg, services, jRPC.WithLogger(logger.GetSugaredLogger()))
}

func logVersion() {
	log.Infow("Starting application",
		// version is already logged by default
		"gitRevision", cdkgateway.GitRev,
		"gitBranch", cdkgateway.GitBranch,
		"goVersion", runtime.Version(),
		"built", cdkgateway.BuildDate,
		"os/arch", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	)
}

func waitSignal(cleanups []func()) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	for sig := range signals {
		switch sig {
		case os.Interrupt, syscall.SIGTERM:
			log.Info("terminating application gracefully...")

			for _, cleanup := range cleanups {
				cleanup()
			}
			os.Exit(0)
		}
	}
}
