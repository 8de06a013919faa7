package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"totemic/config"
	"totemic/core"
	"totemic/observability/logging"
	"totemic/rpc"
	"totemic/storage"
)

const rpcTokenEnv = "TOTEMIC_RPC_TOKEN"

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	listenFlag := flag.String("listen", "", "Override the RPC listen address")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logging.Setup("totemd", "development", "").Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	if *listenFlag != "" {
		cfg.ListenAddress = *listenFlag
	}
	log := logging.Setup("totemd", cfg.Environment, cfg.LogFile)

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		log.Error("failed to open database", "path", cfg.DataDir, "err", err)
		os.Exit(1)
	}
	defer db.Close()

	node, err := core.NewNode(cfg, db, log)
	if err != nil {
		log.Error("failed to assemble node", "err", err)
		os.Exit(1)
	}
	defer node.Close()

	authToken := cfg.RPCAuthToken
	if envToken := strings.TrimSpace(os.Getenv(rpcTokenEnv)); envToken != "" {
		authToken = envToken
	}
	if authToken == "" {
		log.Warn("no RPC auth token configured; admin methods are disabled")
	}

	server := rpc.NewServer(node, log.With("component", "rpc"), authToken)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.ListenAddress)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			log.Error("rpc server failed", "err", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}
}
