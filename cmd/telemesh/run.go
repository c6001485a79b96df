package main

import (
	"context"
	"os"
	"path/filepath"

	"telemesh.io/prototype/config"
	"telemesh.io/prototype/internal/log"
	"telemesh.io/prototype/internal/log/fld"
	"telemesh.io/prototype/network"
	"telemesh.io/prototype/node"
	"telemesh.io/prototype/rest"

	"github.com/tav/golly/process"
)

func cmdRun(args []string, usage string) {

	opts := newOpts("run NODE_NAME [OPTIONS]", usage)
	configRoot := opts.Flags("-c", "--config-root").Label("PATH").String("path to the telemesh root directory [~/.telemesh]", defaultRootDir())
	runtimeRoot := opts.Flags("-r", "--runtime-root").Label("PATH").String("path to the runtime root directory [~/.telemesh]", defaultRootDir())
	consoleLog := opts.Flags("--console-log").Label("LEVEL").String("level of the console log: debug, error, fatal, info, warn [info]", "")
	params := opts.Parse(args)

	if len(params) < 1 {
		opts.PrintUsage()
		os.Exit(1)
	}

	nodeName := params[0]
	nodePath := filepath.Join(*configRoot, nodeName)
	if _, err := os.Stat(nodePath); err != nil {
		if os.IsNotExist(err) {
			log.Fatal("Could not find the node directory", log.String("path", nodePath))
		}
		log.Fatal("Unable to access the node directory", log.String("path", nodePath), fld.Err(err))
	}

	cfg, err := config.LoadNode(filepath.Join(nodePath, "node.yaml"))
	if err != nil {
		log.Fatal("Could not load node.yaml", fld.Err(err))
	}

	if cfg.Logging != nil {
		lvl := cfg.Logging.ConsoleLevel
		if *consoleLog != "" {
			if err := lvl.UnmarshalText([]byte(*consoleLog)); err != nil {
				log.Fatal("Unable to parse --console-log", fld.Err(err))
			}
		}
		if err := log.InitConsoleLogger(lvl); err != nil {
			log.Fatal("Could not initialise the console logger", fld.Err(err))
		}
		if cfg.Logging.FilePath != "" {
			if err := log.InitFileLogger(cfg.Logging.FilePath, cfg.Logging.FileLevel); err != nil {
				log.Fatal("Could not initialise the file logger", fld.Err(err))
			}
		}
	}
	log.SetGlobalFields(fld.NetworkName(cfg.NetworkName), fld.Address(cfg.Address))

	root := *configRoot
	if *runtimeRoot != "" {
		root = os.ExpandEnv(*runtimeRoot)
	}

	transport, err := network.NewUDP(cfg.Network.ListenPort)
	if err != nil {
		log.Fatal("Could not open the broadcast transport", fld.Port(cfg.Network.ListenPort), fld.Err(err))
	}

	nodeCfg := &node.Config{
		Address:           cfg.Address,
		AnnounceInterval:  cfg.Network.AnnounceInterval,
		BlockInterval:     cfg.Consensus.BlockInterval,
		Directory:         filepath.Join(root, nodeName),
		EmergencyMargin:   cfg.Consensus.EmergencyMargin,
		MaxBlocks:         cfg.Ledger.MaxBlocks,
		MaxPeers:          cfg.Network.MaxPeers,
		MDNS:              cfg.Network.MDNS,
		NetworkName:       cfg.NetworkName,
		PoolSize:          cfg.Pool.Size,
		QueueSize:         cfg.Network.QueueSize,
		RoleStrategy:      cfg.Consensus.RoleStrategy,
		SaveInterval:      cfg.Storage.SaveInterval,
		SensorID:          cfg.Telemetry.SensorID,
		StorageType:       cfg.Storage.Type,
		TelemetryInterval: cfg.Telemetry.Interval,
		Transport:         transport,
	}
	if cfg.API != nil {
		nodeCfg.APIPort = cfg.API.Port
	}

	n, err := node.New(nodeCfg)
	if err != nil {
		log.Fatal("Could not start node", fld.Err(err))
	}

	if nodeCfg.APIPort != 0 {
		rest.New(&rest.Config{
			Node: n,
			Port: nodeCfg.APIPort,
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	process.SetExitHandler(cancel)

	if err := n.Run(ctx); err != nil && err != context.Canceled {
		log.Fatal("Node loop exited", fld.Err(err))
	}
}
