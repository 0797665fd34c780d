package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/nchukanov/botwalk/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKeyPath string
	flagIdleTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start SSH server for remote play",
	Long: `Start an SSH server so others can play over the network:

  ssh -p 23235 yourhost

Examples:
  botwalk serve
  botwalk serve --ssh :2222 --host-key ./host_key`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23235", "SSH listen address")
	serveCmd.Flags().StringVar(&flagHostKeyPath, "host-key", "", "Path to SSH host key (auto-generated if empty)")
	serveCmd.Flags().DurationVar(&flagIdleTimeout, "idle-timeout", 30*time.Minute, "Idle connection timeout")
}

func runServe(cmd *cobra.Command, args []string) {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		logger.Fatal("config", "error", err)
	}
	all, err := loadLevels(cfg, logger)
	if err != nil {
		logger.Fatal("loading levels", "error", err)
	}

	tracer, stopTracing := setupTracing(cfg, logger)
	defer stopTracing()

	srvCfg := tui.DefaultSSHServerConfig()
	srvCfg.Address = flagSSHAddr
	srvCfg.HostKeyPath = flagHostKeyPath
	srvCfg.DBPath = cfg.DBPath
	srvCfg.IdleTimeout = flagIdleTimeout

	deps := tui.PlayDeps{
		Logger: logger,
		Tracer: tracer,
		Config: cfg,
	}

	server, err := tui.NewSSHServer(srvCfg, all, deps)
	if err != nil {
		logger.Fatal("creating SSH server", "error", err)
	}
	if err := server.ListenAndServe(); err != nil {
		logger.Fatal("server", "error", err)
	}
}
