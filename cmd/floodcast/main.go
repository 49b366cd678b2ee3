package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"floodcast/internal/command"
	"floodcast/internal/config"
	"floodcast/internal/deliver"
	"floodcast/internal/logger"
	"floodcast/internal/node"
	"floodcast/internal/p2p"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "floodcast",
	Short: "A minimal peer-to-peer message flooding node",
	Long: `floodcast runs a single node of a message flooding network.

Nodes connect to each other over TCP, exchange fixed-size 128-byte frames,
and re-broadcast every newly seen message to all other known peers. A
bounded dedup cache keeps the flood loop-safe.

Operator commands are read from stdin:

  connect <host:port>   dial another node
  broadcast <text>      flood a message to every peer
  disconnect            shut down all peer connections`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the node",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger.EnableDebug(cfg.Debug)

		listener, err := p2p.Listen(cfg.ListenAddr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", cfg.ListenAddr, err)
		}
		defer listener.Close()

		hub := deliver.NewHub()
		defer hub.Shutdown()

		sub := hub.Subscribe()
		go printDeliveries(sub)

		src := command.NewSource(os.Stdin)
		n := node.New(cfg, listener.Conns(), src.Commands(), hub)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("node %s listening on %s", cfg.NodeID, listener.Addr())
		return n.Run(ctx)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the floodcast version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("floodcast %s\n", version)
	},
}

// loadConfig builds the effective config: file first, then any flag the
// operator set on the command line wins.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.GetDefaultConfig()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		parsed, err := config.ParseConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = parsed
	}

	if cmd.Flags().Changed("listen") {
		cfg.ListenAddr, _ = cmd.Flags().GetString("listen")
	}
	if cmd.Flags().Changed("connect") {
		cfg.PeerAddrs, _ = cmd.Flags().GetStringSlice("connect")
	}
	if cmd.Flags().Changed("cache-size") {
		cfg.CacheSize, _ = cmd.Flags().GetInt("cache-size")
	}
	if cmd.Flags().Changed("debug") {
		cfg.Debug, _ = cmd.Flags().GetBool("debug")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func printDeliveries(sub deliver.Subscriber) {
	for d := range sub.Deliveries() {
		if d.From == "" {
			fmt.Printf("broadcast: %s\n", d.Msg.Text)
			continue
		}
		fmt.Printf("%s: %s\n", d.From, d.Msg.Text)
	}
}

func init() {
	runCmd.Flags().String("config", "", "path to a JSON config file")
	runCmd.Flags().String("listen", ":4000", "TCP listen address")
	runCmd.Flags().StringSlice("connect", nil, "peer addresses to dial on start")
	runCmd.Flags().Int("cache-size", 16, "dedup cache capacity")
	runCmd.Flags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
