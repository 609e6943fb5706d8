package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mivchik/platforge/internal/live"
	"github.com/mivchik/platforge/internal/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
	flagFeedAddr    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the builder SSH server",
	Long: `Start an SSH server that lets users build layouts remotely.

Each SSH connection gets its own board, saved under the connecting
username. With --feed, an HTTP endpoint additionally streams every board
mutation to WebSocket subscribers at /ws.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.platforge/host_key

Examples:
  platforge serve                           # Listen on :23234
  platforge serve --ssh :2222               # Listen on port 2222
  platforge serve --feed :8080              # Also expose ws://host:8080/ws

Users can connect with:
  ssh <username>@localhost -p 23234`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().StringVar(&flagFeedAddr, "feed", "", "WebSocket feed address (empty = disabled)")
}

func runServe(_ *cobra.Command, _ []string) {
	cfg := tui.SSHServerConfig{
		Address:     flagSSHAddr,
		HostKeyPath: flagHostKey,
		DBPath:      flagDBPath,
		IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
		Builder:     tui.DefaultConfig(),
	}

	var hub *live.Hub
	if flagFeedAddr != "" {
		hub = live.NewHub()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go hub.Run(ctx)

		mux := http.NewServeMux()
		mux.HandleFunc("/ws", hub.ServeWS)
		go func() {
			log.Info("starting feed server", "address", flagFeedAddr)
			if err := http.ListenAndServe(flagFeedAddr, mux); err != nil {
				log.Error("feed server error", "error", err)
			}
		}()
	}

	server, err := tui.NewSSHServer(cfg, loadCatalog(), hub)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting platforge SSH server on %s\n", cfg.Address)
	fmt.Println("Connect with: ssh localhost -p 23234")
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
