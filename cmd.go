package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var opts Options

var rootCmd = &cobra.Command{
	Use:   "tictactoe-relay",
	Short: "Pairs two players into a room and relays their tic-tac-toe moves",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(opts)
		if err != nil {
			return err
		}
		ConfigureLogger(cfg.LogLevel, cfg.LogPretty)
		return run(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.Flags().StringVar(&opts.ConfigFile, "config", "", "path to a TOML config file")
	rootCmd.Flags().StringVar(&opts.Port, "port", "", "HTTP/WebSocket port (default "+DefaultPort+")")
	rootCmd.Flags().StringVar(&opts.TCPAddr, "tcp-addr", "", "address for the line-delimited TCP listener, disabled when empty")
	rootCmd.Flags().StringVar(&opts.LogLevel, "log-level", "", "trace, debug, info, warn, error or disabled")
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	rootCmd.SilenceUsage = true
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("Exiting")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *Config) error {
	relay := NewRelay(NewRegistry())

	var tcpServer *TCPServer
	if cfg.TCPAddr != "" {
		tcpServer = NewTCPServer(cfg.TCPAddr, relay, cfg.SendBuffer)
		if err := tcpServer.Listen(); err != nil {
			return err
		}
		go tcpServer.Serve()
		defer tcpServer.Stop()
	}

	server := &http.Server{Addr: cfg.ListenAddr(), Handler: NewHTTPServer(relay, cfg)}
	errChan := make(chan error, 1)
	go func() {
		LogStartedServer(server.Addr)
		errChan <- server.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	LogStoppedServer(relay.Registry().Len(), relay.Connections())
	return nil
}
