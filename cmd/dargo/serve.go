package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"kuldippatel.dev/dargo/internal/server"
	"kuldippatel.dev/dargo/internal/uinput"
)

var serveCmd = &cobra.Command{
	Use:   "serve [address]",
	Short: "Serve the trackpad page and socket",
	Args:  cobra.MaximumNArgs(1),
	RunE:  executeServe,
}

var (
	serveListen   string
	serveName     string
	serveDebug    bool
	serveExtended bool
)

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "Address to listen on (default from config, 127.0.0.1:8080)")
	serveCmd.Flags().StringVar(&serveName, "name", "", "Name of the virtual device")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Development logging")
	serveCmd.Flags().BoolVar(&serveExtended, "extended", false, "Report contact size, orientation and pressure")
}

func executeServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if serveListen != "" {
		cfg.Listen = serveListen
	}
	if len(args) == 1 {
		cfg.Listen = args[0]
	}
	if serveName != "" {
		cfg.DeviceName = serveName
	}
	if cmd.Flags().Changed("debug") {
		cfg.Debug = serveDebug
	}
	if cmd.Flags().Changed("extended") {
		cfg.Extended = serveExtended
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg.Debug)
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Infow("dargo",
		"device", cfg.DeviceName,
		"extended", cfg.Extended,
		"auth", cfg.AuthSecret != "",
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(log, cfg, uinput.NewRegistrar(cfg.DeviceName))
	return srv.Run(ctx)
}
