package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lfedgeai/taskcat/builder"
	"github.com/lfedgeai/taskcat/pkg/logging"
)

var (
	runEnvFile string
	runVerbose bool

	serveAddr string
	servePort string
)

func NewRootCmd() *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "builder",
		Short: "builder turns a screenshot and a task into the next UI action",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	var serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the build service",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := builder.LoadConfig(runEnvFile)
			if err != nil {
				log.Fatalf("Error loading configuration: %v", err)
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = serveAddr
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = servePort
			}
			logging.Setup(cfg.Log)
			if runVerbose {
				logging.SetLogLevel(log.DebugLevel)
			}
			if err := cfg.Validate(); err != nil {
				log.Fatalf("Invalid configuration: %v", err)
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics := builder.NewMetrics(reg)

			b, err := builder.NewFromConfig(cfg, metrics)
			if err != nil {
				log.Fatalf("Error initializing builder: %v", err)
			}
			srv := builder.NewServer(builder.ServerConfig{
				Addr:                cfg.Addr,
				Port:                cfg.Port,
				Device:              cfg.Device,
				APIKey:              cfg.APIKey,
				MaxConcurrentBuilds: cfg.MaxConcurrentBuilds,
				ShutdownTimeout:     cfg.ShutdownTimeout,
			}, b, metrics, reg)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := srv.StartServer(ctx); err != nil {
				log.Fatalf("Error: %v", err)
			}
		},
	}
	// addr flag
	serveCmd.PersistentFlags().StringVarP(&serveAddr, "addr", "a", "0.0.0.0", "address of the server")
	// port flag
	serveCmd.PersistentFlags().StringVarP(&servePort, "port", "p", "8000", "port of the server")
	rootCmd.AddCommand(serveCmd)

	rootCmd.PersistentFlags().StringVarP(&runEnvFile, "env-file", "e", ".env", "dotenv file with the service settings")
	// verbose flag
	rootCmd.PersistentFlags().BoolVarP(&runVerbose, "verbose", "v", false, "verbose output")
	return rootCmd
}

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
