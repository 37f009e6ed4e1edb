package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lfedgeai/taskcat/executor"
	"github.com/lfedgeai/taskcat/executor/desktop"
	"github.com/lfedgeai/taskcat/pkg/common"
	"github.com/lfedgeai/taskcat/pkg/logging"
)

var (
	runLocal   bool
	runRemote  bool
	runEnvFile string
	runVerbose bool
)

func NewRootCmd() *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "executor (--local | --remote SERVER_URL API_KEY)",
		Short: "executor replays the build service's actions on this desktop",
		Args: func(cmd *cobra.Command, args []string) error {
			if runRemote {
				return cobra.ExactArgs(2)(cmd, args)
			}
			return cobra.NoArgs(cmd, args)
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var serverURL, apiKey string
			if runRemote {
				serverURL, apiKey = args[0], args[1]
			}
			cfg, err := executor.LoadConfig(runEnvFile, runRemote, serverURL, apiKey)
			if err != nil {
				return err
			}
			logging.Setup(cfg.Log)
			if runVerbose {
				logging.SetLogLevel(log.DebugLevel)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			fmt.Printf("Connected to server: %s\n", cfg.ServerURL)
			return run(cmd.Context(), cfg, cmd.InOrStdin())
		},
	}

	rootCmd.Flags().BoolVar(&runLocal, "local", false, "use the local server ("+common.LocalServerURL+")")
	rootCmd.Flags().BoolVar(&runRemote, "remote", false, "use a remote server, followed by SERVER_URL and API_KEY")
	rootCmd.MarkFlagsMutuallyExclusive("local", "remote")
	rootCmd.MarkFlagsOneRequired("local", "remote")

	rootCmd.PersistentFlags().StringVarP(&runEnvFile, "env-file", "e", ".env", "dotenv file with the executor settings")
	// verbose flag
	rootCmd.PersistentFlags().BoolVarP(&runVerbose, "verbose", "v", false, "verbose output")
	return rootCmd
}

func run(ctx context.Context, cfg *executor.Config, in io.Reader) error {
	results, err := executor.NewResults(cfg.InputFolder, cfg.OutputFolder)
	if err != nil {
		return err
	}
	stdin := bufio.NewReader(in)
	task, err := prompt(stdin, "Please enter a task: ")
	if err != nil {
		return err
	}
	if task == "" {
		return errors.New("task is empty")
	}
	url, err := prompt(stdin, "Please enter a valid url: ")
	if err != nil {
		return err
	}
	if url != "" {
		browser, err := desktop.OpenPage(ctx, url)
		if err != nil {
			return err
		}
		defer browser.Close()
		time.Sleep(common.PageSettleDelay)
	}

	client := executor.NewHTTPBuildClient(cfg.ServerURL, cfg.APIKey, cfg.RequestTimeout)
	client.Progress = os.Stderr
	e := executor.New(desktop.PrimaryDisplay(), desktop.NewRobot(), client, results)
	err = e.Run(ctx, task)
	if errors.Is(err, context.Canceled) {
		log.Info("Interrupted")
		return nil
	}
	return err
}

func prompt(r *bufio.Reader, msg string) (string, error) {
	fmt.Print(msg)
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("error reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
