package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sgendron/loadpulse/internal/cli"
	"github.com/sgendron/loadpulse/internal/config"
	"github.com/sgendron/loadpulse/internal/tui"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "loadpulse",
	Short: "LoadPulse - HTTP load testing front-end",
	Long: `LoadPulse is an interactive front-end for an HTTP load-testing backend.

Run without arguments to start the TUI. Quick tests probe a URL once;
load tests run many concurrent requests and report aggregate metrics.
Completed load tests are pushed to the client over a persistent
connection that reconnects on its own.

Examples:
  loadpulse                                  # Start interactive TUI
  loadpulse test https://example.com         # One-shot quick test
  loadpulse load https://example.com -n 500 -c 20
  loadpulse history                          # List recent load tests
  loadpulse --help                           # Show help`,
	Version: version,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Run()
	},
}

var testCmd = &cobra.Command{
	Use:   "test <url>",
	Short: "Run a one-shot quick test against a URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		serverURL, err := resolveServer()
		if err != nil {
			return err
		}
		return cli.RunQuick(cli.QuickOptions{
			ServerURL:    serverURL,
			TargetURL:    args[0],
			OutputFormat: flagOutput,
		})
	},
}

var loadCmd = &cobra.Command{
	Use:   "load <url>",
	Short: "Run a load test and wait for the pushed results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		serverURL, err := resolveServer()
		if err != nil {
			return err
		}
		return cli.RunLoad(cli.LoadOptions{
			ServerURL:    serverURL,
			TargetURL:    args[0],
			Requests:     flagRequests,
			Concurrency:  flagConcurrency,
			OutputFormat: flagOutput,
			Wait:         !flagNoWait,
			WaitTimeout:  time.Duration(flagWaitTimeout) * time.Second,
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent load test results",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		serverURL, err := resolveServer()
		if err != nil {
			return err
		}
		return cli.History(serverURL, flagLimit)
	},
}

var (
	flagServer      string
	flagOutput      string
	flagRequests    int
	flagConcurrency int
	flagNoWait      bool
	flagWaitTimeout int
	flagLimit       int
)

// resolveServer picks the backend address: flag wins, settings file
// otherwise.
func resolveServer() (string, error) {
	if err := config.Initialize(); err != nil {
		return "", fmt.Errorf("failed to initialize config: %w", err)
	}
	if flagServer != "" {
		return flagServer, nil
	}
	settings, err := config.Load()
	if err != nil {
		return "", err
	}
	return settings.ServerURL, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagServer, "server", "s", "", "Backend server URL (overrides settings)")

	testCmd.Flags().StringVarP(&flagOutput, "output", "o", "text", "Output format (text/json/yaml)")

	loadCmd.Flags().IntVarP(&flagRequests, "requests", "n", 100, "Total number of requests")
	loadCmd.Flags().IntVarP(&flagConcurrency, "concurrency", "c", 10, "Concurrent workers")
	loadCmd.Flags().StringVarP(&flagOutput, "output", "o", "text", "Output format (text/json/yaml)")
	loadCmd.Flags().BoolVar(&flagNoWait, "no-wait", false, "Return after submission without waiting for results")
	loadCmd.Flags().IntVar(&flagWaitTimeout, "timeout", 300, "Seconds to wait for results (0 = forever)")

	historyCmd.Flags().IntVarP(&flagLimit, "limit", "l", 20, "Number of entries to list")

	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(historyCmd)
}
