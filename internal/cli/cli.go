package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/sgendron/loadpulse/internal/client"
	"github.com/sgendron/loadpulse/internal/config"
	"github.com/sgendron/loadpulse/internal/format"
	"github.com/sgendron/loadpulse/internal/push"
	"github.com/sgendron/loadpulse/internal/recent"
	"github.com/sgendron/loadpulse/internal/types"
	"gopkg.in/yaml.v3"
)

// QuickOptions configures a one-shot quick test.
type QuickOptions struct {
	ServerURL    string
	TargetURL    string
	OutputFormat string // text, json, yaml
}

// LoadOptions configures a one-shot load test.
type LoadOptions struct {
	ServerURL    string
	TargetURL    string
	Requests     int
	Concurrency  int
	OutputFormat string
	Wait         bool          // block for the pushed result
	WaitTimeout  time.Duration // 0 means no deadline
}

// RunQuick fires a single probe and prints the result.
func RunQuick(opts QuickOptions) error {
	api := client.New(opts.ServerURL)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	result, err := api.RunQuickTest(ctx, opts.TargetURL)
	if err != nil {
		return fmt.Errorf("quick test failed: %w", err)
	}

	rememberURL(opts.TargetURL)

	switch opts.OutputFormat {
	case "json":
		return printJSON(result)
	case "yaml":
		return printYAML(result)
	default:
		printQuickResult(result)
		if !result.Success {
			return fmt.Errorf("probe failed")
		}
		return nil
	}
}

// RunLoad submits a load test. With Wait set it opens the push channel
// before submitting, so the completion broadcast cannot outrun the
// listener, then prints the result when it arrives.
func RunLoad(opts LoadOptions) error {
	api := client.New(opts.ServerURL)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if !opts.Wait {
		ack, err := api.StartLoadTest(ctx, opts.TargetURL, opts.Requests, opts.Concurrency)
		if err != nil {
			return fmt.Errorf("load test failed to start: %w", err)
		}
		rememberURL(opts.TargetURL)

		fmt.Printf("Load test started: %d requests, %d concurrent against %s\n",
			opts.Requests, opts.Concurrency, opts.TargetURL)
		if ack.Message != "" {
			fmt.Println(ack.Message)
		}
		return nil
	}

	if opts.WaitTimeout > 0 {
		var cancelWait context.CancelFunc
		ctx, cancelWait = context.WithTimeout(ctx, opts.WaitTimeout)
		defer cancelWait()
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	channel := push.New(api.WebSocketURL(), push.DefaultReconnectDelay, logger)
	go channel.Run(ctx)

	// The backend broadcasts a completed run only to clients connected
	// at completion time; a fast run can finish before a post-submit
	// dial would land. Wait for the channel first.
	if err := awaitConnected(ctx, channel); err != nil {
		return err
	}

	ack, err := api.StartLoadTest(ctx, opts.TargetURL, opts.Requests, opts.Concurrency)
	if err != nil {
		return fmt.Errorf("load test failed to start: %w", err)
	}

	rememberURL(opts.TargetURL)

	fmt.Fprintf(os.Stderr, "Load test started, waiting for results...\n")

	result, err := waitForResult(ctx, channel, ack.ID)
	if err != nil {
		return err
	}

	switch opts.OutputFormat {
	case "json":
		return printJSON(result)
	case "yaml":
		return printYAML(result)
	default:
		printLoadResult(result)
		return nil
	}
}

// awaitConnected drains the push channel until the first connected
// state transition.
func awaitConnected(ctx context.Context, channel *push.Channel) error {
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("could not reach the push endpoint: %w", ctx.Err())
		case event := <-channel.Events():
			if event.Type == push.TypeState && event.State == push.StateConnected {
				return nil
			}
		}
	}
}

// waitForResult listens on an already-connected push channel for the
// completed run. A missing ack id accepts the first load result,
// matching the TUI's best-effort correlation.
func waitForResult(ctx context.Context, channel *push.Channel, ackID string) (*types.LoadTestResult, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("gave up waiting for results: %w", ctx.Err())
		case event := <-channel.Events():
			if event.Type != push.TypeLoadResult {
				continue
			}
			if ackID != "" && event.Load.ID != "" && event.Load.ID != ackID {
				continue
			}
			return event.Load, nil
		}
	}
}

// History prints the most recent completed load tests.
func History(serverURL string, limit int) error {
	api := client.New(serverURL)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	entries, err := api.ListLoadResults(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to fetch history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No load tests recorded yet.")
		return nil
	}

	for _, entry := range entries {
		fmt.Printf("%s  %s  %s  %d requests  %s\n",
			entry.ID, format.Timestamp(entry.Timestamp), entry.URL,
			entry.TotalRequests, format.SuccessRate(entry.SuccessCount, entry.TotalRequests))
	}
	return nil
}

func printQuickResult(r *types.QuickTestResult) {
	if r.Success {
		fmt.Println("✓ Success")
	} else {
		fmt.Println("✗ Failed")
	}
	fmt.Printf("URL:           %s\n", r.URL)
	if r.Status > 0 {
		fmt.Printf("Status:        %d\n", r.Status)
	}
	fmt.Printf("Duration:      %dms\n", r.Duration)
	fmt.Printf("Response size: %s\n", format.Bytes(r.ResponseSize))
	if r.Error != "" {
		fmt.Printf("Error:         %s\n", r.Error)
	}
}

func printLoadResult(r *types.LoadTestResult) {
	fmt.Printf("URL:             %s\n", r.URL)
	fmt.Printf("Total requests:  %d\n", r.TotalRequests)
	fmt.Printf("Concurrency:     %d\n", r.Concurrency)
	fmt.Printf("Total duration:  %dms\n", r.Duration)
	fmt.Printf("Success rate:    %s (%d ok, %d failed)\n",
		format.SuccessRate(r.SuccessCount, r.TotalRequests), r.SuccessCount, r.ErrorCount)
	fmt.Printf("Avg response:    %s\n", format.Millis(r.AvgResponseTime))
	fmt.Printf("Min response:    %dms\n", r.MinResponseTime)
	fmt.Printf("Max response:    %dms\n", r.MaxResponseTime)
	if len(r.StatusCodes) > 0 {
		fmt.Println("Status codes:")
		for code, count := range r.StatusCodes {
			fmt.Printf("  %s: %d\n", code, count)
		}
	}
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printYAML(v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}

// rememberURL records the target in the recent-URL store so the TUI
// can offer it back. Failures are ignored; this is a convenience.
func rememberURL(url string) {
	if config.DatabasePath == "" {
		return
	}
	store, err := recent.NewStore(config.DatabasePath)
	if err != nil {
		return
	}
	defer store.Close()
	_ = store.Touch(url)
}
