// Command suggest prints DuckDuckGo search suggestions for a query.
//
// The client is configured from HTTPKIT_* environment variables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/adamwoolhether/httpkit"
	"github.com/adamwoolhether/httpkit/codec"
	"github.com/adamwoolhether/httpkit/internal/suggestions"
	"github.com/adamwoolhether/httpkit/restclient"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "suggest:", err)
		os.Exit(1)
	}
}

func run() error {
	fast := flag.Bool("fast-json", false, "decode responses with goccy/go-json")
	verbose := flag.Bool("v", false, "log debug output")
	flag.Parse()

	query := strings.Join(flag.Args(), " ")
	if query == "" {
		return errors.New("usage: suggest [-fast-json] [-v] <query>")
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := restclient.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	opts := []restclient.Option{
		restclient.WithConfig(cfg),
		restclient.WithLogger(logger),
	}
	if *fast {
		opts = append(opts, restclient.WithCodec(codec.GoJSON()))
	}

	c, err := httpkit.NewMonitoredClient(suggestions.New(), cfg.ReachabilityInterval, opts...)
	if err != nil {
		return fmt.Errorf("building client: %w", err)
	}
	defer c.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	list, err := suggestions.Fetch(ctx, c, query)
	if err != nil {
		return err
	}

	for _, s := range list {
		fmt.Println(s)
	}

	return nil
}
