package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/larder/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional)")
	exportPath := flag.String("export", "", "write the inventory as CSV to this path and exit")
	pollSeconds := flag.Int("poll", 0, "refresh interval in seconds (optional, defaults to refresh_interval)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{ConfigPath: *configPath, ExportPath: *exportPath}
	if poll := *pollSeconds; poll > 0 {
		opts.PollEvery = poll
	}

	if opts.ExportPath != "" {
		path, n, err := app.Export(ctx, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "larder: %v\n", err)
			return 1
		}
		fmt.Printf("exported %d items to %s\n", n, path)
		return 0
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "larder: %v\n", err)
		return 1
	}
	return 0
}
