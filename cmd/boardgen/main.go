package main

import (
	"context"
	"fmt"
	"os"

	"k8s.io/klog/v2"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	ctx := context.Background()
	if err := run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		klog.Flush()
		os.Exit(1)
	}
	klog.Flush()
}

func run(ctx context.Context, args []string) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("could not determine home directory: %w", err)
	}
	return newCLIApp(defaultConfigDir(homeDir)).RunContext(ctx, args)
}
