// Command odrivectl reads, writes and invokes endpoints on an ODrive motor
// controller over USB.
//
// Usage:
//
//	odrivectl [flags] <command> [args]
//
// Flags:
//
//	-config string        Configuration file path (.yaml, .yml or .toml)
//	-serial string        Device serial number (hex)
//	-timeout duration     Per-transfer timeout (default 2s)
//	-protocol-log string  Write a protocol capture to this file
//	-schema-cache string  Directory for cached schema documents
//	-refresh              Ignore the schema cache
//	-simulate             Use the built-in simulated device
//	-telemetry            Print OpenTelemetry spans and metrics to stderr
//	-log-level string     Log level: debug, info, warn, error (default "info")
//
// Examples:
//
//	# Read the bus voltage
//	odrivectl read vbus_voltage
//
//	# Set the velocity setpoint of axis 0
//	odrivectl write axis0.controller.input_vel 2.5
//
//	# Explore a simulated device interactively
//	odrivectl -simulate shell
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/odrive-host/odrive-go/cmd/odrivectl/interactive"
)

const usage = `odrivectl - ODrive USB control tool

Usage:
  odrivectl [flags] <command> [args]

Commands:
  read <path>...        Read endpoint values
  write <path> <value>  Write an endpoint value
  call <path>           Invoke a function
  tree [prefix]         Show the endpoint tree
  info <path>           Show endpoint id, type and access
  export                Print the schema as YAML
  stats                 Show exchange counters
  shell                 Start the interactive shell

Flags:
`

func main() {
	cfg, args, err := parseArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	setupLogging(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, &cfg, args); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *Config, args []string) error {
	a, err := newApp(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.ensureSchema(ctx, cfg.Refresh); err != nil {
		return err
	}

	if args[0] == "shell" {
		shell, err := interactive.New(a.session, a.reload)
		if err != nil {
			return err
		}
		log.SetOutput(shell.Stdout())
		shell.Run(ctx)
		return nil
	}

	runner := interactive.NewRunner(a.session, a.reload)
	return runner.Execute(ctx, os.Stdout, args[0], args[1:])
}

func setupLogging(level string) {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	switch level {
	case "debug":
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
	case "warn", "error":
		log.SetFlags(log.Ltime)
	}
}
