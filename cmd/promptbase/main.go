package main

import (
	"fmt"
	"os"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
                            _   _
   _ __  _ __ ___  _ __ ___ | |_| |__   __ _ ___  ___
  | '_ \| '__/ _ \| '_ ' _ \| __| '_ \ / _' / __|/ _ \
  | |_) | | | (_) | | | | | | |_| |_) | (_| \__ \  __/
  | .__/|_|  \___/|_| |_| |_|\__|_.__/ \__,_|___/\___|
  |_|

  Personal prompt library

  Usage: promptbase <command> [options]
         promptbase --help

  MCP server mode requires piped input.`)
}

func main() {
	args := os.Args
	if len(args) < 2 {
		// No args + interactive terminal → banner; piped stdin → MCP server
		if isTerminal() {
			printBanner()
			return
		}
		args = append(args, "mcp")
	}

	app := newCLIApp(&appEnv{version: Version})
	if err := app.Run(args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
