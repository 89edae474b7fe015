package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ipmerge/ipmerge/src/internal/commands"
	"github.com/ipmerge/ipmerge/src/internal/log"
)

var (
	version = "dev"
	commit  = "n/a"
	date    = "n/a"
)

func main() {
	ctx := &commands.AppContext{}

	flag.StringVar(&ctx.ConfigPath, "config", "", "Path to configuration file (built-in defaults if empty)")
	flag.StringVar(&ctx.EnvFile, "env-file", ".env", "File with GITHUB_TOKEN and GITHUB_REPOSITORY, loaded if present")
	flag.BoolVar(&ctx.Verbose, "verbose", false, "Enable debug logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "IP list merger and publisher\n")
		fmt.Fprintf(os.Stderr, "Version: %s (Commit: %s, Date: %s)\n\n", version, commit, date)
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <command>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  run                     Download, merge, filter, shuffle and publish the list\n")
		fmt.Fprintf(os.Stderr, "  build                   Build the output file without publishing it\n")
		fmt.Fprintf(os.Stderr, "  publish                 Upload a previously built output file\n")
		fmt.Fprintf(os.Stderr, "  check-config            Validate configuration and credentials\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if ctx.Verbose {
		log.SetVerbose(true)
	}

	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx.Context = signalCtx

	cmds := []commands.Runner{
		commands.CreateRunCommand(),
		commands.CreateBuildCommand(),
		commands.CreatePublishCommand(),
		commands.CreateCheckConfigCommand(),
	}

	args := flag.Args()

	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}

	subcommand := args[0]
	for _, cmd := range cmds {
		if cmd.Name() == subcommand {
			if err := cmd.Init(args[1:], ctx); err != nil {
				log.Fatalf("Failed to initialize command: %v", err)
			}

			if err := cmd.Run(); err != nil {
				log.Fatalf("Failed to run command: %v", err)
			}

			return
		}
	}

	log.Fatalf("Unknown subcommand: %s", subcommand)
}
