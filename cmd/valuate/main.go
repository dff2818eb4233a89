// Command valuate computes consensus fair values from the command line.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"

	"github.com/google/subcommands"
)

var (
	configFile = flag.String("config", "", "Path to the YAML configuration file")
	envFile    = flag.String("env", ".env", "Path to the .env file")
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&valueCmd{}, "valuation")
	commander.Register(&batchCmd{}, "valuation")
	commander.Register(&presetsCmd{}, "assumptions")

	flag.Parse()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}
