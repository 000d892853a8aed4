package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"sno-scene-tools/internal/report"
	"sno-scene-tools/internal/sno"
)

func run(_ context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return errors.New("expected exactly one SNO file argument")
	}
	path := cmd.Args().First()

	doc, err := sno.DecodeFile(path, sno.WithMaxDepth(int(cmd.Int("max-depth"))))
	if err != nil {
		return err
	}

	var out any = report.Summarize(path, doc)
	if cmd.Bool("full") {
		out = doc
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func main() {
	cmd := &cli.Command{
		Name:      "snoinspect",
		Usage:     "Decode one SNO scene node and print it as JSON",
		ArgsUsage: "<file>",
		Action:    run,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "full",
				Aliases: []string{"f"},
				Usage:   "Print the whole decoded document instead of a summary",
			},
			&cli.IntFlag{
				Name:    "max-depth",
				Usage:   "Maximum BSP tree depth",
				Value:   sno.DefaultMaxDepth,
				Sources: cli.EnvVars("SNO_MAX_DEPTH"),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
