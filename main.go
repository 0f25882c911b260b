package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "nearshare",
		Usage: "Send and receive files, text and Wi-Fi credentials with Nearby Share peers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
				Value: "info",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "console or json",
				Value: "console",
			},
		},
		Commands: []*cli.Command{
			receiveCommand(),
			sendCommand(),
			discoverCommand(),
			historyCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "nearshare: %v\n", err)
		os.Exit(1)
	}
}
