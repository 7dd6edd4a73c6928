package main

import (
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"
)

var (
	log = logging.Logger("compute_market")
)

const BuildVersion = "1.0.0"

func main() {
	if err := logging.SetLogLevel("*", "info"); err != nil {
		log.Fatal(err)
	}
	app := &cli.App{
		Name:    "compute_market",
		Usage:   "",
		Version: BuildVersion,
		Flags:   []cli.Flag{},
		Commands: []*cli.Command{
			cmdInitDb,
			cmdNode,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
