package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/reparvservices/reparv-server-sub002/internal/referral"
	"github.com/reparvservices/reparv-server-sub002/internal/utils"
)

var nanoidCommand = &cli.Command{
	Name:  "nanoid",
	Usage: "Generate NanoIDs for use in seed files",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"c"},
			Usage:   "Number of IDs to generate",
			Value:   1,
		},
	},
	Action: func(c *cli.Context) error {
		count := c.Int("count")
		for range count {
			fmt.Println(utils.NanoID())
		}
		return nil
	},
}

var referralCommand = &cli.Command{
	Name:  "referral",
	Usage: "Draw sample referral codes without checking uniqueness",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"c"},
			Usage:   "Number of codes to draw",
			Value:   1,
		},
	},
	Action: func(c *cli.Context) error {
		gen := referral.NewGenerator(referral.DefaultMaxAttempts)
		for range c.Int("count") {
			code, err := gen.Draw()
			if err != nil {
				return err
			}
			fmt.Println(code)
		}
		return nil
	},
}
