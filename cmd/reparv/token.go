package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/reparvservices/reparv-server-sub002/internal/server"
	"github.com/reparvservices/reparv-server-sub002/pkg/types"
)

const defaultTokenTTL = 24 * time.Hour

var tokenCommand = &cli.Command{
	Name:  "token",
	Usage: "Issue an access token signed with JWT_SECRET, for local testing",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "subject", Aliases: []string{"s"}, Required: true},
		&cli.StringFlag{Name: "role", Aliases: []string{"r"}, Value: string(types.AuthAdmin)},
		&cli.StringFlag{Name: "email"},
		&cli.StringFlag{Name: "project-partner", Usage: "Tenant id for employees and partners"},
		&cli.DurationFlag{Name: "ttl", Value: defaultTokenTTL},
		&cli.BoolFlag{Name: "cookie", Usage: "Print the encrypted access_token cookie value instead"},
	},
	Action: func(c *cli.Context) error {
		config, err := loadConfig(c)
		if err != nil {
			return err
		}

		auth, err := server.NewAuthenticator(config.JWTSecret, config.CookieHashKey, config.CookieBlockKey)
		if err != nil {
			return err
		}

		token, err := auth.Sign(types.Identity{
			Subject:          c.String("subject"),
			Role:             types.AuthRole(c.String("role")),
			Email:            c.String("email"),
			ProjectPartnerID: c.String("project-partner"),
		}, c.Duration("ttl"))
		if err != nil {
			return err
		}

		if c.Bool("cookie") {
			token, err = auth.EncodeCookie(token)
			if err != nil {
				return err
			}
		}

		fmt.Println(token)
		return nil
	},
}
