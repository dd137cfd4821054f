package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bistroboss/bistro/app/routes"
	"github.com/bistroboss/bistro/pkg/app"
	"github.com/bistroboss/bistro/pkg/router"
)

// bistro serve
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run"},
	Short:   "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		c, err := app.Boot(ctx)
		if err != nil {
			return err
		}
		defer c.Close(context.Background())

		return app.Serve(ctx, c.Handler(func(r *router.Router) { routes.RegisterAPI(r, c) }))
	},
}

// bistro route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List every registered route",
	RunE: func(cmd *cobra.Command, args []string) error {
		// routes are only registered, never served, so no connections are needed
		c := &app.Container{}
		r := c.Router(func(r *router.Router) { routes.RegisterAPI(r, c) })
		return app.PrintRoutes(os.Stdout, r)
	},
}
