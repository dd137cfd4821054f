package app

import (
	"context"
	"net/http"

	"github.com/bistroboss/bistro/config"
	"github.com/bistroboss/bistro/internal/server"
)

// Serve listens on APP_PORT until ctx is cancelled, then drains in-flight
// requests.
func Serve(ctx context.Context, h http.Handler) error {
	return server.Start(ctx, ":"+config.AppPort(), h)
}
