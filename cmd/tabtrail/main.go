// Command tabtrail runs the visit-history API server.
package main

import (
	"context"

	"github.com/dalemusser/tabtrail/internal/app/bootstrap"
	"github.com/dalemusser/waffle/app"
)

func main() {
	app.Run(context.Background(), bootstrap.Hooks)
}
