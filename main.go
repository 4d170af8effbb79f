package main

import (
	"context"

	"github.com/shandysiswandi/seedvault/internal/app"
)

func main() {
	vault := app.New()

	<-vault.Start()

	ctx, cancel := context.WithTimeout(context.Background(), vault.ShutdownTimeout())
	defer cancel()

	vault.Stop(ctx)
}
