package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/yungbote/bookgraph/internal/app"
)

func main() {
	ctx, stop := app.SignalContext(context.Background())
	defer stop()

	a, err := app.New(ctx, "bookgraph-recommend")
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}

	runErr := a.RunRecommendServer(ctx)

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.Close(closeCtx)

	if runErr != nil {
		fmt.Printf("server exited: %v\n", runErr)
		os.Exit(1)
	}
}
