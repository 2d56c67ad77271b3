package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/yungbote/bookgraph/internal/app"
)

func main() {
	var out string
	flag.StringVar(&out, "out", "-", "output file for head<TAB>label<TAB>tail lines (- for stdout)")
	flag.Parse()

	ctx, stop := app.SignalContext(context.Background())
	defer stop()

	a, err := app.New(ctx, "bookgraph-export-triplets")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init app: %v\n", err)
		os.Exit(1)
	}
	code := run(ctx, a, out)

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.Close(closeCtx)
	os.Exit(code)
}

func run(ctx context.Context, a *app.App, out string) int {
	var w io.Writer = os.Stdout
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			a.Log.Error("Create output failed", "path", out, "error", err)
			return 1
		}
		defer f.Close()
		w = f
	}
	n, err := a.RunExportTriplets(ctx, w)
	if err != nil {
		a.Log.Error("Triplet export failed", "written", n, "error", err)
		return 1
	}
	a.Log.Info("Triplet export finished", "triplets", n, "out", out)
	return 0
}
