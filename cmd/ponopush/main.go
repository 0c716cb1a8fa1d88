package main

import (
	"context"
	"errors"
	"os"

	"github.com/hluaguo/ponopush/internal/tui"
	"github.com/hluaguo/ponopush/internal/workflow"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		tui.NewPrinter(os.Stderr).Error(err)

		var exitErr *workflow.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
