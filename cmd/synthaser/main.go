package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/macropower/synthaser/internal/cli"
	"github.com/macropower/synthaser/pkg/version"
)

func main() {
	err := fang.Execute(context.Background(), cli.NewRootCmd(),
		fang.WithVersion(version.GetVersion()),
		fang.WithErrorHandler(cli.ErrorHandler),
		fang.WithNotifySignal(os.Interrupt),
	)
	if err != nil {
		os.Exit(1)
	}
}
