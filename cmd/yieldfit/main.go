// Command yieldfit fits a Nelson-Siegel model to a yield curve, either once
// from the command line or as an HTTP service.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/agbru/yieldfit/internal/app"
	apperrors "github.com/agbru/yieldfit/internal/errors"
)

func main() {
	if app.HasVersionFlag(os.Args[1:]) {
		app.PrintVersion(os.Stdout)
		os.Exit(apperrors.ExitSuccess)
	}

	application, err := app.New(os.Args, os.Stderr)
	if err != nil {
		if app.IsHelpError(err) {
			os.Exit(apperrors.ExitSuccess)
		}
		if apperrors.ExitCodeFor(err) == apperrors.ExitErrorGeneric {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(apperrors.ExitCodeFor(err))
	}

	// Solvers log through the global logger.
	log.Logger = application.Logger.Zerolog()

	os.Exit(application.Run(context.Background(), os.Stdout))
}
