package main

import (
	"context"
	"fmt"
	"os"

	"autojudge/internal/cli/app"
	"autojudge/internal/cli/config"
	pkgerrors "autojudge/pkg/errors"
	"autojudge/pkg/utils/contextkey"
	"autojudge/pkg/utils/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	appDir, err := config.AppDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "locate app data failed: %v\n", err)
		return pkgerrors.ExitInternal
	}
	settings, err := config.Load(appDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load settings failed: %v\n", err)
		return pkgerrors.SettingsLoadFailed.ExitCode()
	}

	if err := logger.Init(settings.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		return pkgerrors.ExitInternal
	}
	defer func() {
		_ = logger.Sync()
	}()

	// The wait is bounded by the timeout only; an operator stops it by killing the process.
	ctx := context.WithValue(context.Background(), contextkey.TraceID, uuid.NewString())

	a := app.New(settings, appDir, os.Stdin, os.Stdout)
	if err := a.Run(ctx, argv); err != nil {
		logger.Error(ctx, "run terminated", zap.Int("code", int(pkgerrors.GetCode(err))), zap.Error(err))
		a.Diagnose(err)
		return pkgerrors.ExitCode(err)
	}
	return pkgerrors.ExitOK
}
