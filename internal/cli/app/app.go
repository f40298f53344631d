package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"autojudge/internal/cli/args"
	"autojudge/internal/cli/config"
	"autojudge/internal/cli/setup"
	"autojudge/internal/cli/store"
	"autojudge/internal/judgeproc"
	"autojudge/internal/result"
	"autojudge/internal/submission"
	pkgerrors "autojudge/pkg/errors"
	"autojudge/pkg/utils/contextkey"
	"autojudge/pkg/utils/logger"

	"go.uber.org/zap"
)

// DefaultInboxName is the inbox suggested during first time setup, under the app dir.
const DefaultInboxName = "OSD"

// App runs one submission from the command line.
type App struct {
	Settings   config.Settings
	AppDir     string
	Out        io.Writer
	OpenPrompt func() (setup.Prompter, error)
	Guard      judgeproc.Guard
	Draw       submission.Draw
}

// New wires the app to the real console and process table.
func New(settings config.Settings, appDir string, in *os.File, out io.Writer) *App {
	return &App{
		Settings: settings,
		AppDir:   appDir,
		Out:      out,
		OpenPrompt: func() (setup.Prompter, error) {
			return setup.NewPrompter(in, out)
		},
		Guard: judgeproc.New(settings.JudgeProcess),
		Draw:  submission.DefaultDraw,
	}
}

// ProfilePath is where the configuration record lives.
func (a *App) ProfilePath() string {
	return store.Path(a.AppDir)
}

// Run executes guard, naming, transfer, wait and report in order. Every
// failure is terminal and returned as a coded error.
func (a *App) Run(ctx context.Context, argv []string) error {
	inv, argErr := args.Parse(argv)
	if inv.Reset {
		return a.reset(ctx)
	}

	if !a.Settings.Quiet {
		a.printBanner()
	}

	profile, err := setup.Ensure(ctx, a.ProfilePath(), a.Out, a.OpenPrompt, setup.Defaults{
		InboxDir: filepath.Join(a.AppDir, DefaultInboxName),
		UserName: setup.DefaultUserName,
	})
	if err != nil {
		return err
	}

	if err := a.Guard.Check(ctx); err != nil {
		return err
	}
	if argErr != nil {
		return argErr
	}
	if len(inv.Ignored) > 0 {
		logger.Debug(ctx, "ignoring unknown flags", zap.Strings("flags", inv.Ignored))
	}

	inbox, user := profile.InboxDir, profile.UserName
	if inv.InboxDir != "" {
		inbox = inv.InboxDir
	}
	if inv.UserName != "" {
		user = inv.UserName
	}
	if inv.SourceFile == "" {
		return pkgerrors.New(pkgerrors.MissingSourceFile).WithMessage("no source file given with " + args.FlagSource)
	}
	if fi, err := os.Stat(inbox); err != nil || !fi.IsDir() {
		return pkgerrors.Newf(pkgerrors.InboxNotFound, "inbox %s does not exist", inbox).WithDetail("inbox", inbox)
	}

	sub, err := submission.NewSubmission(inv.SourceFile, user, a.Draw)
	if err != nil {
		return err
	}
	ctx = context.WithValue(ctx, contextkey.User, sub.User)
	ctx = context.WithValue(ctx, contextkey.Task, sub.Task)
	logger.Info(ctx, "submission prepared", zap.Stringer("submission", sub), zap.String("inbox", inbox))

	placement, err := submission.Transfer(ctx, sub, inbox)
	if err != nil {
		return err
	}

	start := time.Now()
	waiter := result.Waiter{
		Timeout:        a.Settings.Timeout,
		PollInterval:   a.Settings.PollInterval,
		SettleInterval: a.Settings.SettleInterval,
	}
	if _, err := waiter.Wait(ctx, placement.ResultPath); err != nil {
		return err
	}

	payload, err := result.Read(placement.ResultPath)
	if err != nil {
		return err
	}
	if err := result.Report(a.Out, payload, time.Since(start)); err != nil {
		return pkgerrors.Internal(err)
	}
	logger.Info(ctx, "result reported", zap.String("summary", payload.Summary))
	return nil
}

func (a *App) reset(ctx context.Context) error {
	if err := store.Clear(a.ProfilePath()); err != nil {
		return pkgerrors.Wrapf(err, pkgerrors.ConfigResetFailed, "%v", err)
	}
	logger.Info(ctx, "configuration reset", zap.String("path", a.ProfilePath()))
	a.printLine("Configuration has been reset.")
	return nil
}

func (a *App) printLine(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(a.Out, format+"\n", args...)
}
