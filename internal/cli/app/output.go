package app

import (
	"time"

	"autojudge/internal/cli/args"
	pkgerrors "autojudge/pkg/errors"
)

func (a *App) printBanner() {
	a.printLine("Starting AutoJudge - Themis OSD Utility ...")
	a.printLine("Copyright (C) %d, AutoJudge authors.", time.Now().Year())
	a.printLine("")
	for _, line := range args.Usage() {
		a.printLine("%s", line)
	}
}

// Diagnose prints the one-shot message for a terminal error.
func (a *App) Diagnose(err error) {
	if err == nil {
		return
	}
	e := pkgerrors.GetError(err)
	code := e.Code
	switch code.Kind() {
	case pkgerrors.InvalidArguments:
		a.printLine("Argument ERROR: Invalid arguments.")
		a.printLine("%s", err.Error())
		for _, line := range args.Usage() {
			a.printLine("  %s", line)
		}
	case pkgerrors.ProcessNotFound:
		if code == pkgerrors.ProcessProbeFail {
			a.printLine("Invalid process ERROR: %s.", err.Error())
		} else {
			a.printLine("Invalid process ERROR: %s is not running.", a.Guard.Name)
		}
	case pkgerrors.ConfigSetupFailure:
		a.printLine("Setup ERROR: %s.", err.Error())
	case pkgerrors.CopyFailure:
		a.printLine("Copy ERROR: %s.", err.Error())
	case pkgerrors.Timeout:
		a.printLine("Timeout ERROR: Idleness Limit Exceeded.")
		a.printLine("%s.", e.Error())
		a.printLine("Maximum time allowed: %d seconds.", int64(a.Settings.Timeout/time.Second))
	case pkgerrors.ReadFailure:
		a.printLine("Read ERROR: %s.", err.Error())
	default:
		if e.Err != nil {
			a.printLine("ERROR: %s.", e.Err.Error())
		} else {
			a.printLine("ERROR: %s.", e.Error())
		}
	}
	a.printLine("The program will now be terminated.")
}
