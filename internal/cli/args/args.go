package args

import (
	"strings"

	pkgerrors "autojudge/pkg/errors"
)

// Flags as shown in the usage text. Each takes exactly one value.
const (
	FlagSource = "-src"
	FlagInbox  = "-osd"
	FlagUser   = "-user"
	FlagReset  = "-reset"
)

var aliases = map[string]string{
	"src":         FlagSource,
	"source-file": FlagSource,
	"osd":         FlagInbox,
	"inbox-dir":   FlagInbox,
	"user":        FlagUser,
	"user-name":   FlagUser,
}

// Invocation is what the command line asked for. Empty fields fall back to
// the stored configuration.
type Invocation struct {
	Reset      bool
	SourceFile string
	InboxDir   string
	UserName   string
	Ignored    []string
}

// Parse reads flag/value pairs in any order. A lone reset flag short-circuits.
// An odd or zero argument count still returns the Invocation so the caller can
// decide when to report the error.
func Parse(argv []string) (Invocation, error) {
	var inv Invocation
	if len(argv) == 1 && canonical(argv[0]) == "reset" {
		inv.Reset = true
		return inv, nil
	}
	if len(argv) == 0 || len(argv)%2 == 1 {
		return inv, pkgerrors.Newf(pkgerrors.OddArgumentCount, "expected flag/value pairs, got %d arguments", len(argv))
	}

	for i := 0; i < len(argv); i += 2 {
		flag, value := argv[i], argv[i+1]
		switch aliases[canonical(flag)] {
		case FlagSource:
			inv.SourceFile = value
		case FlagInbox:
			inv.InboxDir = value
		case FlagUser:
			inv.UserName = value
		default:
			inv.Ignored = append(inv.Ignored, flag)
		}
	}
	return inv, nil
}

// canonical strips one or two leading dashes and lower-cases the flag.
func canonical(flag string) string {
	flag = strings.TrimPrefix(flag, "-")
	flag = strings.TrimPrefix(flag, "-")
	return strings.ToLower(flag)
}

// Usage lists the accepted flags, one per line.
func Usage() []string {
	return []string{
		FlagSource + " <FILE_NAME> (mandatory) - The path of the source code file to be copied.",
		FlagInbox + " <FOLDER_PATH> - Custom Online Submission Directory.",
		FlagUser + " <USER_NAME> - Custom user name in Themis",
		FlagReset + " - Delete the saved configuration and run first time setup again.",
	}
}
