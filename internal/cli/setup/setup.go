package setup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"autojudge/internal/cli/store"
	pkgerrors "autojudge/pkg/errors"
	"autojudge/pkg/utils/logger"

	"github.com/google/shlex"
	"go.uber.org/zap"
)

// DefaultUserName is used when the operator gives no user name.
const DefaultUserName = "AutoJudge"

const (
	inboxLabel = "Default Themis OSD: "
	userLabel  = "Username: "
)

// Defaults are the answers used for empty or missing input.
type Defaults struct {
	InboxDir string
	UserName string
}

// Ensure returns the stored profile, running first time setup when none
// exists yet. The prompter is only opened for first time setup. On failure
// nothing is written, so the next run asks again.
func Ensure(ctx context.Context, path string, out io.Writer, open func() (Prompter, error), defaults Defaults) (store.Profile, error) {
	profile, ok, err := store.Load(path)
	if err != nil {
		return profile, pkgerrors.Wrapf(err, pkgerrors.ConfigReadFailed, "%v", err).WithDetail("path", path)
	}
	if ok {
		return profile, nil
	}

	logger.Info(ctx, "configuration missing, running first time setup", zap.String("path", path))
	_, _ = fmt.Fprintln(out, "First time setup is required.")

	p, err := open()
	if err != nil {
		return profile, pkgerrors.Wrapf(err, pkgerrors.ConfigSetupFailure, "open prompt failed: %v", err)
	}
	defer p.Close()

	inbox, err := ask(p, inboxLabel, defaults.InboxDir)
	if err != nil {
		return profile, err
	}
	inbox = UnquotePath(inbox)
	if err := os.MkdirAll(inbox, 0o755); err != nil {
		return profile, pkgerrors.Wrapf(err, pkgerrors.ConfigSetupFailure, "create inbox directory failed: %v", err).
			WithDetail("inbox", inbox)
	}

	user, err := ask(p, userLabel, defaults.UserName)
	if err != nil {
		return profile, err
	}

	profile = store.Profile{InboxDir: inbox, UserName: user}
	if err := store.Save(path, profile); err != nil {
		return profile, pkgerrors.Wrapf(err, pkgerrors.ConfigWriteFailed, "%v", err).WithDetail("path", path)
	}
	logger.Info(ctx, "configuration saved", zap.String("inbox", inbox), zap.String("user", user))
	return profile, nil
}

func ask(p Prompter, label, fallback string) (string, error) {
	answer, err := p.Prompt(label)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", pkgerrors.Wrapf(err, pkgerrors.ConfigSetupFailure, "%v", err)
	}
	if answer == "" {
		return fallback, nil
	}
	return answer, nil
}

// UnquotePath undoes the quoting a terminal adds when a folder is dragged in
// or pasted, e.g. '/srv/my osd' or /srv/my\ osd. Anything that does not
// parse as exactly one shell word is returned unchanged.
func UnquotePath(answer string) string {
	if runtime.GOOS == "windows" {
		// Backslash is the separator there; only strip "Copy as path" quotes.
		if len(answer) >= 2 && strings.HasPrefix(answer, `"`) && strings.HasSuffix(answer, `"`) {
			return answer[1 : len(answer)-1]
		}
		return answer
	}
	if !strings.ContainsAny(answer, `'"\`) {
		return answer
	}
	words, err := shlex.Split(answer)
	if err != nil || len(words) != 1 {
		return answer
	}
	return words[0]
}
