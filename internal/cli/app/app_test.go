package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"autojudge/internal/cli/config"
	"autojudge/internal/cli/setup"
	"autojudge/internal/cli/store"
	"autojudge/internal/judgeproc"
	"autojudge/internal/testutil"
	pkgerrors "autojudge/pkg/errors"
)

type fakeProber struct {
	running bool
	calls   int
}

func (f *fakeProber) Running(context.Context, string) (bool, error) {
	f.calls++
	return f.running, nil
}

type fixture struct {
	app     *App
	out     *bytes.Buffer
	prober  *fakeProber
	prompts *int
	dir     string
	inbox   string
	source  string
}

func newFixture(t *testing.T, running bool) *fixture {
	t.Helper()
	dir := t.TempDir()
	inbox := filepath.Join(dir, "osd")
	if err := os.Mkdir(inbox, 0o755); err != nil {
		t.Fatalf("create inbox failed: %v", err)
	}
	appDir := filepath.Join(dir, "app")
	if err := store.Save(store.Path(appDir), store.Profile{InboxDir: inbox, UserName: "giang"}); err != nil {
		t.Fatalf("save profile failed: %v", err)
	}
	source := testutil.MustWriteFile(t, filepath.Join(dir, "src"), "sum.cpp", "int main() {}")

	out := &bytes.Buffer{}
	prober := &fakeProber{running: running}
	prompts := 0
	f := &fixture{
		out:     out,
		prober:  prober,
		prompts: &prompts,
		dir:     dir,
		inbox:   inbox,
		source:  source,
	}
	f.app = &App{
		Settings: config.Settings{
			JudgeProcess: "Themis",
			Timeout:      2 * time.Second,
			PollInterval: 10 * time.Millisecond,
			Quiet:        true,
		},
		AppDir: appDir,
		Out:    out,
		OpenPrompt: func() (setup.Prompter, error) {
			prompts++
			return setup.NewLinePrompter(strings.NewReader(inbox+"\nprompted\n"), out), nil
		},
		Guard: judgeproc.Guard{Name: "Themis", Prober: prober},
	}
	return f
}

// judge answers every submission that lands in the inbox with result.
func (f *fixture) judge(t *testing.T, result string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	t.Cleanup(func() {
		cancel()
		<-stopped
	})
	go func() {
		defer close(stopped)
		answered := make(map[string]bool)
		for ctx.Err() == nil {
			entries, _ := os.ReadDir(f.inbox)
			for _, e := range entries {
				name := e.Name()
				if e.IsDir() || strings.HasPrefix(name, ".") || answered[name] {
					continue
				}
				answered[name] = true
				logs := filepath.Join(f.inbox, "Logs")
				_ = os.MkdirAll(logs, 0o755)
				tmp := filepath.Join(logs, ".writing")
				_ = os.WriteFile(tmp, []byte(result), 0o644)
				_ = os.Rename(tmp, filepath.Join(logs, name+".log"))
			}
			time.Sleep(5 * time.Millisecond)
		}
	}()
}

func TestRunReportsResult(t *testing.T) {
	f := newFixture(t, true)
	f.judge(t, "SUM: 8.00\nTest01: ok\nTest02: wrong answer\n")

	err := f.app.Run(context.Background(), []string{"-src", f.source})
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, f.out.String())
	}

	lines := strings.Split(strings.TrimRight(f.out.String(), "\n"), "\n")
	testutil.AssertTrue(t, len(lines) >= 5, "report should have body, summary, elapsed and done lines")
	testutil.AssertEqual(t, lines[len(lines)-3], "SUM: 8.00")
	testutil.AssertTrue(t, strings.HasPrefix(lines[len(lines)-2], "Task approximately completed in 00:00:0"), "elapsed below the bound")
	testutil.AssertEqual(t, lines[len(lines)-1], "Done.")

	names := testutil.ListDir(t, f.inbox)
	var submitted string
	for _, n := range names {
		if strings.HasSuffix(n, "[giang][SUM].cpp") {
			submitted = n
		}
	}
	testutil.AssertTrue(t, submitted != "", "submission should be in the inbox")
	testutil.AssertEqual(t, *f.prompts, 0)
}

func TestRunOverridesInboxAndUser(t *testing.T) {
	f := newFixture(t, true)
	other := filepath.Join(f.dir, "other")
	if err := os.Mkdir(other, 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	f.inbox = other
	f.judge(t, "1.00\n")

	err := f.app.Run(context.Background(), []string{"-osd", other, "-user", "guest", "-src", f.source})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	found := false
	for _, n := range testutil.ListDir(t, other) {
		if strings.HasSuffix(n, "[guest][SUM].cpp") {
			found = true
		}
	}
	testutil.AssertTrue(t, found, "submission should use the overriding inbox and user")
}

func TestRunMissingInbox(t *testing.T) {
	f := newFixture(t, true)
	before := testutil.ListDir(t, f.dir)

	err := f.app.Run(context.Background(), []string{"-src", f.source, "-osd", filepath.Join(f.dir, "nope")})
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.InvalidArguments), "missing inbox is an argument error")
	testutil.AssertEqual(t, pkgerrors.ExitCode(err), pkgerrors.ExitInvalidArguments)

	after := testutil.ListDir(t, f.dir)
	testutil.AssertEqual(t, strings.Join(after, ","), strings.Join(before, ","))
	testutil.AssertEqual(t, len(testutil.ListDir(t, f.inbox)), 0)
}

func TestRunJudgeNotRunning(t *testing.T) {
	f := newFixture(t, false)

	err := f.app.Run(context.Background(), []string{"-src", f.source})
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.ProcessNotFound), "absent judge should abort")
	testutil.AssertEqual(t, pkgerrors.ExitCode(err), pkgerrors.ExitProcessNotFound)
	testutil.AssertEqual(t, f.prober.calls, 1)
	testutil.AssertEqual(t, len(testutil.ListDir(t, f.inbox)), 0)

	f.app.Diagnose(err)
	testutil.AssertTrue(t, strings.Contains(f.out.String(), "Invalid process ERROR: Themis is not running."), "diagnostic expected")
}

func TestRunProcessCheckedBeforeArguments(t *testing.T) {
	f := newFixture(t, false)
	err := f.app.Run(context.Background(), []string{"-src"})
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.ProcessNotFound), "judge check runs before argument validation")

	f.prober.running = true
	err = f.app.Run(context.Background(), []string{"-src"})
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.InvalidArguments), "odd argument count is invalid")
}

func TestRunMissingSourceFlag(t *testing.T) {
	f := newFixture(t, true)
	err := f.app.Run(context.Background(), []string{"-user", "x"})
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.MissingSourceFile), "source flag is mandatory")
	testutil.AssertEqual(t, pkgerrors.ExitCode(err), pkgerrors.ExitInvalidArguments)
	testutil.AssertTrue(t, strings.Contains(err.Error(), "-src"), "message names the missing flag")
}

func TestRunTimeout(t *testing.T) {
	f := newFixture(t, true)
	f.app.Settings.Timeout = 100 * time.Millisecond

	start := time.Now()
	err := f.app.Run(context.Background(), []string{"-src", f.source})
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.Timeout), "no judge answer should time out")
	testutil.AssertEqual(t, pkgerrors.ExitCode(err), pkgerrors.ExitTimeout)
	testutil.AssertTrue(t, time.Since(start) >= 100*time.Millisecond, "timeout honours the bound")

	f.out.Reset()
	f.app.Settings.Timeout = 600 * time.Second
	f.app.Diagnose(err)
	testutil.AssertTrue(t, strings.Contains(f.out.String(), "Timeout ERROR: Idleness Limit Exceeded."), "timeout diagnostic expected")
	testutil.AssertTrue(t, strings.Contains(f.out.String(), "no result after "), "elapsed time reported")
	testutil.AssertTrue(t, strings.Contains(f.out.String(), "Maximum time allowed: 600 seconds."), "bound reported in seconds")
}

func TestDiagnosePlainError(t *testing.T) {
	f := newFixture(t, true)
	f.app.Diagnose(errors.New("disk on fire"))
	testutil.AssertTrue(t, strings.Contains(f.out.String(), "ERROR: disk on fire."), "cause printed for uncoded errors")
	testutil.AssertTrue(t, strings.HasSuffix(f.out.String(), "The program will now be terminated.\n"), "termination line last")
}

func TestResetTriggersSetup(t *testing.T) {
	f := newFixture(t, true)
	f.judge(t, "2.00\n")

	if err := f.app.Run(context.Background(), []string{"-reset"}); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	_, ok, _ := store.Load(f.app.ProfilePath())
	testutil.AssertFalse(t, ok, "reset should delete the configuration")
	testutil.AssertEqual(t, f.prober.calls, 0)

	if err := f.app.Run(context.Background(), []string{"-src", f.source}); err != nil {
		t.Fatalf("run after reset failed: %v", err)
	}
	testutil.AssertEqual(t, *f.prompts, 1)
	testutil.AssertTrue(t, strings.Contains(f.out.String(), "First time setup is required."), "setup should run after reset")

	profile, ok, _ := store.Load(f.app.ProfilePath())
	testutil.AssertTrue(t, ok, "setup should persist the configuration")
	testutil.AssertEqual(t, profile.UserName, "prompted")
}

func TestConsecutiveRunsUseDistinctNames(t *testing.T) {
	f := newFixture(t, true)
	f.judge(t, "3.00\n")

	for i := 0; i < 2; i++ {
		if err := f.app.Run(context.Background(), []string{"-src", f.source}); err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
	}
	submissions := 0
	for _, n := range testutil.ListDir(t, f.inbox) {
		if strings.HasSuffix(n, "[giang][SUM].cpp") {
			submissions++
		}
	}
	testutil.AssertEqual(t, submissions, 2)
}

func TestBannerShownUnlessQuiet(t *testing.T) {
	f := newFixture(t, false)
	f.app.Settings.Quiet = false
	_ = f.app.Run(context.Background(), []string{"-src", f.source})
	testutil.AssertTrue(t, strings.HasPrefix(f.out.String(), "Starting AutoJudge - Themis OSD Utility"), "banner expected")
	testutil.AssertTrue(t, strings.Contains(f.out.String(), "-src <FILE_NAME> (mandatory)"), "usage expected")
}
