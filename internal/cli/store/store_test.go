package store

import (
	"os"
	"path/filepath"
	"testing"

	"autojudge/internal/testutil"
)

func TestSaveLoadClear(t *testing.T) {
	path := Path(filepath.Join(t.TempDir(), "AutoJudge"))

	_, ok, err := Load(path)
	if err != nil {
		t.Fatalf("load missing failed: %v", err)
	}
	testutil.AssertFalse(t, ok, "missing record should not be present")

	want := Profile{InboxDir: `C:\OSD`, UserName: "giang"}
	if err := Save(path, want); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, ok, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	testutil.AssertTrue(t, ok, "saved record should be present")
	testutil.AssertEqual(t, got, want)

	if err := Clear(path); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	_, ok, _ = Load(path)
	testutil.AssertFalse(t, ok, "cleared record should be gone")
	if err := Clear(path); err != nil {
		t.Fatalf("clearing twice should be a no-op: %v", err)
	}
}

func TestRecordLayout(t *testing.T) {
	path := Path(t.TempDir())
	if err := Save(path, Profile{InboxDir: "/srv/osd", UserName: "u"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var raw map[string]interface{}
	testutil.MustUnmarshalJSON(t, data, &raw)
	testutil.AssertEqual(t, len(raw), 2)
	testutil.AssertEqual(t, raw["OSD_DIR"], "/srv/osd")
	testutil.AssertEqual(t, raw["USER_NAME"], "u")
}

func TestLoadCorrupt(t *testing.T) {
	path := testutil.MustWriteFile(t, t.TempDir(), FileName, "{not json")
	_, ok, err := Load(path)
	testutil.AssertFalse(t, ok, "corrupt record is not usable")
	testutil.AssertTrue(t, err != nil, "corrupt record should fail to parse")
}
