package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the configuration record's file name inside the app data dir.
const FileName = "autojudge_config.json"

// Profile is the persisted configuration: where the judge's inbox is and
// which user name submissions are filed under.
type Profile struct {
	InboxDir string `json:"OSD_DIR"`
	UserName string `json:"USER_NAME"`
}

// Path returns the record location under appDir.
func Path(appDir string) string {
	return filepath.Join(appDir, FileName)
}

// Load reads the record. ok is false when no record has been written yet.
func Load(path string) (profile Profile, ok bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return profile, false, nil
		}
		return profile, false, fmt.Errorf("read config failed: %w", err)
	}
	if err := json.Unmarshal(data, &profile); err != nil {
		return profile, false, fmt.Errorf("parse config failed: %w", err)
	}
	return profile, true, nil
}

func Save(path string, profile Profile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir failed: %w", err)
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal config failed: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write config failed: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write config failed: %w", err)
	}
	return nil
}

func Clear(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove config failed: %w", err)
	}
	return nil
}
