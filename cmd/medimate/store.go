package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "medimate")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "medimate")
}

func userIDPath() string { return filepath.Join(cfgDir(), "user_id") }

func saveUserID(id int64) error {
	if err := os.MkdirAll(cfgDir(), 0o700); err != nil {
		return err
	}
	return os.WriteFile(userIDPath(), []byte(strconv.FormatInt(id, 10)), 0o600)
}

func loadUserID() (int64, error) {
	b, err := os.ReadFile(userIDPath())
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("bad user id in %s", userIDPath())
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
