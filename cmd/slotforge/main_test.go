package main

import (
	"errors"
	"testing"
)

func TestResolveConfig(t *testing.T) {
	if _, err := resolveConfig("", ""); !errors.Is(err, errUsage) {
		t.Errorf("no args: got %v, want errUsage", err)
	}

	cfg, err := resolveConfig("", "test.db")
	if err != nil {
		t.Fatalf("db path: %v", err)
	}
	if cfg.DBPath != "test.db" {
		t.Errorf("DBPath: got %q, want %q", cfg.DBPath, "test.db")
	}
}
