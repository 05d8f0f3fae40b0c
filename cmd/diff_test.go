package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/pocketfuldev/artag/internal/registry"
)

func TestDiffCmdWiring(t *testing.T) {
	if !strings.HasPrefix(diffCmd.Use, "diff") {
		t.Errorf("expected diffCmd.Use to start with 'diff', got %q", diffCmd.Use)
	}
	if diffCmd.Flags().Lookup("commits") == nil {
		t.Error("expected a --commits flag")
	}
	if err := diffCmd.Args(diffCmd, []string{"model1"}); err == nil {
		t.Error("expected an error with only 1 argument")
	}
	if err := diffCmd.Args(diffCmd, []string{"model1", "v1"}); err != nil {
		t.Errorf("expected no error with 2 arguments, got %v", err)
	}
	if err := diffCmd.Args(diffCmd, []string{"model1", "v1", "v2"}); err != nil {
		t.Errorf("expected no error with 3 arguments, got %v", err)
	}
	if err := diffCmd.Args(diffCmd, []string{"model1", "v1", "v2", "extra"}); err == nil {
		t.Error("expected an error with 4 arguments")
	}
}

func TestCommitForVersion(t *testing.T) {
	rows := []registry.VersionSummary{
		{Version: "v1", Commit: "c1"},
		{Version: "v2", Commit: "c2"},
	}
	commit, ok := commitForVersion(rows, "v2")
	if !ok || commit != "c2" {
		t.Errorf("expected (c2, true), got (%q, %v)", commit, ok)
	}

	_, ok = commitForVersion(rows, "v9")
	if ok {
		t.Error("expected ok=false for an unknown version")
	}
}

func TestPreviousVersion(t *testing.T) {
	base := time.Unix(1700000000, 0)
	rows := []registry.VersionSummary{
		{Version: "v1", CreatedAt: base},
		{Version: "v2", CreatedAt: base.Add(time.Hour)},
		{Version: "v3", CreatedAt: base.Add(2 * time.Hour)},
	}

	if got := previousVersion(rows, "v3"); got != "v2" {
		t.Errorf("expected v2, got %q", got)
	}
	if got := previousVersion(rows, "v1"); got != "" {
		t.Errorf("expected \"\" for the earliest version, got %q", got)
	}
}

func TestBumpLabel(t *testing.T) {
	cases := map[int]string{0: "no change", 1: "downgrade", -1: "upgrade"}
	for cmp, want := range cases {
		if got := bumpLabel(cmp); got != want {
			t.Errorf("bumpLabel(%d) = %q, want %q", cmp, got, want)
		}
	}
}
