package cmd

import (
	"strings"
	"testing"

	"github.com/pocketfuldev/artag/internal/registry"
)

func TestChangelogCmdWiring(t *testing.T) {
	if !strings.HasPrefix(changelogCmd.Use, "changelog") {
		t.Errorf("expected changelogCmd.Use to start with 'changelog', got %q", changelogCmd.Use)
	}
	flags := []string{"format", "conventional-commits", "output", "group-by-type"}
	for _, name := range flags {
		if changelogCmd.Flags().Lookup(name) == nil {
			t.Errorf("expected a --%s flag", name)
		}
	}
	if err := changelogCmd.Args(changelogCmd, []string{}); err == nil {
		t.Error("expected an error with 0 arguments")
	}
	if err := changelogCmd.Args(changelogCmd, []string{"model1"}); err != nil {
		t.Errorf("expected no error with 1 argument, got %v", err)
	}
}

func TestDetectCommitType(t *testing.T) {
	cases := map[string]string{
		"feat: add new endpoint":     "feat",
		"Add retry logic":            "feat",
		"fix: nil pointer":           "fix",
		"squash a bug in the parser": "fix",
		"update docs for install":    "docs",
		"refactor the collector":     "refactor",
		"add unit tests":             "test",
		"chore: bump deps":           "chore",
		"something unrelated":        "other",
	}
	for msg, want := range cases {
		if got := detectCommitType(msg); got != want {
			t.Errorf("detectCommitType(%q) = %q, want %q", msg, got, want)
		}
	}
}

func TestParseCommitConventional(t *testing.T) {
	prev := changelogConventional
	changelogConventional = true
	defer func() { changelogConventional = prev }()

	e := parseCommit(registry.CommitRef{SHA: "abc123", Subject: "feat(api)!: support streaming"})
	if e.Type != "feat" || e.Scope != "api" || !e.Breaking || e.Description != "support streaming" {
		t.Errorf("unexpected parse result: %+v", e)
	}
}

func TestParseCommitConventionalFallsBackWhenUnmatched(t *testing.T) {
	prev := changelogConventional
	changelogConventional = true
	defer func() { changelogConventional = prev }()

	e := parseCommit(registry.CommitRef{SHA: "abc123", Subject: "a plain message"})
	if e.Type != "other" {
		t.Errorf("expected fallback type 'other', got %q", e.Type)
	}
}

func TestParseCommitNonConventional(t *testing.T) {
	prev := changelogConventional
	changelogConventional = false
	defer func() { changelogConventional = prev }()

	e := parseCommit(registry.CommitRef{SHA: "abc123", Subject: "fix: off by one"})
	if e.Type != "fix" {
		t.Errorf("expected type 'fix', got %q", e.Type)
	}
}

func TestFormatChangelogEntry(t *testing.T) {
	out := formatChangelogEntry(changelogEntry{Scope: "api", Description: "support streaming", Hash: "abcdef123456", Breaking: true})
	if !strings.Contains(out, "**api**") || !strings.Contains(out, "BREAKING") || !strings.Contains(out, "abcdef12") {
		t.Errorf("unexpected formatted entry: %q", out)
	}
}

func TestFormatChangelogText(t *testing.T) {
	out := formatChangelogText("Changelog for model1", []changelogEntry{{Description: "did a thing"}})
	if !strings.Contains(out, "Changelog for model1") || !strings.Contains(out, "did a thing") {
		t.Errorf("unexpected text output: %q", out)
	}
}

func TestFormatChangelogJSON(t *testing.T) {
	out := formatChangelogJSON("title", []changelogEntry{{Type: "feat", Description: "thing", Hash: "abc"}})
	if !strings.Contains(out, `"type": "feat"`) || !strings.Contains(out, `"description": "thing"`) {
		t.Errorf("unexpected json output: %q", out)
	}
}
