package cmd

import (
	"strings"
	"testing"

	"github.com/pocketfuldev/artag/internal/registry"
)

func TestSuggestCmdWiring(t *testing.T) {
	if !strings.HasPrefix(suggestCmd.Use, "suggest") {
		t.Errorf("expected suggestCmd.Use to start with 'suggest', got %q", suggestCmd.Use)
	}
	if suggestCmd.Flags().Lookup("register") == nil {
		t.Error("expected a --register flag")
	}
	if err := suggestCmd.Args(suggestCmd, []string{}); err == nil {
		t.Error("expected an error with 0 arguments")
	}
	if err := suggestCmd.Args(suggestCmd, []string{"model1"}); err != nil {
		t.Errorf("expected no error with 1 argument, got %v", err)
	}
}

func TestBumpPartForBranch(t *testing.T) {
	cases := map[string]registry.BumpPart{
		"feature/new-thing": registry.BumpMinor,
		"feat/new-thing":    registry.BumpMinor,
		"hotfix/urgent":     registry.BumpPatch,
		"fix/urgent":        registry.BumpPatch,
		"bugfix/urgent":     registry.BumpPatch,
		"chore/cleanup":     registry.BumpPatch,
		"main":              registry.BumpPatch,
		"FEATURE/Uppercase": registry.BumpMinor,
	}
	for branch, want := range cases {
		if got := bumpPartForBranch(branch); got != want {
			t.Errorf("bumpPartForBranch(%q) = %q, want %q", branch, got, want)
		}
	}
}
