package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			var out, logs bytes.Buffer
			root := New(&logs, LogInfo).RootCommand()
			root.SetOut(&out)
			root.SetErr(&logs)
			root.SetArgs([]string{"completion", shell})
			if err := root.ExecuteContext(context.Background()); err != nil {
				t.Fatalf("completion %s: %v", shell, err)
			}
			if !strings.Contains(out.String(), "pkgtree") {
				t.Errorf("completion %s script does not mention pkgtree", shell)
			}
		})
	}
}

func TestCompletionCommandRejectsUnknownShell(t *testing.T) {
	var out, logs bytes.Buffer
	root := New(&logs, LogInfo).RootCommand()
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs([]string{"completion", "tcsh"})
	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Error("completion tcsh succeeded, want error")
	}
}
