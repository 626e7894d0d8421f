package main

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"
	"rsc.io/script"
	"rsc.io/script/scripttest"
)

// TestScripts runs the end-to-end scenarios in testdata/script. Each file is
// a txtar archive: the comment is the script, the files are extracted into a
// fresh work directory first. The mentor command runs the CLI in-process
// against that directory.
func TestScripts(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "script", "*.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no scripts found")
	}

	engine := &script.Engine{
		Cmds:  script.DefaultCmds(),
		Conds: script.DefaultConds(),
	}
	engine.Cmds["mentor"] = mentorScriptCmd()

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".txt")
		t.Run(name, func(t *testing.T) {
			ar, err := txtar.ParseFile(file)
			if err != nil {
				t.Fatal(err)
			}
			work := t.TempDir()
			s, err := script.NewState(context.Background(), work, []string{"HOME=" + work})
			if err != nil {
				t.Fatal(err)
			}
			if err := s.ExtractFiles(ar); err != nil {
				t.Fatal(err)
			}
			scripttest.Run(t, engine, s, file, bytes.NewReader(ar.Comment))
		})
	}
}

func mentorScriptCmd() script.Cmd {
	return script.Command(
		script.CmdUsage{
			Summary: "run the mentor CLI in the script's working directory",
			Args:    "args...",
		},
		func(s *script.State, args ...string) (script.WaitFunc, error) {
			var stdout, stderr bytes.Buffer
			a := newApp(strings.NewReader(""), &stdout, &stderr)
			a.workDir = s.Getwd()
			a.homeDir = s.Getwd()
			a.userConfigDir = s.Getwd()
			err := a.execute(s.Context(), args)
			if err != nil {
				// Match what run prints so scripts can check messages.
				fmt.Fprintf(&stderr, "Error: %v\n", err)
			}
			return func(*script.State) (string, string, error) {
				return stdout.String(), stderr.String(), err
			}, nil
		},
	)
}
