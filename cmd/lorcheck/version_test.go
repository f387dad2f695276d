package main

import (
	"bytes"
	"runtime/debug"
	"strings"
	"testing"
)

func TestVersionCmd(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cmd := NewVersionCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"lorcheck version", "commit:", "built:"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got %s", want, out)
		}
	}
}

func TestResolveBuild(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		info *debug.BuildInfo
		want build
	}{
		{
			name: "no build info",
			info: nil,
			want: build{Version: "(devel)", Commit: "unknown", Date: "unknown"},
		},
		{
			name: "module version without vcs stamps",
			info: &debug.BuildInfo{Main: debug.Module{Version: "v1.2.0"}},
			want: build{Version: "v1.2.0", Commit: "unknown", Date: "unknown"},
		},
		{
			name: "vcs stamps are read and the commit shortened",
			info: &debug.BuildInfo{Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "0123456789abcdef"},
				{Key: "vcs.time", Value: "2026-10-17T09:30:00Z"},
				{Key: "vcs.modified", Value: "false"},
			}},
			want: build{Version: "(devel)", Commit: "0123456", Date: "2026-10-17T09:30:00Z"},
		},
		{
			name: "empty settings are ignored",
			info: &debug.BuildInfo{Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: ""}}},
			want: build{Version: "(devel)", Commit: "unknown", Date: "unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := resolveBuild(tt.info); got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}
