package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestLogger_Levels(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		name      string
		logger    Logger
		wantInfo  bool
		wantDebug bool
	}{
		{"quiet", Logger{}, false, false},
		{"verbose", Logger{Verbose: true}, true, false},
		{"debug", Logger{Debug: true}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			l := tt.logger
			l.Out, l.Err = &out, &errOut

			l.Infof("loaded %d bundle", 1)
			l.Debugf("path %s", "/tmp/b.json")
			l.Warnf("careful")
			l.Errorf("failed: %v", "boom")

			if got := strings.Contains(out.String(), "[info] loaded 1 bundle"); got != tt.wantInfo {
				t.Errorf("info shown = %v, want %v", got, tt.wantInfo)
			}
			if got := strings.Contains(out.String(), "[debug] path /tmp/b.json"); got != tt.wantDebug {
				t.Errorf("debug shown = %v, want %v", got, tt.wantDebug)
			}
			if !strings.Contains(errOut.String(), "[warn] careful") {
				t.Errorf("warning missing from %q", errOut.String())
			}
			if !strings.Contains(errOut.String(), "[error] failed: boom") {
				t.Errorf("error missing from %q", errOut.String())
			}
		})
	}
}
