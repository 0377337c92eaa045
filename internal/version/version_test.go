package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	oldV, oldD := Version, Dirty
	t.Cleanup(func() { Version, Dirty = oldV, oldD })

	Version, Dirty = "1.2.0", "false"
	if got := String(); got != "1.2.0" {
		t.Errorf("String() = %q", got)
	}
	Dirty = "true"
	if got := String(); got != "1.2.0-dirty" {
		t.Errorf("String() = %q", got)
	}
	if !Get().Dirty {
		t.Error("expected Dirty in Info")
	}
}

func TestFull(t *testing.T) {
	full := Full()
	if !strings.HasPrefix(full, "dorar ") || !strings.Contains(full, "OS/Arch:") {
		t.Errorf("unexpected Full() output %q", full)
	}
}
