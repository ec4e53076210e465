package env

import (
	"strings"
	"testing"
)

func TestMergeOverlaysAndExpands(t *testing.T) {
	t.Setenv("TASKMASTER_TEST_BASE", "fromOS")
	b := NewBase()

	out := b.Merge(Var{"GREETING": "hi ${NAME}", "NAME": "bob"})

	got := map[string]string{}
	for _, kv := range out {
		i := strings.IndexByte(kv, '=')
		got[kv[:i]] = kv[i+1:]
	}
	if got["TASKMASTER_TEST_BASE"] != "fromOS" {
		t.Fatalf("expected base OS env to be present, got %q", got["TASKMASTER_TEST_BASE"])
	}
	if got["GREETING"] != "hi bob" {
		t.Fatalf("expected ${NAME} expansion, got %q", got["GREETING"])
	}
}

func TestMergeOverrideWinsOverBase(t *testing.T) {
	t.Setenv("TASKMASTER_TEST_OVERRIDE", "os-value")
	b := NewBase()
	out := b.Merge(Var{"TASKMASTER_TEST_OVERRIDE": "config-value"})

	found := false
	for _, kv := range out {
		if kv == "TASKMASTER_TEST_OVERRIDE=config-value" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected configured override to win, got %v", out)
	}
}

