package envutil

import (
	"testing"
	"time"
)

func TestBool(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_BOOL", "on")
	if !Bool("ENVUTIL_TEST_BOOL", false) {
		t.Fatalf("Bool(on) should be true")
	}
	t.Setenv("ENVUTIL_TEST_BOOL", "off")
	if Bool("ENVUTIL_TEST_BOOL", true) {
		t.Fatalf("Bool(off) should be false")
	}
	t.Setenv("ENVUTIL_TEST_BOOL", "maybe")
	if !Bool("ENVUTIL_TEST_BOOL", true) {
		t.Fatalf("Bool(maybe) should fall back")
	}
}

func TestDuration(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_DUR", "250ms")
	if got := Duration("ENVUTIL_TEST_DUR", time.Second); got != 250*time.Millisecond {
		t.Fatalf("Duration: got=%s", got)
	}
	t.Setenv("ENVUTIL_TEST_DUR", "7")
	if got := Duration("ENVUTIL_TEST_DUR", time.Second); got != 7*time.Second {
		t.Fatalf("Duration seconds: got=%s", got)
	}
}

func TestStringAndFloat(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_STR", "")
	if got := String("ENVUTIL_TEST_STR", "def"); got != "def" {
		t.Fatalf("String: got=%q", got)
	}
	t.Setenv("ENVUTIL_TEST_FLOAT", "0.25")
	if got := Float("ENVUTIL_TEST_FLOAT", 1); got != 0.25 {
		t.Fatalf("Float: got=%v", got)
	}
}
