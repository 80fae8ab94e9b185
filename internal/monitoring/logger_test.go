package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})
	Logf("run %s finished with %d points", "run-1", 25)
	if got != "run run-1 finished with 25 points" {
		t.Errorf("captured %q", got)
	}

	// nil installs a no-op logger rather than panicking.
	SetLogger(nil)
	Logf("dropped on the floor")
}
