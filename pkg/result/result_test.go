package result

import (
	"errors"
	"testing"
)

func TestResult_OkAndErr(t *testing.T) {
	if v, err := Ok("work").Get(); err != nil || v != "work" {
		t.Errorf("Get() = %q, %v", v, err)
	}

	boom := errors.New("boom")
	v, err := Err[string](boom).Get()
	if !errors.Is(err, boom) {
		t.Errorf("Get() error = %v, want %v", err, boom)
	}
	if v != "" {
		t.Errorf("Get() value = %q, want zero value", v)
	}
}
