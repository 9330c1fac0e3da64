package clock

import (
	"testing"
	"time"
)

func TestFake_SleepAdvances(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f := NewFake(start)

	f.Sleep(time.Second)
	f.Sleep(2 * time.Second)
	f.Advance(time.Minute)

	if got := f.Now(); !got.Equal(start.Add(time.Minute + 3*time.Second)) {
		t.Errorf("Now() = %v", got)
	}
	sleeps := f.Sleeps()
	if len(sleeps) != 2 || sleeps[0] != time.Second || sleeps[1] != 2*time.Second {
		t.Errorf("Sleeps() = %v", sleeps)
	}
}

func TestReal_Now(t *testing.T) {
	before := time.Now()
	got := Real().Now()
	if got.Before(before) {
		t.Errorf("Real().Now() = %v is before %v", got, before)
	}
}
