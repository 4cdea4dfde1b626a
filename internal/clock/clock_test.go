package clock

import (
	"testing"
	"time"
)

func TestReal_Now(t *testing.T) {
	before := time.Now()
	result := Or(nil).Now()
	after := time.Now()

	if result.Before(before) || result.After(after) {
		t.Errorf("Real.Now() returned %v, expected between %v and %v", result, before, after)
	}
}

func TestMock_Now(t *testing.T) {
	mockTime := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	mock := NewMock(mockTime)

	if got := mock.Now(); !got.Equal(mockTime) {
		t.Errorf("Mock.Now() returned %v, expected exactly %v", got, mockTime)
	}
	if got := mock.Now(); !got.Equal(mockTime) {
		t.Errorf("non-ticking Mock moved to %v", got)
	}
}

func TestMock_AdvanceAndSet(t *testing.T) {
	mockTime := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	mock := NewMock(mockTime)

	mock.Advance(time.Hour)
	if got, want := mock.Now(), mockTime.Add(time.Hour); !got.Equal(want) {
		t.Errorf("After Advance, Now() = %v, expected %v", got, want)
	}

	newTime := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.Set(newTime)
	if got := mock.Now(); !got.Equal(newTime) {
		t.Errorf("After Set, Now() = %v, expected %v", got, newTime)
	}
}

func TestTicking_StrictlyIncreasing(t *testing.T) {
	mock := NewTicking(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC), time.Nanosecond)

	first := Stamp(mock.Now())
	second := Stamp(mock.Now())
	if !(first < second) {
		t.Errorf("stamps not ordered: %s then %s", first, second)
	}
}

func TestStamp(t *testing.T) {
	ts := time.Date(2025, 6, 15, 12, 30, 45, 7, time.UTC)
	if got, want := Stamp(ts), "20250615-123045.000000007"; got != want {
		t.Errorf("Stamp() = %q, want %q", got, want)
	}
}

func TestOr(t *testing.T) {
	if _, ok := Or(nil).(Real); !ok {
		t.Error("Or(nil) should return Real")
	}
	m := NewMock(time.Time{})
	if Or(m) != Clock(m) {
		t.Error("Or(m) should return m")
	}
}
