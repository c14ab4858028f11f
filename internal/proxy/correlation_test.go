package proxy

import (
	"testing"
	"time"
)

func TestTrackerResolve(t *testing.T) {
	tr := newTracker()
	start := time.Now()
	tr.Track(`1`, start)
	tr.Track(`"abc"`, start.Add(time.Millisecond))

	if tr.Len() != 2 {
		t.Fatalf("len = %d", tr.Len())
	}

	got, ok := tr.Resolve(`1`)
	if !ok || !got.Equal(start) {
		t.Fatalf("resolve 1: %v %v", got, ok)
	}
	if tr.Len() != 1 {
		t.Fatal("resolve did not remove the entry")
	}
	if _, ok := tr.Resolve(`1`); ok {
		t.Fatal("second resolve must miss")
	}
}

func TestTrackerUnknownID(t *testing.T) {
	tr := newTracker()
	if _, ok := tr.Resolve(`99`); ok {
		t.Fatal("unknown id resolved")
	}
}

func TestTrackerDuplicateOverwrites(t *testing.T) {
	tr := newTracker()
	first := time.Now()
	second := first.Add(5 * time.Second)
	tr.Track(`7`, first)
	tr.Track(`7`, second)

	if tr.Len() != 1 {
		t.Fatalf("len = %d, want 1", tr.Len())
	}
	got, ok := tr.Resolve(`7`)
	if !ok || !got.Equal(second) {
		t.Fatalf("resolve = %v, want last write", got)
	}
}

func TestTrackerNumericAndStringKeysDistinct(t *testing.T) {
	tr := newTracker()
	tr.Track(`7`, time.Now())
	if _, ok := tr.Resolve(`"7"`); ok {
		t.Fatal(`"7" must not resolve the entry for 7`)
	}
	if _, ok := tr.Resolve(`7`); !ok {
		t.Fatal("numeric key lost")
	}
}
