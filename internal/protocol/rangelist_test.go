package protocol

import (
	"reflect"
	"testing"

	"github.com/driftveil/raknet/internal/bitstream"
)

func TestRangeListCoalescesContiguousRuns(t *testing.T) {
	l := NewRangeList()
	for _, n := range []uint32{5, 1, 2, 3, 9, 7} {
		l.Add(n)
	}
	ranges := l.ranges()
	want := []numberRange{{1, 3}, {5, 5}, {7, 7}, {9, 9}}
	if !reflect.DeepEqual(ranges, want) {
		t.Fatalf("ranges() = %v, want %v", ranges, want)
	}
}

func TestRangeListRoundTrip(t *testing.T) {
	l := NewRangeList()
	input := []uint32{0, 1, 2, 3, 10, 20, 21, 22, 100}
	for _, n := range input {
		l.Add(n)
	}

	s := bitstream.New()
	if err := l.Encode(s); err != nil {
		t.Fatal(err)
	}

	got, err := DecodeRangeList(s)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, input) {
		t.Fatalf("DecodeRangeList() = %v, want %v", got, input)
	}
}

func TestRangeListEmpty(t *testing.T) {
	l := NewRangeList()
	s := bitstream.New()
	if err := l.Encode(s); err != nil {
		t.Fatal(err)
	}
	got, err := DecodeRangeList(s)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("DecodeRangeList() on empty list = %v, want empty", got)
	}
}
