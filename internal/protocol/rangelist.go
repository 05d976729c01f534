package protocol

import (
	"sort"

	"github.com/driftveil/raknet/internal/bitstream"
)

// RangeList run-length-encodes a sorted set of reliable message numbers into
// contiguous [min, max] ranges for the ACK datagram, so a long burst of
// consecutive acks costs a handful of bytes instead of one entry per number.
type RangeList struct {
	numbers []uint32
}

// NewRangeList returns an empty range list.
func NewRangeList() *RangeList {
	return &RangeList{}
}

// Add inserts a message number to be acknowledged.
func (l *RangeList) Add(n uint32) {
	l.numbers = append(l.numbers, n)
}

// Len reports how many message numbers are queued, not how many ranges they
// compress to.
func (l *RangeList) Len() int {
	return len(l.numbers)
}

// Reset empties the list for reuse.
func (l *RangeList) Reset() {
	l.numbers = l.numbers[:0]
}

type numberRange struct {
	min, max uint32
}

// ranges sorts and coalesces the queued numbers into contiguous runs.
func (l *RangeList) ranges() []numberRange {
	if len(l.numbers) == 0 {
		return nil
	}
	sorted := append([]uint32(nil), l.numbers...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	ranges := make([]numberRange, 0, len(sorted))
	cur := numberRange{min: sorted[0], max: sorted[0]}
	for _, n := range sorted[1:] {
		if n == cur.max || n == cur.max+1 {
			if n > cur.max {
				cur.max = n
			}
			continue
		}
		ranges = append(ranges, cur)
		cur = numberRange{min: n, max: n}
	}
	ranges = append(ranges, cur)
	return ranges
}

// Encode writes the range list to the stream as: a 16-bit range count,
// followed by one entry per range (a 1-bit max-equals-min flag, a 32-bit
// min, and an optional 32-bit max).
func (l *RangeList) Encode(s *bitstream.BitStream) error {
	ranges := l.ranges()
	if err := s.WriteU16(uint16(len(ranges))); err != nil {
		return err
	}
	for _, r := range ranges {
		if err := s.WriteBool(r.min == r.max); err != nil {
			return err
		}
		if err := s.WriteU32(r.min); err != nil {
			return err
		}
		if r.min != r.max {
			if err := s.WriteU32(r.max); err != nil {
				return err
			}
		}
	}
	return nil
}

// DecodeRangeList reads a range list off the stream and expands it back into
// its individual message numbers.
func DecodeRangeList(s *bitstream.BitStream) ([]uint32, error) {
	count, err := s.ReadU16()
	if err != nil {
		return nil, err
	}

	var numbers []uint32
	for i := uint16(0); i < count; i++ {
		maxEqualsMin, err := s.ReadBool()
		if err != nil {
			return nil, err
		}
		min, err := s.ReadU32()
		if err != nil {
			return nil, err
		}
		max := min
		if !maxEqualsMin {
			max, err = s.ReadU32()
			if err != nil {
				return nil, err
			}
		}
		for n := min; n <= max; n++ {
			numbers = append(numbers, n)
			if n == max {
				break
			}
		}
	}
	return numbers, nil
}
