// Package runlen sorts uint32 sequences and folds them into weighted
// run-length counts.
//
// A run is opened whenever an element differs from the previously tracked
// value. The tracked value starts at zero, so with the default Sentinel
// policy leading zero elements never open a run and are not counted at
// all: Count([]uint32{0, 0, 0}) is empty. The Runs policy always opens a
// run at the first element instead.
package runlen

import "fmt"

const DefaultWeight = 3

// SelfCheckLen is the length of the all-zero sequence used by SelfCheck.
const SelfCheckLen = 100

const sentinel uint32 = 0

type Policy uint8

const (
	Sentinel Policy = iota
	Runs
)

func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "sentinel":
		return Sentinel, nil
	case "runs":
		return Runs, nil
	default:
		return Sentinel, fmt.Errorf("unknown policy %q", s)
	}
}

func (p Policy) String() string {
	switch p {
	case Sentinel:
		return "sentinel"
	case Runs:
		return "runs"
	default:
		return fmt.Sprintf("Policy(%d)", uint8(p))
	}
}

// Counts holds one entry per run, each Weight times the run length. Entries
// are 64-bit so no uint32 weight can wrap them.
type Counts []uint64

func (c Counts) Sum() uint64 {
	var s uint64
	for _, v := range c {
		s += v
	}
	return s
}

type Counter struct {
	Weight uint32
	Policy Policy
}

var Default = Counter{Weight: DefaultWeight, Policy: Sentinel}

func (c Counter) opens(i int, cur, prev uint32) bool {
	return cur != prev || i == 0 && c.Policy == Runs
}

// Count sorts seq in place and folds it.
func (c Counter) Count(seq []uint32) Counts {
	Sort(seq)
	return c.Fold(seq)
}

// Fold folds an already sorted sequence. seq is not modified.
func (c Counter) Fold(sorted []uint32) Counts {
	counts := make(Counts, 0, len(sorted))
	prev := sentinel
	for i, cur := range sorted {
		if c.opens(i, cur, prev) {
			prev = cur
			counts = append(counts, uint64(c.Weight))
		} else if len(counts) > 0 {
			counts[len(counts)-1] += uint64(c.Weight)
		}
	}
	return counts
}

// Compact sorts seq and packs the value of every run into its prefix.
// distinct aliases seq; distinct[i] is the value counted by counts[i].
func (c Counter) Compact(seq []uint32) (distinct []uint32, counts Counts) {
	Sort(seq)
	counts = make(Counts, 0, len(seq))
	prev, w := sentinel, 0
	for r := 0; r < len(seq); r++ {
		cur := seq[r]
		if c.opens(r, cur, prev) {
			prev = cur
			seq[w] = cur
			w++
			counts = append(counts, uint64(c.Weight))
		} else if w > 0 {
			counts[w-1] += uint64(c.Weight)
		}
	}
	return seq[:w], counts
}

func Count(seq []uint32) Counts {
	return Default.Count(seq)
}

func Fold(sorted []uint32) Counts {
	return Default.Fold(sorted)
}

func Compact(seq []uint32) ([]uint32, Counts) {
	return Default.Compact(seq)
}

// SelfCheck counts SelfCheckLen zeros. Every element equals the sentinel,
// so the result is empty.
func SelfCheck() Counts {
	seq := make([]uint32, SelfCheckLen)
	return Count(seq)
}
