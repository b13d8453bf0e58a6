package runlen

// Sort sorts seq in non-decreasing order in place.
func Sort(seq []uint32) {
	for len(seq) >= 10 {
		lt, gt := partition(seq)
		if lt < len(seq)-gt {
			Sort(seq[:lt])
			seq = seq[gt:]
		} else {
			Sort(seq[gt:])
			seq = seq[:lt]
		}
	}
	sortSmall(seq)
}

func sortSmall(seq []uint32) {
	l := len(seq)
	if l > 6 {
		for i := 0; i+5 < l; i++ {
			if seq[i] > seq[i+5] {
				seq[i], seq[i+5] = seq[i+5], seq[i]
			}
		}
	}
	for i := 1; i < l; i++ {
		cur, j := seq[i], i-1
		for ; j >= 0 && cur < seq[j]; j-- {
			seq[j+1] = seq[j]
		}
		seq[j+1] = cur
	}
}

// partition splits seq around a median-of-three pivot:
// seq[:lt] < pivot, seq[lt:gt] == pivot, seq[gt:] > pivot.
// seq[lt:gt] is never empty.
func partition(seq []uint32) (lt, gt int) {
	l := len(seq)
	mid := seq[l/2]
	{
		a := seq[0]
		b := seq[l-1]
		if a > mid {
			a, mid = mid, a
		}
		if b < mid {
			mid = b
			if a > mid {
				mid = a
			}
		}
	}
	lt, gt = 0, l
	for i := 0; i < gt; {
		switch cur := seq[i]; {
		case cur < mid:
			seq[lt], seq[i] = cur, seq[lt]
			lt++
			i++
		case cur > mid:
			gt--
			seq[i], seq[gt] = seq[gt], cur
		default:
			i++
		}
	}
	return lt, gt
}

func IsSorted(seq []uint32) bool {
	for i := 1; i < len(seq); i++ {
		if seq[i] < seq[i-1] {
			return false
		}
	}
	return true
}
