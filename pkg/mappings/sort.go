package mappings

// The mappings string can come from anywhere (think arbitrary source maps
// loaded by devtools), so the sort must not have a worst case that untrusted
// input can aim for. This is a quicksort with a randomized pivot: expected
// O(n log n) on sorted, reverse-sorted, and duplicate-heavy inputs alike.
// Stability doesn't matter because the comparators are total orders over
// every field they can see.

type compareFunc func(a *Mapping, b *Mapping) int

// xorShift is a tiny xorshift128 generator. It only has to be cheap and not
// trivially predictable from the input data; it is deliberately unseeded so
// sorts stay deterministic.
type xorShift struct {
	x, y, z, w uint32
}

func newXorShift() xorShift {
	return xorShift{x: 0x193a6754, y: 0xa8a7d469, z: 0x97830e05, w: 0x113ba7bb}
}

func (r *xorShift) next() uint32 {
	t := r.x ^ (r.x << 11)
	r.x, r.y, r.z = r.y, r.z, r.w
	r.w = r.w ^ (r.w >> 19) ^ (t ^ (t >> 8))
	return r.w
}

func quickSort(mappingSlice []Mapping, compare compareFunc) {
	if len(mappingSlice) == 0 {
		return
	}
	rng := newXorShift()
	doQuickSort(&rng, mappingSlice, 0, len(mappingSlice)-1, compare)
}

func doQuickSort(rng *xorShift, mappingSlice []Mapping, p int, r int, compare compareFunc) {
	for p < r {
		q := partition(rng, mappingSlice, p, r, compare)
		doQuickSort(rng, mappingSlice, p, q-1, compare)
		p = q + 1
	}
}

// partition picks a random pivot in mappingSlice[p..r], partitions that range
// about it, and returns the pivot's final index.
func partition(rng *xorShift, mappingSlice []Mapping, p int, r int, compare compareFunc) int {
	pivot := p + int(rng.next()%uint32(r-p+1))
	mappingSlice[pivot], mappingSlice[r] = mappingSlice[r], mappingSlice[pivot]

	i := p - 1
	for j := p; j < r; j++ {
		if compare(&mappingSlice[j], &mappingSlice[r]) > 0 {
			continue
		}
		i++
		mappingSlice[i], mappingSlice[j] = mappingSlice[j], mappingSlice[i]
	}

	mappingSlice[i+1], mappingSlice[r] = mappingSlice[r], mappingSlice[i+1]
	return i + 1
}
