package mappings

// The ordering rules live here because downstream consumers depend on the
// exact tie-breaks, most importantly the rule that a present optional value
// sorts before an absent one. Inverting that rule doesn't fail loudly; it
// silently corrupts binary search results. Each comparison is written out
// explicitly (instead of going through a generic optional wrapper) and the
// tie-breaks are unit tested directly.

// compareIndex32 orders two optional indices: present before absent,
// present values ascending.
func compareIndex32(a Index32, b Index32) int {
	switch {
	case a.IsValid() && b.IsValid():
		return compareUint32(a.GetIndex(), b.GetIndex())
	case a.IsValid():
		return -1
	case b.IsValid():
		return 1
	default:
		return 0
	}
}

// compareOriginalLocation orders by (source, line, column) ascending, then
// breaks ties by name with the same present-before-absent rule.
func compareOriginalLocation(a *OriginalLocation, b *OriginalLocation) int {
	if cmp := compareUint32(a.Source, b.Source); cmp != 0 {
		return cmp
	}
	if cmp := compareUint32(a.Line, b.Line); cmp != 0 {
		return cmp
	}
	if cmp := compareUint32(a.Column, b.Column); cmp != 0 {
		return cmp
	}
	return compareIndex32(a.Name, b.Name)
}

// compareOptionalOriginal orders the optional original fields of two
// mappings as a whole: a mapping with original information sorts before an
// otherwise-identical mapping without it.
func compareOptionalOriginal(a *Mapping, b *Mapping) int {
	switch {
	case a.HasOriginal && b.HasOriginal:
		return compareOriginalLocation(&a.Original, &b.Original)
	case a.HasOriginal:
		return -1
	case b.HasOriginal:
		return 1
	default:
		return 0
	}
}

// compareByGeneratedLocation is the order of the by-generated index:
// (generated line, generated column) ascending, ties broken by the optional
// original locations.
func compareByGeneratedLocation(a *Mapping, b *Mapping) int {
	if cmp := compareUint32(a.GeneratedLine, b.GeneratedLine); cmp != 0 {
		return cmp
	}
	if cmp := compareUint32(a.GeneratedColumn, b.GeneratedColumn); cmp != 0 {
		return cmp
	}
	return compareOptionalOriginal(a, b)
}

// compareByOriginalLocation is the order of the by-original view: the
// optional original locations first, ties broken by generated location so
// the order stays total.
func compareByOriginalLocation(a *Mapping, b *Mapping) int {
	if cmp := compareOptionalOriginal(a, b); cmp != 0 {
		return cmp
	}
	if cmp := compareUint32(a.GeneratedLine, b.GeneratedLine); cmp != 0 {
		return cmp
	}
	return compareUint32(a.GeneratedColumn, b.GeneratedColumn)
}

func compareUint32(a uint32, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
