package platform

// Latest returns the item with the maximum creation date. Ties are broken by
// the larger identity so the choice never depends on input order.
// The boolean is false when items is empty.
func Latest[T Dated](items []T) (T, bool) {
	var best T
	if len(items) == 0 {
		return best, false
	}

	best = items[0]
	for _, item := range items[1:] {
		if newer(item, best) {
			best = item
		}
	}
	return best, true
}

// Filter returns the items for which keep returns true.
func Filter[T any](items []T, keep func(T) bool) []T {
	var out []T
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func newer(a, b Dated) bool {
	if a.Created().Equal(b.Created()) {
		return a.Identity() > b.Identity()
	}
	return a.Created().After(b.Created())
}
