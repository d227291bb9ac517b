package tagging

// Resolve evaluates candidates in order and returns the first value accepted
// by valid. When no candidate qualifies the last evaluated value is returned,
// and callers treat it as absent.
func Resolve[T any](valid func(T) bool, candidates ...func() T) T {
	var v T
	for _, candidate := range candidates {
		v = candidate()
		if valid(v) {
			return v
		}
	}
	return v
}

// NonEmpty is the validity predicate for strings.
func NonEmpty(s string) bool {
	return s != ""
}

// Present is the validity predicate for cover images.
func Present(image []byte) bool {
	return image != nil
}

// AnyGenre is the validity predicate for genre lists.
func AnyGenre(genres []string) bool {
	return len(genres) > 0
}
