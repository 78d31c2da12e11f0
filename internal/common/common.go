package common

// UnknownStr is printed for enum values outside their declared range.
const UnknownStr = "unknown"

// IsSingle reports whether s holds exactly one element.
func IsSingle[S ~[]E, E any](s S) bool {
	return len(s) == 1
}
