package sliceutils

// Tail returns the last n elements of s, or all of s when it is shorter.
// The result shares the backing array of s.
func Tail[T any](s []T, n int) []T {
	if n <= 0 {
		return s[:0]
	}
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
