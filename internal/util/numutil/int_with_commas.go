package numutil

import "github.com/dustin/go-humanize"

// IntWithCommas returns a string representation of an integer with commas.
//
// Example:
//
//	12345 -> "12,345"
func IntWithCommas[T ~int | ~int32 | ~int64](i T) string {
	return humanize.Comma(int64(i))
}
