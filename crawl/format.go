package crawl

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
)

// ContentHash identifies page text for mirror detection. Surrounding
// whitespace does not change the hash.
func ContentHash(text string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(strings.TrimSpace(text)))
}

// TruncateURL shortens url to at most maxLen characters for progress
// output. The tail of the URL is kept behind a "..." marker; limits too
// small for the marker keep the head instead.
func TruncateURL(url string, maxLen int) string {
	n := utf8.RuneCountInString(url)
	switch {
	case maxLen <= 0:
		return ""
	case n <= maxLen:
		return url
	case maxLen < 4:
		return string([]rune(url)[:maxLen])
	}
	return "..." + string([]rune(url)[n-maxLen+3:])
}

// FormatBytes renders a byte count with a binary unit, e.g. "1.5 KB".
func FormatBytes(n int) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	size := float64(n) / 1024
	for _, unit := range []string{"KB", "MB"} {
		if size < 1024 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.1f GB", size)
}
