package chunk

import "strings"

// Blob-like line detection. A single line matching these heuristics is
// isolated into its own one-line fragment so it never pollutes a
// neighboring fragment's embedding — typically a certificate, key, or
// other encoded secret payload accidentally committed to a tracked file.
const (
	blobLineMinChars   = 256
	blobBase64RunChars = 192
)

var blobMarkers = []string{
	"certificate-authority-data:",
	"client-certificate-data:",
	"client-key-data:",
	"-----begin ",
	"-----end ",
	"ssh-rsa ",
	"ssh-ed25519 ",
}

// isBlobLike reports whether line should be hard-isolated into its own
// fragment rather than folded into a surrounding window.
func isBlobLike(line string) bool {
	lower := strings.ToLower(line)
	for _, marker := range blobMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	if len(line) >= blobLineMinChars && longestBase64Run(line) >= blobBase64RunChars {
		return true
	}
	return false
}

func isBase64Char(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	case b == '+' || b == '/' || b == '=':
		return true
	default:
		return false
	}
}

// longestBase64Run returns the length of the longest contiguous run of
// base64-alphabet characters in line.
func longestBase64Run(line string) int {
	best, cur := 0, 0
	for i := 0; i < len(line); i++ {
		if isBase64Char(line[i]) {
			cur++
			if cur > best {
				best = cur
			}
		} else {
			cur = 0
		}
	}
	return best
}
