package resolver

import "strings"

// SplitList splits s on commas not preceded by a backslash, trims every
// piece, drops empty pieces and turns `\,` back into a literal comma.
func SplitList(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] != ',' || (i > 0 && s[i-1] == '\\') {
			continue
		}
		out = appendPiece(out, s[start:i])
		start = i + 1
	}
	return appendPiece(out, s[start:])
}

func appendPiece(out []string, piece string) []string {
	piece = strings.ReplaceAll(strings.TrimSpace(piece), `\,`, ",")
	if piece == "" {
		return out
	}
	return append(out, piece)
}
