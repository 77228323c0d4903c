package util

// NameKey reduces a company name to its first two words, lowercased.
// Listings from different exchanges often carry slightly different suffixes
// ("Inc." vs "Incorporated"); the key makes those collide for dedupe.
func NameKey(name string) string {
	words := 0
	start := -1
	var out []byte
	for i := 0; i <= len(name); i++ {
		if i < len(name) && name[i] != ' ' && name[i] != '\t' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			if words > 0 {
				out = append(out, ' ')
			}
			out = append(out, lowerASCII(name[start:i])...)
			words++
			start = -1
			if words == 2 {
				break
			}
		}
	}
	return string(out)
}

func lowerASCII(s string) []byte {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return b
}
