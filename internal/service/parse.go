package service

// Best-effort parsing of free-form rep and load fields ("8-10", "AMRAP",
// "60kg", "BW"). The boolean reports whether anything numeric was found;
// on failure the value is 0 and the caller falls back to the
// prescription's defaults. Kept explicit so tests can observe which path
// produced a logged value.

// parseLeadingInt extracts the leading unsigned integer of s: "8-10"
// yields (8, true), "AMRAP" yields (0, false).
func parseLeadingInt(s string) (int, bool) {
	n := 0
	seen := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
		seen = true
	}
	return n, seen
}

// parseLeadingFloat extracts the leading unsigned decimal of s: "62.5kg"
// yields (62.5, true), "BW" yields (0, false).
func parseLeadingFloat(s string) (float64, bool) {
	intPart, seen := parseLeadingInt(s)
	f := float64(intPart)
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i < len(s) && s[i] == '.' {
		scale := 0.1
		for j := i + 1; j < len(s); j++ {
			c := s[j]
			if c < '0' || c > '9' {
				break
			}
			f += float64(c-'0') * scale
			scale /= 10
			seen = true
		}
	}
	if !seen {
		return 0, false
	}
	return f, true
}
