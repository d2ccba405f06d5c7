package usecase

// Jaro-Winkler tuning
const (
	winklerPrefixScale = 0.1
	winklerMaxPrefix   = 4
)

// JaroWinkler returns the Jaro-Winkler similarity of a and b in [0,1].
// Identical strings score 1 and an empty operand scores 0. Characters are
// compared as runes.
func JaroWinkler(a, b string) float64 {
	if a == b {
		return 1.0
	}

	s1 := []rune(a)
	s2 := []rune(b)
	len1, len2 := len(s1), len(s2)
	if len1 == 0 || len2 == 0 {
		return 0.0
	}

	matchWindow := max(len1, len2)/2 - 1
	if matchWindow < 0 {
		return 0.0
	}

	s1Matches := make([]bool, len1)
	s2Matches := make([]bool, len2)

	matches := 0
	for i := 0; i < len1; i++ {
		start := max(0, i-matchWindow)
		end := min(i+matchWindow+1, len2)

		for j := start; j < end; j++ {
			if s2Matches[j] || s1[i] != s2[j] {
				continue
			}
			s1Matches[i] = true
			s2Matches[j] = true
			matches++
			break
		}
	}

	if matches == 0 {
		return 0.0
	}

	// Matched characters that appear in a different order, counted per side
	transpositions := 0
	k := 0
	for i := 0; i < len1; i++ {
		if !s1Matches[i] {
			continue
		}
		for !s2Matches[k] {
			k++
		}
		if s1[i] != s2[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	jaro := (m/float64(len1) + m/float64(len2) + (m-float64(transpositions)/2)/m) / 3.0

	prefix := 0
	for i := 0; i < min(len1, len2, winklerMaxPrefix); i++ {
		if s1[i] != s2[i] {
			break
		}
		prefix++
	}

	return jaro + winklerPrefixScale*float64(prefix)*(1-jaro)
}
