package answer

// matchBracket returns the index just past the bracket that closes the one
// at start, walking nested brackets and skipping quoted strings with
// backslash escapes. It returns -1 when the bracket never closes; callers
// must then leave the remainder of the text untouched.
func matchBracket(s string, start int) int {
	if start < 0 || start >= len(s) || s[start] != '[' {
		return -1
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		ch := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}

	return -1
}
