package engine

// kwPrefix marks keyword names rewritten by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites layout source into something zygomys reads:
//
//   - :keyword becomes the string literal "__kw_keyword", so keywords never
//     collide with user definitions.
//   - no-frame becomes no_frame and transfer-1 becomes transfer_1, since
//     zygomys parses a hyphen inside an identifier as subtraction.
//   - ; line comments become // comments.
//
// String literals pass through untouched.
func preprocessSource(source string) string {
	src := []byte(source)
	out := make([]byte, 0, len(src)+len(src)/4)
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '"' || c == '`':
			j := skipString(src, i)
			out = append(out, src[i:j]...)
			i = j

		case c == ';':
			out = append(out, '/', '/')
			for i < len(src) && src[i] == ';' {
				i++
			}
			for i < len(src) && src[i] != '\n' {
				out = append(out, src[i])
				i++
			}

		case c == ':' && i+1 < len(src) && src[i+1] == '=':
			out = append(out, ':', '=')
			i += 2

		case c == ':' && i+1 < len(src) && isLetter(src[i+1]):
			j := i + 1
			for j < len(src) && isKWChar(src[j]) {
				j++
			}
			out = append(out, '"')
			out = append(out, kwPrefix...)
			out = append(out, src[i+1:j]...)
			out = append(out, '"')
			i = j

		case c == '-' && i > 0 && i+1 < len(src) && isIdentChar(src[i-1]) &&
			(isLetter(src[i+1]) || (isDigit(src[i+1]) && inName(out))):
			out = append(out, '_')
			i++

		default:
			out = append(out, c)
			i++
		}
	}
	return string(out)
}

// skipString returns the index just past the string literal starting at
// i. Double-quoted strings honor backslash escapes; raw strings do not.
func skipString(src []byte, i int) int {
	quote := src[i]
	i++
	for i < len(src) && src[i] != quote {
		if quote == '"' && src[i] == '\\' && i+1 < len(src) {
			i++
		}
		i++
	}
	if i < len(src) {
		i++
	}
	return i
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// inName reports whether the identifier ending out starts with a letter,
// so 1e-5 keeps its exponent sign.
func inName(out []byte) bool {
	j := len(out)
	for j > 0 && isIdentChar(out[j-1]) {
		j--
	}
	return j < len(out) && isLetter(out[j])
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}
