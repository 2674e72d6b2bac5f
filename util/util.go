package util

func IsNumber(b byte) bool {
	return b >= '0' && b <= '9'
}

func IsUnderScore(b byte) bool {
	return b == '_'
}

func IsUpper(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

func IsLower(b byte) bool {
	return b >= 'a' && b <= 'z'
}

func IsLetter(b byte) bool {
	return IsLower(b) || IsUpper(b)
}

// IsLowerOrUnderscore reports whether b can start a local identifier.
func IsLowerOrUnderscore(b byte) bool {
	return IsLower(b) || IsUnderScore(b)
}

func IsLetterOrUnderscoreOrNumber(b byte) bool {
	return IsLetter(b) || IsUnderScore(b) || IsNumber(b)
}
