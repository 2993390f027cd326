package executor

import "bytes"

// cutset is the whitespace stripped from both ends before judging
const cutset = " \t\r\n"

// Trim strips leading and trailing spaces, tabs, carriage returns and line
// feeds. Inner whitespace is left alone.
func Trim(b []byte) []byte {
	return bytes.Trim(b, cutset)
}

// Equal reports whether actual matches expected after trimming both
func Equal(actual, expected []byte) bool {
	return bytes.Equal(Trim(actual), Trim(expected))
}
