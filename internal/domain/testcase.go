package domain

// TestCase is one discovered (input, expected output) pair.
// It is a value type; nothing mutates it after discovery.
type TestCase struct {
	Name       string
	InputPath  string
	OutputPath string
}

// String returns the test name
func (t TestCase) String() string {
	return t.Name
}
