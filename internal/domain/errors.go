package domain

import (
	"errors"
	"fmt"
)

// ConfigError reports an unusable run configuration, such as an input
// pattern without the test placeholder. It aborts the run before any test
// executes.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid configuration: %s: %s", e.Field, msg)
	}
	return fmt.Sprintf("invalid configuration: %s", msg)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// DiscoveryError reports a failure enumerating input files
type DiscoveryError struct {
	Pattern string
	Err     error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovering tests with pattern %q: %v", e.Pattern, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// Operations an ExecutionError can originate from
const (
	OpReadInput    = "read input"
	OpSpawn        = "spawn"
	OpCopyIO       = "copy stdio"
	OpWait         = "wait"
	OpReadExpected = "read expected output"
	OpAdmit        = "admit"
)

// ExecutionError is a per-test failure that is neither a pass, a fail nor
// a timeout. It never aborts sibling tests.
type ExecutionError struct {
	Test string
	Op   string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("test %s: %s: %v", e.Test, e.Op, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// IsFatal returns true for errors that must stop the run before scheduling
func IsFatal(err error) bool {
	var cfgErr *ConfigError
	var discErr *DiscoveryError
	return errors.As(err, &cfgErr) || errors.As(err, &discErr)
}
