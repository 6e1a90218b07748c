package scraper

import (
	"bytes"
	"fmt"
	"strings"
)

// Rule judges a completed validator run. It returns whether the output
// indicates a well-formed file and the error text to record otherwise.
type Rule func(out *Output) (ok bool, errs []string)

// ExitCodeIn accepts the given exit codes.
func ExitCodeIn(codes ...int) Rule {
	return func(out *Output) (bool, []string) {
		for _, c := range codes {
			if out.ExitCode == c {
				return true, nil
			}
		}
		return false, []string{fmt.Sprintf("Failed: returncode %d", out.ExitCode)}
	}
}

// ExitZero accepts exit code 0 only.
func ExitZero() Rule {
	return ExitCodeIn(0)
}

// EmptyStderr accepts runs that wrote nothing to stderr.
func EmptyStderr() Rule {
	return func(out *Output) (bool, []string) {
		if text := strings.TrimSpace(string(out.Stderr)); text != "" {
			return false, []string{text}
		}
		return true, nil
	}
}

// StderrOnFailure wraps r so that stderr is appended to its errors on failure.
func StderrOnFailure(r Rule) Rule {
	return func(out *Output) (bool, []string) {
		ok, errs := r(out)
		if !ok {
			if text := strings.TrimSpace(string(out.Stderr)); text != "" {
				errs = append(errs, text)
			}
		}
		return ok, errs
	}
}

// AllOf accepts only when every rule accepts; errors are concatenated.
func AllOf(rules ...Rule) Rule {
	return func(out *Output) (bool, []string) {
		ok := true
		var errs []string
		for _, r := range rules {
			rok, rerrs := r(out)
			ok = ok && rok
			errs = append(errs, rerrs...)
		}
		return ok, errs
	}
}

// StdoutNotContains rejects output containing marker.
func StdoutNotContains(marker string, reason string) Rule {
	m := []byte(marker)
	return func(out *Output) (bool, []string) {
		if bytes.Contains(out.Stdout, m) {
			return false, []string{reason}
		}
		return true, nil
	}
}
