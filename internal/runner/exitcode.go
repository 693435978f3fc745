package runner

import "fmt"

// ExitError is returned when the CLI should exit with a non-zero code.
// Using a typed error instead of os.Exit ensures deferred cleanup runs.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCodeFromResults returns 1 if any repository failed and strict is set,
// 0 otherwise. Empty results are not a failure.
func ExitCodeFromResults(results []RepoResult, strict bool) int {
	if !strict {
		return 0
	}
	for _, r := range results {
		if r.Err != nil {
			return 1
		}
	}
	return 0
}
