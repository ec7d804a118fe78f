package providers

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// CodesignVerifier checks signatures by shelling out to the platform
// signature tool through an Executor, so tests and replay runs can swap
// the real binary out.
type CodesignVerifier struct {
	Exec Executor
	// Tool overrides the verification binary (default "codesign").
	Tool    string
	Timeout time.Duration
}

const defaultVerifyTimeout = 2 * time.Minute

func (v *CodesignVerifier) Verify(ctx context.Context, path, requirement string) error {
	tool := v.Tool
	if tool == "" {
		tool = "codesign"
	}
	timeout := v.Timeout
	if timeout <= 0 {
		timeout = defaultVerifyTimeout
	}

	args := []string{"--verify", "--deep", "--strict"}
	if requirement != "" {
		args = append(args, "-R="+requirement)
	}
	args = append(args, path)

	res, err := v.Exec.Execute(ctx, tool, args, timeout)
	if err != nil {
		return fmt.Errorf("%w: running %s: %v", ErrSignatureInvalid, tool, err)
	}
	if res.ExitCode == 0 {
		return nil
	}
	if strings.Contains(res.Stderr, "not signed") {
		return fmt.Errorf("%w: %s", ErrSignatureAbsent, path)
	}
	return fmt.Errorf("%w: %s: %s", ErrSignatureInvalid, path, strings.TrimSpace(res.Stderr))
}
