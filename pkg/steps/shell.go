package steps

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/homebysix/discentem-recipes/pkg/api"
)

// Variables written by shell steps.
const (
	VarStdout     = "stdout"
	VarStderr     = "stderr"
	VarReturnCode = "return_code"
)

const defaultShellTimeout = 30 * time.Second

type shellStep struct {
	name string
	cfg  *api.ShellConfig
}

func (s *shellStep) Name() string { return s.name }
func (s *shellStep) Kind() string { return api.StepKindShell }

func (s *shellStep) Args() map[string]string {
	args := map[string]string{"command": s.cfg.Command}
	for i, a := range s.cfg.Args {
		args[fmt.Sprintf("arg%d", i)] = a
	}
	return args
}

func (s *shellStep) Outputs() []string {
	return []string{VarStdout, VarStderr, VarReturnCode}
}

func (s *shellStep) Run(ctx context.Context, sc StepContext) (*StepResult, error) {
	name := sc.Args["command"]
	var argv []string
	if len(s.cfg.Args) > 0 {
		argv = make([]string, len(s.cfg.Args))
		for i := range s.cfg.Args {
			argv[i] = sc.Args[fmt.Sprintf("arg%d", i)]
		}
	} else if fields := strings.Fields(name); len(fields) > 1 {
		name, argv = fields[0], fields[1:]
	}

	timeout := defaultShellTimeout
	if s.cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(s.cfg.TimeoutSeconds) * time.Second
	}

	res, err := sc.Providers.Executor.Execute(ctx, name, argv, timeout)
	if err != nil {
		return nil, err
	}
	return &StepResult{Vars: map[string]string{
		VarStdout:     strings.TrimRight(res.Stdout, "\n"),
		VarStderr:     strings.TrimRight(res.Stderr, "\n"),
		VarReturnCode: strconv.Itoa(res.ExitCode),
	}}, nil
}
