package portscan

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	ConnectionsListerName = "connections"
	ProcessesListerName   = "processes"
)

// ErrEmptyOutput is reported when a listing command succeeds but prints nothing.
var ErrEmptyOutput = errors.New("command produced no output")

var errEmptyCommand = errors.New("empty command")

// commandWaitDelay bounds how long a killed command's pipes are drained
// before they are closed. Grandchildren inheriting stdout are not killed
// with the command and would otherwise hold Output open.
const commandWaitDelay = 500 * time.Millisecond

// Lister produces the raw text of a connection or process listing.
type Lister interface {
	Name() string
	List(ctx context.Context) (string, error)
}

// ListerError describes the failure of a single lister.
type ListerError struct {
	Lister string
	Err    error
}

func (e *ListerError) Error() string {
	return fmt.Sprintf("%s lister failed: %v", e.Lister, e.Err)
}

func (e *ListerError) Unwrap() error {
	return e.Err
}

// FailedListers returns the names of all listers whose failure is wrapped in err.
func FailedListers(err error) []string {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var names []string
		for _, e := range joined.Unwrap() {
			names = append(names, FailedListers(e)...)
		}
		return names
	}
	var le *ListerError
	if errors.As(err, &le) {
		return []string{le.Lister}
	}
	return nil
}

// CommandLister runs an external command and returns its standard output.
type CommandLister struct {
	name    string
	args    []string
	timeout time.Duration
}

// NewCommandLister creates a lister from a whitespace separated command line such as "netstat -aon".
func NewCommandLister(name, commandLine string, timeout time.Duration) (*CommandLister, error) {
	args := strings.Fields(commandLine)
	if len(args) == 0 {
		return nil, fmt.Errorf("%s: %w", name, errEmptyCommand)
	}
	return &CommandLister{
		name:    name,
		args:    args,
		timeout: timeout,
	}, nil
}

func (l *CommandLister) Name() string {
	return l.name
}

func (l *CommandLister) List(ctx context.Context) (string, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	// CommandContext kills only the direct child. WaitDelay makes Output
	// return once the context is done even if a descendant keeps stdout open.
	cmd := exec.CommandContext(ctx, l.args[0], l.args[1:]...)
	cmd.WaitDelay = commandWaitDelay
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("%s failed: %w: %s", strings.Join(l.args, " "), err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("%s failed: %w", strings.Join(l.args, " "), err)
	}
	if len(out) == 0 {
		return "", ErrEmptyOutput
	}
	return string(out), nil
}
