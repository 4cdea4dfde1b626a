// Package subsystem drives the page-cache plugin of a site through the
// command-line collaborator ("wp" by default).
//
// Every invocation follows one calling convention:
//
//	<binary> --path=<site root> [--allow-root] <subcommand> <args...>
//
// and runs under its own timeout. A failed or timed-out call affects only
// that call; callers decide whether it is fatal.
package subsystem

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"grimm.is/presetctl/internal/logging"
	"grimm.is/presetctl/internal/validation"
)

var (
	ErrCallFailed  = errors.New("collaborator call failed")
	ErrTimeout     = errors.New("collaborator call timed out")
	ErrEmptyOutput = errors.New("collaborator returned no output")
)

// Status is the state of the downstream subsystem on one site.
type Status string

const (
	StatusActive       Status = "active"
	StatusInactive     Status = "inactive"
	StatusNotInstalled Status = "not-installed"
	StatusUnknown      Status = "unknown"
)

// DefaultTimeout bounds a single collaborator call.
const DefaultTimeout = 30 * time.Second

// Options configures the collaborator.
type Options struct {
	Binary    string
	AllowRoot bool
	Plugin    string
	Timeout   time.Duration
	PurgeArgs []string

	// Observe, when set, is called after every invocation with the
	// subcommand name.
	Observe func(command string, d time.Duration, err error)
}

// DefaultOptions returns the stock wp-cli setup.
func DefaultOptions() Options {
	return Options{
		Binary:    "wp",
		Plugin:    "page-cache",
		Timeout:   DefaultTimeout,
		PurgeArgs: []string{"cache", "flush"},
	}
}

// Client issues collaborator calls.
type Client struct {
	exec   CommandExecutor
	opts   Options
	logger *logging.Logger
}

// NewClient creates a client. A nil executor runs real processes.
func NewClient(exec CommandExecutor, opts Options, logger *logging.Logger) *Client {
	if exec == nil {
		exec = ExecExecutor{}
	}
	def := DefaultOptions()
	if opts.Binary == "" {
		opts.Binary = def.Binary
	}
	if opts.Plugin == "" {
		opts.Plugin = def.Plugin
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if len(opts.PurgeArgs) == 0 {
		opts.PurgeArgs = def.PurgeArgs
	}
	return &Client{
		exec:   exec,
		opts:   opts,
		logger: logging.Or(logger).WithComponent("subsystem"),
	}
}

// Options returns the effective options.
func (c *Client) Options() Options {
	return c.opts
}

// Site returns a handle bound to one site root.
func (c *Client) Site(root string) *Site {
	return &Site{client: c, root: root}
}

// Site runs collaborator calls against one site root.
type Site struct {
	client *Client
	root   string
}

// Root returns the site root the handle is bound to.
func (s *Site) Root() string {
	return s.root
}

func (s *Site) run(ctx context.Context, args ...string) (string, error) {
	c := s.client
	full := make([]string, 0, len(args)+2)
	full = append(full, "--path="+s.root)
	if c.opts.AllowRoot {
		full = append(full, "--allow-root")
	}
	full = append(full, args...)

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	start := time.Now()
	out, err := c.exec.RunCommand(ctx, c.opts.Binary, full...)
	if err == nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = &CallError{Command: c.opts.Binary + " " + strings.Join(full, " "), ExitCode: -1, Err: ErrTimeout}
	}
	elapsed := time.Since(start)
	c.logger.Debug("collaborator call", "args", strings.Join(args, " "), "root", s.root, "duration", elapsed, "ok", err == nil)
	if c.opts.Observe != nil && len(args) > 0 {
		c.opts.Observe(args[0], elapsed, err)
	}
	if err != nil && !errors.Is(err, ErrCallFailed) {
		err = fmt.Errorf("%w: %w", ErrCallFailed, err)
	}
	return out, err
}

// Installed reports whether the plugin is installed. A non-zero exit means
// "no"; any other failure is returned.
func (s *Site) Installed(ctx context.Context) (bool, error) {
	return s.check(ctx, "plugin", "is-installed", s.client.opts.Plugin)
}

// Active reports whether the plugin is active.
func (s *Site) Active(ctx context.Context) (bool, error) {
	return s.check(ctx, "plugin", "is-active", s.client.opts.Plugin)
}

func (s *Site) check(ctx context.Context, args ...string) (bool, error) {
	_, err := s.run(ctx, args...)
	if err == nil {
		return true, nil
	}
	var callErr *CallError
	if errors.As(err, &callErr) && callErr.Exited() {
		return false, nil
	}
	return false, err
}

// Status classifies the subsystem. StatusUnknown comes with the error that
// made the collaborator unreachable.
func (s *Site) Status(ctx context.Context) (Status, error) {
	installed, err := s.Installed(ctx)
	if err != nil {
		return StatusUnknown, err
	}
	if !installed {
		return StatusNotInstalled, nil
	}
	active, err := s.Active(ctx)
	if err != nil {
		return StatusUnknown, err
	}
	if !active {
		return StatusInactive, nil
	}
	return StatusActive, nil
}

// Activate enables the plugin.
func (s *Site) Activate(ctx context.Context) error {
	_, err := s.run(ctx, "plugin", "activate", s.client.opts.Plugin)
	return err
}

// GetOption reads a named option. Empty output is an error.
func (s *Site) GetOption(ctx context.Context, name string) (string, error) {
	if err := validation.ValidateOptionName(name); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCallFailed, err)
	}
	out, err := s.run(ctx, "option", "get", name)
	if err != nil {
		return "", err
	}
	value := strings.TrimRight(out, "\r\n")
	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%w: %w: option %s", ErrCallFailed, ErrEmptyOutput, name)
	}
	return value, nil
}

// SetOption writes a named option.
func (s *Site) SetOption(ctx context.Context, name, value string) error {
	if err := validation.ValidateOptionName(name); err != nil {
		return fmt.Errorf("%w: %w", ErrCallFailed, err)
	}
	if err := validation.ValidateArgValue(value); err != nil {
		return fmt.Errorf("%w: %w", ErrCallFailed, err)
	}
	_, err := s.run(ctx, "option", "update", name, value)
	return err
}

// Purge clears every cache the plugin holds.
func (s *Site) Purge(ctx context.Context) error {
	_, err := s.run(ctx, s.client.opts.PurgeArgs...)
	return err
}
