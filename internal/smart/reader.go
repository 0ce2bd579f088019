package smart

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"codeberg.org/mutker/healthctl/internal/errors"
	"codeberg.org/mutker/healthctl/internal/logger"
)

const (
	DefaultDevice   = "/dev/nvme0n1"
	DefaultSmartctl = "smartctl"
	DefaultTimeout  = 10 * time.Second
)

const ErrSmartctlFailed = errors.ErrorCode("smart_smartctl_failed")

// smartctl exit status bits that mean no SMART data was read: bit 0 is a
// command line error, bit 1 a device that could not be opened.
const exitNoData = 0b11

// Runner executes a command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Config selects the device and how smartctl is invoked.
type Config struct {
	Device   string
	Smartctl string
	Sudo     bool
	Timeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		Device:   DefaultDevice,
		Smartctl: DefaultSmartctl,
		Sudo:     true,
		Timeout:  DefaultTimeout,
	}
}

// Reader runs smartctl against a single device.
type Reader struct {
	cfg Config
	run Runner
}

func NewReader(cfg Config) *Reader {
	return NewReaderWithRunner(cfg, ExecRunner)
}

// NewReaderWithRunner is NewReader with a substitutable command runner.
func NewReaderWithRunner(cfg Config, run Runner) *Reader {
	if cfg.Device == "" {
		cfg.Device = DefaultDevice
	}
	if cfg.Smartctl == "" {
		cfg.Smartctl = DefaultSmartctl
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Reader{cfg: cfg, run: run}
}

// Read returns the parsed health of the configured device. It never fails:
// an unavailable tool or device degrades to HealthError.
func (r *Reader) Read(ctx context.Context) StorageHealth {
	out, err := r.Output(ctx)
	if err != nil {
		logger.Debug().
			Err(err).
			Str("device", r.cfg.Device).
			Msg("SMART data unavailable")
	}

	return Parse(string(out))
}

// Output returns the raw smartctl output. smartctl reports SMART problems in
// the higher exit status bits, so output is kept for those. Bits 0 and 1 mean
// the device was never read and the banner it printed is discarded.
func (r *Reader) Output(ctx context.Context) ([]byte, error) {
	errFactory := errors.New()

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	name, args := r.command()
	out, err := r.run(ctx, name, args...)
	if err == nil {
		return out, nil
	}

	if ctx.Err() != nil && len(out) == 0 {
		return nil, errFactory.Wrap(errors.ErrTimeout, ctx.Err())
	}
	if code, ok := exitCode(err); ok && code&exitNoData != 0 {
		return nil, errFactory.Wrap(ErrSmartctlFailed, err)
	}
	if len(out) == 0 {
		return nil, errFactory.Wrap(ErrSmartctlFailed, err)
	}

	return out, nil
}

func exitCode(err error) (int, bool) {
	var exit interface{ ExitCode() int }
	if !errors.As(err, &exit) {
		return 0, false
	}

	return exit.ExitCode(), true
}

func (r *Reader) command() (string, []string) {
	args := []string{"-a", r.cfg.Device}
	if r.cfg.Sudo {
		return "sudo", append([]string{"-n", r.cfg.Smartctl}, args...)
	}

	return r.cfg.Smartctl, args
}

// ExecRunner runs name with args and returns its standard output, including
// any produced before a non-zero exit.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), errors.New().Wrap(errors.ErrCommand, err)
	}

	return stdout.Bytes(), nil
}
