package collector

import (
	"context"
	"strings"

	"codeberg.org/mutker/healthctl/internal/errors"
)

// collectServices counts failed systemd units.
func (c *Collector) collectServices(ctx context.Context) (int, error) {
	errFactory := errors.New()

	out, err := c.run(ctx, "systemctl", "--failed", "--no-legend", "--plain")
	if err != nil {
		return 0, errFactory.Wrap(ErrServicesFailed, err)
	}

	return countLines(string(out)), nil
}

func countLines(out string) int {
	n := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}

	return n
}
