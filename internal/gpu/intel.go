package gpu

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"codeberg.org/mutker/healthctl/internal/errors"
	"codeberg.org/mutker/healthctl/internal/telemetry"
)

const (
	DefaultDRMPath = "/sys/class/drm"
	intelVendorID  = "0x8086"
)

type intelReader struct {
	root string
}

// NewIntelReader scans root (normally /sys/class/drm) for an Intel card.
func NewIntelReader(root string) IntelReader {
	if root == "" {
		root = DefaultDRMPath
	}

	return &intelReader{root: root}
}

// Read returns the first card whose PCI vendor is Intel. A missing card is not
// an error.
func (r *intelReader) Read() (*telemetry.IntelGPU, error) {
	errFactory := errors.New()

	cards, err := filepath.Glob(filepath.Join(r.root, "card[0-9]*"))
	if err != nil {
		return nil, errFactory.Wrap(ErrSysfsReadFailed, err)
	}
	sort.Strings(cards)

	for _, dir := range cards {
		card := filepath.Base(dir)
		// card1-eDP-1 and friends are connectors, not devices
		if strings.Contains(card, "-") {
			continue
		}

		vendor, ok := readSysfs(filepath.Join(dir, "device", "vendor"))
		if !ok || vendor != intelVendorID {
			continue
		}

		return &telemetry.IntelGPU{
			Card:            card,
			FrequencyMHz:    readSysfsInt(filepath.Join(dir, "gt_cur_freq_mhz")),
			MaxFrequencyMHz: readSysfsInt(filepath.Join(dir, "gt_max_freq_mhz")),
		}, nil
	}

	return nil, nil
}

func readSysfs(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}

	return strings.TrimSpace(string(data)), true
}

func readSysfsInt(path string) *int {
	s, ok := readSysfs(path)
	if !ok {
		return nil
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}

	return &v
}
