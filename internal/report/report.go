// Package report renders a scored snapshot for people (table) or programs
// (JSON).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"codeberg.org/mutker/healthctl/internal/errors"
	"codeberg.org/mutker/healthctl/internal/health"
	"codeberg.org/mutker/healthctl/internal/telemetry"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const (
	title        = "System Health"
	notAvail     = "N/A"
	colComponent = 16
)

// Document is the JSON representation of one evaluation.
type Document struct {
	Score      int                    `json:"score"`
	Status     string                 `json:"status"`
	Issues     []string               `json:"issues"`
	Categories []health.CategoryScore `json:"categories"`
	Telemetry  *telemetry.Snapshot    `json:"telemetry"`
}

// JSON writes the evaluation as a single indented JSON document.
func JSON(w io.Writer, s *telemetry.Snapshot, res health.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	doc := Document{
		Score:      res.Total,
		Status:     health.Status(res.Total),
		Issues:     res.Issues,
		Categories: res.Categories,
		Telemetry:  s,
	}
	if err := enc.Encode(doc); err != nil {
		return errors.New().Wrap(errors.ErrRender, err)
	}

	return nil
}

type row struct {
	component string
	details   string
}

// Table writes a component table followed by the score and issue panels.
func Table(w io.Writer, s *telemetry.Snapshot, res health.Result) error {
	r := lipgloss.NewRenderer(w)
	st := newStyles(r)

	var sb strings.Builder
	sb.WriteString(st.title.Render(title) + "\n\n")
	sb.WriteString(st.header.Render(pad("Component", colComponent)) + st.header.Render("Details") + "\n")
	for _, rw := range rows(s) {
		sb.WriteString(st.component.Render(pad(rw.component, colComponent)) + rw.details + "\n")
	}
	sb.WriteString("\n")

	status := health.Status(res.Total)
	score := fmt.Sprintf("%d/100 (%s)", res.Total, status)
	sb.WriteString(st.panel(status).Render("Overall Health Score: "+score) + "\n")

	if len(res.Issues) > 0 {
		sb.WriteString(st.issues.Render("Issues Detected\n"+strings.Join(res.Issues, "\n")) + "\n")
	} else {
		sb.WriteString(st.panel("healthy").Render("System is healthy ✔") + "\n")
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return errors.New().Wrap(errors.ErrRender, err)
	}

	return nil
}

func rows(s *telemetry.Snapshot) []row {
	if s == nil {
		s = &telemetry.Snapshot{}
	}

	return []row{
		{"CPU", cpuDetails(s.CPU)},
		{"Memory", memoryDetails(s.Memory)},
		{"SSD", storageDetails(s)},
		{"Battery", batteryDetails(s.Battery)},
		gpuRow(s.GPU),
		{"Failed Services", strconv.Itoa(s.Services)},
	}
}

func cpuDetails(c *telemetry.CPU) string {
	if c == nil {
		return notAvail
	}

	parts := []string{
		"Usage: " + optFloat(c.UsagePercent) + "%",
		"Cores: " + optInt(c.CoresPhysical) + "P/" + optInt(c.CoresLogical) + "L",
		"Freq: " + optFloat(c.FrequencyMHz) + " MHz",
	}
	if c.LoadAvg != nil {
		parts = append(parts, fmt.Sprintf("Load: %s %s %s",
			fmtFloat(c.LoadAvg.One), fmtFloat(c.LoadAvg.Five), fmtFloat(c.LoadAvg.Fifteen)))
	}

	return strings.Join(parts, " | ")
}

func memoryDetails(m *telemetry.Memory) string {
	if m == nil {
		return notAvail
	}

	return fmt.Sprintf("RAM %s%% (%s/%s GB) | Swap %s%%",
		optFloat(m.RAM.Percent), fmtFloat(m.RAM.UsedGB), fmtFloat(m.RAM.TotalGB), optFloat(m.Swap.Percent))
}

func storageDetails(s *telemetry.Snapshot) string {
	h := s.Storage
	if h == nil {
		return notAvail
	}

	parts := []string{
		"Health: " + string(h.Health),
		"Wear: " + optInt(h.WearPercent) + "%",
	}
	if h.DataWrittenTB != nil {
		parts = append(parts, "TBW: "+fmtFloat(*h.DataWrittenTB)+" TB")
	}
	if h.PowerOnHours != nil {
		parts = append(parts, "POH: "+humanize.Comma(*h.PowerOnHours)+" h")
	}
	if h.UnsafeShutdowns != nil {
		parts = append(parts, "Unsafe: "+humanize.Comma(*h.UnsafeShutdowns))
	}
	if t, ok := s.Temps.Get(telemetry.SensorNVMe); ok {
		parts = append(parts, "Temp: "+fmtFloat(t)+"°C")
	}

	return strings.Join(parts, " | ")
}

func batteryDetails(b *telemetry.Battery) string {
	if b == nil || !b.Present {
		return "Not detected"
	}

	return fmt.Sprintf("%s%% | Wear %s%% | Cycles %s",
		fmtFloat(b.Percent), optFloat(b.WearPercent), optInt(b.CycleCount))
}

func gpuRow(g *telemetry.GPU) row {
	if g != nil && g.Nvidia != nil {
		nv := g.Nvidia
		return row{"NVIDIA GPU", fmt.Sprintf("%d°C | VRAM %d/%d MB | %s",
			nv.Temperature, nv.VRAMUsedMB, nv.VRAMTotalMB, nv.PowerState)}
	}

	if g != nil && g.Intel != nil {
		return row{"GPU", "Intel iGPU (Optimus, power-saving)"}
	}

	return row{"GPU", "No discrete GPU active"}
}

func optFloat(v *float64) string {
	if v == nil {
		return notAvail
	}
	return fmtFloat(*v)
}

func optInt(v *int) string {
	if v == nil {
		return notAvail
	}
	return strconv.Itoa(*v)
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func pad(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-w)
}
