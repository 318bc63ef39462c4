package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/planefx/internal/scenario"
)

// Summary renders a finished trace: headline numbers, effect counts, every
// metric, and a Mach plot.
func Summary(trace *scenario.Trace) string {
	var s strings.Builder
	s.WriteString(Header.Render(strings.ToUpper(trace.Scenario)) + "\n\n")
	s.WriteString(row("Vehicle", trace.Vehicle))
	s.WriteString(row("Ticks", fmt.Sprintf("%d", trace.Ticks)))
	s.WriteString(row("Elapsed", trace.Elapsed.String()))

	if n := len(trace.Samples); n > 0 {
		last := trace.Samples[n-1]
		s.WriteString(row("Final speed", fmt.Sprintf("%.1f m/s (M %.2f)", last.Speed, last.Mach)))
		s.WriteString(row("Final density", fmt.Sprintf("%.3f", last.Density)))
		skip := last.Skip
		if skip == "" {
			skip = "none"
		}
		s.WriteString(row("Final skip", skip))
	}

	s.WriteString("\n" + Title.Render("EFFECTS") + "\n")
	e := trace.Effects
	s.WriteString(row("Created", fmt.Sprintf("%d", e.Created)))
	s.WriteString(row("Refused", fmt.Sprintf("%d", e.Refused)))
	s.WriteString(row("Hard stops", fmt.Sprintf("%d", e.HardStops)))
	s.WriteString(row("Soft stops", fmt.Sprintf("%d", e.SoftStops)))
	s.WriteString(row("Scale updates", fmt.Sprintf("%d", e.ScaleUpdates)))

	if len(trace.Metrics) > 0 {
		s.WriteString("\n" + Title.Render("METRICS") + "\n")
		names := make([]string, 0, len(trace.Metrics))
		for k := range trace.Metrics {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			s.WriteString(row(k, fmt.Sprintf("%.4f", trace.Metrics[k])))
		}
	}

	if mach := Series(trace.Samples, func(s scenario.Sample) float64 { return s.Mach }); len(mach) > 1 {
		chart := asciigraph.Plot(mach, asciigraph.Height(6), asciigraph.Width(60), asciigraph.Caption("mach"))
		s.WriteString("\n" + chart + "\n")
	}

	return Panel.Render(strings.TrimRight(s.String(), "\n"))
}

// Series extracts one column from samples, down-sampled to at most 600
// points for plotting.
func Series(samples []scenario.Sample, pick func(scenario.Sample) float64) []float64 {
	const maxPoints = 600
	step := 1
	if len(samples) > maxPoints {
		step = (len(samples) + maxPoints - 1) / maxPoints
	}
	out := make([]float64, 0, len(samples)/step+1)
	for i := 0; i < len(samples); i += step {
		out = append(out, pick(samples[i]))
	}
	return out
}
