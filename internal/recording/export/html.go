package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/haptics/internal/recording"
)

// WriteHTML renders an interactive page with one line chart per recorded
// quantity.
func WriteHTML(w io.Writer, b *recording.Buffer) error {
	times := elapsed(b)
	x := make([]string, len(times))
	for i, t := range times {
		x[i] = formatFloat(t)
	}

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("Recording %s", b.ID)
	for _, s := range recordedSeries(b) {
		line := charts.NewLine()
		line.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px"}),
			charts.WithTitleOpts(opts.Title{Title: s.name, Subtitle: fmt.Sprintf("%d frames", len(b.Frames))}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
			charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
			charts.WithXAxisOpts(opts.XAxis{Name: "time (s)"}),
		)
		line.SetXAxis(x)
		for axis, name := range []string{"x", "y", "z"} {
			data := make([]opts.LineData, len(b.Frames))
			for i, f := range b.Frames {
				data[i] = opts.LineData{Value: s.get(f)[axis]}
			}
			line.AddSeries(s.name+"_"+name, data)
		}
		page.AddCharts(line)
	}
	return page.Render(w)
}
