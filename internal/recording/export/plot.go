package export

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/haptics/internal/recording"
)

var axisColors = []color.Color{
	color.RGBA{R: 220, G: 50, B: 47, A: 255},
	color.RGBA{R: 38, G: 139, B: 210, A: 255},
	color.RGBA{R: 133, G: 153, B: 0, A: 255},
}

// elapsed returns each frame's time in seconds since the first frame.
func elapsed(b *recording.Buffer) []float64 {
	out := make([]float64, len(b.Frames))
	if len(b.Frames) == 0 {
		return out
	}
	t0 := b.Frames[0].Timestamp
	for i, f := range b.Frames {
		out[i] = float64(f.Timestamp-t0) / 1000
	}
	return out
}

type series struct {
	name string
	get  func(recording.Frame) [3]float64
}

func recordedSeries(b *recording.Buffer) []series {
	var out []series
	if b.Options.Position {
		out = append(out, series{"position", func(f recording.Frame) [3]float64 { return f.Position }})
	}
	if b.Options.Velocity {
		out = append(out, series{"velocity", func(f recording.Frame) [3]float64 { return f.Velocity }})
	}
	if b.Options.Force {
		out = append(out, series{"force", func(f recording.Frame) [3]float64 { return f.Force }})
	}
	return out
}

// WritePNG plots the recorded position, velocity and force components over
// time, one line per axis.
func WritePNG(w io.Writer, b *recording.Buffer) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Recording %s", b.ID)
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Value"

	times := elapsed(b)
	for _, s := range recordedSeries(b) {
		for axis, name := range []string{"x", "y", "z"} {
			pts := make(plotter.XYs, len(b.Frames))
			for i, f := range b.Frames {
				pts[i] = plotter.XY{X: times[i], Y: s.get(f)[axis]}
			}
			if len(pts) == 0 {
				continue
			}
			line, err := plotter.NewLine(pts)
			if err != nil {
				return err
			}
			line.Color = axisColors[axis]
			line.Width = vg.Points(1)
			if s.name == "velocity" {
				line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
			} else if s.name == "force" {
				line.Dashes = []vg.Length{vg.Points(1), vg.Points(2)}
			}
			p.Add(line)
			p.Legend.Add(s.name+"_"+name, line)
		}
	}
	p.Legend.Top = true

	wt, err := p.WriterTo(14*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
