// Package plot renders sampled trajectories to PNG with gonum/plot.
package plot

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/urdfsim/internal/dynamo"
	"github.com/san-kum/urdfsim/internal/storage"
)

// Size of the rendered image.
type Size struct {
	WidthIn  float64
	HeightIn float64
	DPI      int
}

var DefaultSize = Size{WidthIn: 8, HeightIn: 6, DPI: 300}

func limitedTicker(maxLabels int, labelFmt string) plot.Ticker {
	if maxLabels < 2 {
		maxLabels = 2
	}
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
			return nil
		}
		if min == max {
			return []plot.Tick{{Value: min, Label: fmt.Sprintf(labelFmt, min)}}
		}
		step := (max - min) / float64(maxLabels-1)
		ticks := make([]plot.Tick, 0, maxLabels)
		for i := 0; i < maxLabels; i++ {
			v := min + float64(i)*step
			ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf(labelFmt, v)})
		}
		return ticks
	})
}

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(22)
	p.Title.Padding = vg.Points(12)

	p.X.Label.TextStyle.Font.Size = vg.Points(18)
	p.Y.Label.TextStyle.Font.Size = vg.Points(18)
	p.X.Label.Padding = vg.Points(10)
	p.Y.Label.Padding = vg.Points(10)

	p.X.Padding = vg.Points(20)
	p.Y.Padding = vg.Points(20)

	p.X.Tick.Label.Font.Size = vg.Points(14)
	p.Y.Tick.Label.Font.Size = vg.Points(14)

	p.X.Tick.Marker = limitedTicker(8, "%.1f")
	p.Y.Tick.Marker = limitedTicker(8, "%.1f")

	p.Legend.Top = true
	p.Legend.TextStyle.Font.Size = vg.Points(14)
	p.Add(plotter.NewGrid())
}

// Trajectory plots the top-down path, y against x.
func Trajectory(result *dynamo.Result) (*plot.Plot, error) {
	if result.Len() == 0 {
		return nil, fmt.Errorf("empty trajectory")
	}

	p := plot.New()
	p.Title.Text = "Trajectory (top view)"
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"
	stylePlot(p)

	xs := result.Component(0)
	ys := result.Component(1)
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Width = vg.Points(3.0)
	line.LineStyle.Color = plotutil.Color(0)
	points.Shape = draw.CircleGlyph{}
	points.Radius = vg.Points(2)
	points.Color = plotutil.Color(0)
	p.Add(line, points)
	p.Legend.Add("path", line)

	return p, nil
}

// Components plots the selected state components against time, one line
// each. Indices outside the state are rejected.
func Components(result *dynamo.Result, indices []int, title, ylabel string) (*plot.Plot, error) {
	if result.Len() == 0 {
		return nil, fmt.Errorf("empty trajectory")
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("no components selected")
	}
	dim := len(result.States[0])
	labels := storage.Header(dim)[1:]

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = ylabel
	stylePlot(p)

	for n, idx := range indices {
		if idx < 0 || idx >= dim {
			return nil, fmt.Errorf("component %d out of range [0, %d)", idx, dim)
		}
		ys := result.Component(idx)
		pts := make(plotter.XYs, len(ys))
		for i := range ys {
			pts[i].X = result.Times[i]
			pts[i].Y = ys[i]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Width = vg.Points(3.0)
		line.LineStyle.Color = plotutil.Color(n)
		line.LineStyle.Dashes = plotutil.Dashes(n)
		p.Add(line)
		p.Legend.Add(labels[idx], line)
	}

	return p, nil
}

func WritePNG(w io.Writer, p *plot.Plot, size Size) error {
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(size.WidthIn)*vg.Inch, vg.Length(size.HeightIn)*vg.Inch),
		vgimg.UseDPI(size.DPI),
	)
	p.Draw(draw.New(c))

	bw := bufio.NewWriter(w)
	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}

func SavePNG(p *plot.Plot, size Size, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	return WritePNG(f, p, size)
}

// SaveAll writes trajectory.png, position.png, velocity.png and
// angular_velocity.png for a 9-dimensional run into dir.
func SaveAll(result *dynamo.Result, dir string, size Size) ([]string, error) {
	traj, err := Trajectory(result)
	if err != nil {
		return nil, err
	}

	plots := []struct {
		file    string
		title   string
		ylabel  string
		indices []int
	}{
		{"position.png", "Position", "m", []int{0, 1, 2}},
		{"velocity.png", "Linear velocity", "m/s", []int{3, 4, 5}},
		{"angular_velocity.png", "Angular velocity", "rad/s", []int{6, 7, 8}},
	}

	written := []string{filepath.Join(dir, "trajectory.png")}
	if err := SavePNG(traj, size, written[0]); err != nil {
		return nil, err
	}
	for _, pl := range plots {
		p, err := Components(result, pl.indices, pl.title, pl.ylabel)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, pl.file)
		if err := SavePNG(p, size, path); err != nil {
			return nil, err
		}
		written = append(written, path)
	}
	return written, nil
}
