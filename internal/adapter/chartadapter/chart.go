package chartadapter

import (
	"fmt"
	"image/color"
	"io"

	"github.com/jgivc/assignfetch/internal/entity"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	chartWidth  = 10 * vg.Inch
	chartHeight = 4 * vg.Inch
	barWidth    = 8
	labelEvery  = 5
)

var barColor = color.RGBA{R: 0x66, G: 0x7e, B: 0xea, A: 0xff}

// DownloadsPerRoll draws one bar per row and writes a PNG to w.
func DownloadsPerRoll(w io.Writer, rows []entity.RollRow) error {
	p := plot.New()
	p.Title.Text = "Downloads per roll number"
	p.X.Label.Text = "Roll number"
	p.Y.Label.Text = "Downloads"

	values := make(plotter.Values, len(rows))
	labels := make([]string, len(rows))
	for i, row := range rows {
		values[i] = float64(row.Count)
		if i%labelEvery == 0 {
			labels[i] = row.RollNumber.String()
		}
	}

	bars, err := plotter.NewBarChart(values, vg.Points(barWidth))
	if err != nil {
		return fmt.Errorf("cannot build bar chart: %w", err)
	}
	bars.Color = barColor
	bars.LineStyle.Width = 0

	p.Add(bars, plotter.NewGrid())
	p.NominalX(labels...)

	img := vgimg.New(chartWidth, chartHeight)
	p.Draw(draw.New(img))

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("cannot write chart: %w", err)
	}

	return nil
}
