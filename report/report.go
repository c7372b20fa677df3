// Package report renders simulation results as a text table or a chart.
package report

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/lucasmaystre/titrekick/scenario"
)

var ErrEmpty = errors.New("nothing to plot")

// WriteTable writes one line per measurement.
func WriteTable(w io.Writer, res *scenario.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "individual\ttime\tstrain\ttitre")
	for _, ind := range res.Individuals {
		for _, d := range ind.Draws {
			for k, s := range d.Strains {
				fmt.Fprintf(tw, "%s\t%g\t%d\t%.4f\n", ind.ID, d.Time, s, d.Titres[k])
			}
		}
	}
	return tw.Flush()
}

type seriesKey struct {
	id     string
	strain int
}

// Series groups measurements into one titre trajectory per individual and
// measured strain, in order of first appearance.
func Series(res *scenario.Result) ([]string, []plotter.XYs) {
	var (
		keys  []seriesKey
		index = make(map[seriesKey]int)
		data  []plotter.XYs
	)
	for _, ind := range res.Individuals {
		for _, d := range ind.Draws {
			for k, s := range d.Strains {
				key := seriesKey{id: ind.ID, strain: s}
				i, ok := index[key]
				if !ok {
					i = len(keys)
					index[key] = i
					keys = append(keys, key)
					data = append(data, nil)
				}
				data[i] = append(data[i], plotter.XY{X: d.Time, Y: d.Titres[k]})
			}
		}
	}
	names := make([]string, len(keys))
	for i, key := range keys {
		names[i] = key.id + "/" + strconv.Itoa(key.strain)
		sort.SliceStable(data[i], func(a, b int) bool { return data[i][a].X < data[i][b].X })
	}
	return names, data
}

// Plot saves a line chart of every titre trajectory. The image format
// follows the file extension.
func Plot(res *scenario.Result, path string) error {
	names, data := Series(res)
	if len(data) == 0 {
		return ErrEmpty
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Predicted titres (%s model)", res.Model)
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "Titre"

	args := make([]interface{}, 0, 2*len(data))
	for i := range data {
		args = append(args, names[i], data[i])
	}
	if err := plotutil.AddLinePoints(p, args...); err != nil {
		return fmt.Errorf("add titre series: %w", err)
	}
	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}
