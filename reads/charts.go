/*
Copyright © 2025 Equilab
*/
package reads

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

func countChart(stats []Stat) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{Title: "Reads per sample"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Reads"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Sample"}),
	)

	var names []string
	var forward, reverse []opts.BarData
	for _, s := range stats {
		names = append(names, s.SampleID)
		forward = append(forward, opts.BarData{Value: s.ForwardReads})
		reverse = append(reverse, opts.BarData{Value: s.ReverseReads})
	}
	bar.SetXAxis(names).
		AddSeries("forward", forward).
		AddSeries("reverse", reverse)
	return bar
}

func qualChart(stats []Stat) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{Title: "Mean read quality per sample"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Mean Phred quality"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Sample"}),
	)

	var names []string
	var forward, reverse []opts.LineData
	for _, s := range stats {
		names = append(names, s.SampleID)
		forward = append(forward, opts.LineData{Value: s.ForwardMeanQual})
		reverse = append(reverse, opts.LineData{Value: s.ReverseMeanQual})
	}
	line.SetXAxis(names).
		AddSeries("forward", forward).
		AddSeries("reverse", reverse)
	return line
}

// WriteHTML renders the read-count and quality charts the operator uses to
// pick denoising truncation parameters downstream.
func WriteHTML(stats []Stat, path string) error {
	if len(stats) == 0 {
		return fmt.Errorf("no read stats to chart for %s", path)
	}

	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(countChart(stats), qualChart(stats))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart file %s: %w", path, err)
	}
	defer f.Close()
	return page.Render(f)
}
