/*
Copyright © 2025 Equilab
*/
package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/montanaflynn/stats"
	"golang.org/x/exp/slices"
)

// Level is one categorical value and its row count.
type Level struct {
	Value string
	Count int
}

// ColumnSummary describes one metadata column: min/max/mean/median for
// numeric columns, level counts for categorical ones.
type ColumnSummary struct {
	Name       string
	Type       string
	NonMissing int
	Missing    int

	Min    float64
	Max    float64
	Mean   float64
	Median float64

	Levels []Level
}

// Summarize computes a per-column summary of the table, key column excluded.
func Summarize(t Table) []ColumnSummary {
	cols := t.Columns()
	typs := t.Types()

	summaries := make([]ColumnSummary, 0, len(cols))
	for i, col := range cols {
		cs := ColumnSummary{Name: col, Type: typs[i]}
		records := t.Records(col)

		if cs.Type == "numeric" {
			var data []float64
			for _, v := range records {
				if v == "" {
					cs.Missing++
					continue
				}
				f, err := strconv.ParseFloat(v, 64)
				if err != nil {
					// Normalize already coerced these cells.
					cs.Missing++
					continue
				}
				data = append(data, f)
			}
			cs.NonMissing = len(data)
			if len(data) > 0 {
				cs.Min, _ = stats.Min(data)
				cs.Max, _ = stats.Max(data)
				cs.Mean, _ = stats.Mean(data)
				cs.Median, _ = stats.Median(data)
			}
			summaries = append(summaries, cs)
			continue
		}

		counts := make(map[string]int)
		for _, v := range records {
			if v == "" {
				cs.Missing++
				continue
			}
			cs.NonMissing++
			counts[v]++
		}
		values := make([]string, 0, len(counts))
		for v := range counts {
			values = append(values, v)
		}
		slices.Sort(values)
		for _, v := range values {
			cs.Levels = append(cs.Levels, Level{Value: v, Count: counts[v]})
		}
		summaries = append(summaries, cs)
	}
	return summaries
}

// WriteSummaryTSV writes the column summaries as a tab-delimited report.
func WriteSummaryTSV(summaries []ColumnSummary, path string) error {
	var b strings.Builder
	b.WriteString("column\ttype\tnon-missing\tmissing\tmin\tmax\tmean\tmedian\tlevels\n")
	for _, cs := range summaries {
		var min, max, mean, median, levels string
		if cs.Type == "numeric" {
			if cs.NonMissing > 0 {
				min = strconv.FormatFloat(cs.Min, 'g', -1, 64)
				max = strconv.FormatFloat(cs.Max, 'g', -1, 64)
				mean = strconv.FormatFloat(cs.Mean, 'g', 6, 64)
				median = strconv.FormatFloat(cs.Median, 'g', -1, 64)
			}
		} else {
			parts := make([]string, 0, len(cs.Levels))
			for _, l := range cs.Levels {
				parts = append(parts, fmt.Sprintf("%s=%d", l.Value, l.Count))
			}
			levels = strings.Join(parts, ";")
		}
		b.WriteString(fmt.Sprintf("%s\t%s\t%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
			cs.Name, cs.Type, cs.NonMissing, cs.Missing, min, max, mean, median, levels))
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing summary file %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing summary file %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("finalizing summary file %s: %w", path, err)
	}
	return nil
}

func levelBarChart(cs ColumnSummary) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Samples per %s", cs.Name)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Samples"}),
	)

	var names []string
	var data []opts.BarData
	for _, l := range cs.Levels {
		names = append(names, l.Value)
		data = append(data, opts.BarData{Value: l.Count})
	}
	bar.SetXAxis(names).AddSeries("samples", data)
	return bar
}

// WriteSummaryHTML renders bar charts of sample counts for the grouping
// columns the downstream statistics are run against.
func WriteSummaryHTML(summaries []ColumnSummary, path string) error {
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)

	charted := 0
	for _, cs := range summaries {
		switch cs.Name {
		case "subject", "sample-type", "disease-state", "gender":
			page.AddCharts(levelBarChart(cs))
			charted++
		}
	}
	if charted == 0 {
		return fmt.Errorf("no grouping columns found to chart for %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart file %s: %w", path, err)
	}
	defer f.Close()
	return page.Render(f)
}
