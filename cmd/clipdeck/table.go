package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// pathColumnWidth caps columns holding filesystem paths; longer values wrap.
const pathColumnWidth = 60

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	return renderTableWithWidths(headers, rows, aligns, nil)
}

// renderTableWithWidths renders rows with optional per-column maximum widths.
// A zero width leaves the column unbounded.
func renderTableWithWidths(headers []string, rows [][]string, aligns []columnAlignment, widths []int) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(toRow(headers, columns))
	for _, row := range rows {
		tw.AppendRow(toRow(row, columns))
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		cfg := table.ColumnConfig{Number: i + 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft}
		if i < len(aligns) && aligns[i] == alignRight {
			cfg.Align = text.AlignRight
		}
		if i < len(widths) && widths[i] > 0 {
			cfg.WidthMax = widths[i]
			cfg.WidthMaxEnforcer = text.WrapHard
		}
		configs = append(configs, cfg)
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func toRow(values []string, columns int) table.Row {
	row := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		if i < len(values) {
			row[i] = values[i]
		} else {
			row[i] = ""
		}
	}
	return row
}
