package overview

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet the export writes to.
const SheetName = "Overview"

// ExportContentType is the MIME type of the export.
const ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Headers returns the export's column headings: month, budget, one column per
// filtered category, one per recurring subcategory, then the month total.
func (o Overview) Headers() []string {
	headers := []string{"Month", "Budget"}
	headers = append(headers, o.FilteredCategories...)
	for _, name := range o.RecurringSubcategories() {
		headers = append(headers, RecurringCategory+": "+name)
	}
	return append(headers, "Total")
}

// WriteXLSX writes the overview as a workbook with one row per month.
// Cells with no activity are left empty.
func (o Overview) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]interface{}, 0, len(o.FilteredCategories)+3)
	for _, h := range o.Headers() {
		header = append(header, h)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	recurring := o.RecurringSubcategories()
	for i, month := range o.Months {
		e := o.MonthlyData[month]
		row := make([]interface{}, 0, len(header))
		row = append(row, month)
		if e.Budget != nil {
			row = append(row, cell(*e.Budget))
		} else {
			row = append(row, nil)
		}
		for _, c := range o.FilteredCategories {
			row = append(row, optionalCell(e.Categories, c))
		}
		for _, s := range recurring {
			row = append(row, optionalCell(e.Recurring, s))
		}
		row = append(row, cell(e.Total()))

		start, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, start, &row); err != nil {
			return fmt.Errorf("writing row %s: %w", month, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func cell(d decimal.Decimal) interface{} {
	return d.Round(2).InexactFloat64()
}

func optionalCell(values map[string]decimal.Decimal, key string) interface{} {
	v, ok := values[key]
	if !ok {
		return nil
	}
	return cell(v)
}
