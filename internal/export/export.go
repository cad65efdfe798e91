package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"smartstock/internal/models"
)

// Table is a header row plus string cells, ready for CSV or XLSX output.
type Table struct {
	Headers []string
	Rows    [][]string
}

func SalesTable(sales []models.Sale) Table {
	t := Table{Headers: []string{"Date", "Customer", "Product", "Quantity", "Unit Price", "Total Amount"}}
	for _, s := range sales {
		t.Rows = append(t.Rows, []string{
			s.Date, s.CustomerName, s.ProductName,
			strconv.Itoa(s.Quantity), money(s.UnitPrice), money(s.TotalAmount),
		})
	}
	return t
}

func PurchasesTable(purchases []models.Purchase) Table {
	t := Table{Headers: []string{"Date", "Supplier", "Product", "Type", "Quantity", "Unit Cost", "Total Cost"}}
	for _, p := range purchases {
		t.Rows = append(t.Rows, []string{
			p.Date, p.SupplierName, p.ProductName, p.TargetKind().Label(),
			strconv.Itoa(p.Quantity), money(p.UnitCost), money(p.TotalCost),
		})
	}
	return t
}

func ProductsTable(products []models.Product) Table {
	t := Table{Headers: []string{"Name", "Unit", "Current Stock", "Min Threshold", "Cost", "Selling Price", "Profit per Unit"}}
	for _, p := range products {
		t.Rows = append(t.Rows, []string{
			p.Name, p.Unit, strconv.Itoa(p.Stock), strconv.Itoa(p.MinThreshold),
			money(p.Cost), money(p.SellingPrice), money(p.SellingPrice.Sub(p.Cost)),
		})
	}
	return t
}

func MaterialsTable(materials []models.RawMaterial) Table {
	t := Table{Headers: []string{"Name", "Unit", "Current Stock", "Min Threshold", "Price"}}
	for _, m := range materials {
		t.Rows = append(t.Rows, []string{
			m.Name, m.Unit, strconv.Itoa(m.Stock), strconv.Itoa(m.MinThreshold), money(m.Price),
		})
	}
	return t
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

// WriteCSV writes t with every field quoted and rows separated by "\n".
// encoding/csv only quotes when it has to, and spreadsheet imports of the
// downloaded files expect every cell quoted.
func WriteCSV(w io.Writer, t Table) error {
	if err := writeCSVRow(w, t.Headers); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
		if err := writeCSVRow(w, row); err != nil {
			return err
		}
	}
	return nil
}

func writeCSVRow(w io.Writer, fields []string) error {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(csvSafe(f), `"`, `""`) + `"`
	}
	_, err := io.WriteString(w, strings.Join(quoted, ","))
	return err
}

// csvSafe prevents CSV formula injection by prefixing text cells that begin
// with a formula-triggering character with a single quote. Numbers such as a
// negative stock level are left alone.
func csvSafe(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		if _, err := decimal.NewFromString(s); err == nil {
			return s
		}
		return "'" + s
	}
	return s
}

// WriteXLSX writes t as a single-sheet workbook.
func WriteXLSX(w io.Writer, sheet string, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for r, row := range t.Rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}

	_, err := f.WriteTo(w)
	return err
}

// Filename builds "<base>_YYYY-MM-DD.<ext>".
func Filename(base, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", base, now.Format(models.DateLayout), ext)
}
