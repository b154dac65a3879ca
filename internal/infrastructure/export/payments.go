// Package export reads and writes the CSV and XLSX files of the payment and stores modules.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"confhub/internal/core/types"
	"confhub/internal/domain/payments"
)

// PaymentsSheet is the worksheet name of the payments workbook.
const PaymentsSheet = "Payments"

var paymentHeader = []string{
	"Reference", "Source", "Name", "Email", "Organization", "Category",
	"Amount", "Currency", "Status", "Payment Proof", "Submitted At",
}

func paymentCells(r payments.Record) []string {
	proof := "no"
	if r.PaymentProof {
		proof = "yes"
	}
	return []string{
		r.Reference, string(r.Source), r.Name, r.Email, r.Organization, r.Category,
		r.Amount.StringFixed(2), r.Currency, r.Status, proof, r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// amountColumn is the only numeric column of paymentCells.
const amountColumn = 6

// spreadsheetSafe stops spreadsheet apps from evaluating submitter text
// such as =HYPERLINK(...) when a CSV export is opened.
func spreadsheetSafe(cell string) string {
	if cell != "" && strings.ContainsRune("=+-@\t\r", rune(cell[0])) {
		return "'" + cell
	}
	return cell
}

// PaymentsCSV writes the header and one line per record. Text cells that a
// spreadsheet would read as a formula are prefixed with a quote.
func PaymentsCSV(w io.Writer, view *payments.View) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(paymentHeader); err != nil {
		return err
	}
	for _, r := range view.Items {
		cells := paymentCells(r)
		for i := range cells {
			if i != amountColumn {
				cells[i] = spreadsheetSafe(cells[i])
			}
		}
		if err := cw.Write(cells); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// PaymentsXLSX writes a one-sheet workbook with a totals block under the rows.
func PaymentsXLSX(w io.Writer, view *payments.View) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", PaymentsSheet); err != nil {
		return err
	}

	row := 1
	if err := setRow(f, PaymentsSheet, row, toAny(paymentHeader)); err != nil {
		return err
	}
	for _, r := range view.Items {
		row++
		cells := toAny(paymentCells(r))
		cells[6] = r.Amount.InexactFloat64()
		if err := setRow(f, PaymentsSheet, row, cells); err != nil {
			return err
		}
	}

	row++
	totals := []struct {
		label  string
		amount types.Money
	}{
		{"Total", view.Totals.All},
		{"Pending", view.Totals.Pending},
		{"Approved", view.Totals.Approved},
		{"Rejected", view.Totals.Rejected},
	}
	for _, t := range totals {
		row++
		if err := setRow(f, PaymentsSheet, row, []any{"", "", "", "", "", t.label, t.amount.InexactFloat64()}); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(PaymentsSheet, "A", "K", 18); err != nil {
		return err
	}
	return f.Write(w)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
