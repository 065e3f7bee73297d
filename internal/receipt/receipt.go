package receipt

import (
	"fmt"
	"io"

	"go-pos-billing/internal/model"

	"github.com/jung-kurt/gofpdf"
)

// InvoiceNumber is the printed number of a bill: its date plus zero-padded id
func InvoiceNumber(bill *model.Bill) string {
	return fmt.Sprintf("INV-%s-%06d", bill.CreatedAt.Format("20060102"), bill.ID)
}

// Render writes an A4 PDF receipt for bill. Items are expected to carry
// their Product for names and units; a missing product prints its id.
func Render(w io.Writer, bill *model.Bill, items []model.BillItem, shopName string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(InvoiceNumber(bill), true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(shopName), "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(95, 6, "Invoice: "+InvoiceNumber(bill), "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 6, "Date: "+bill.CreatedAt.Format("2006-01-02 15:04"), "", 1, "R", false, 0, "")
	if bill.CustomerName != nil {
		pdf.CellFormat(0, 6, tr("Customer: "+*bill.CustomerName), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	widths := []float64{80, 30, 20, 30, 30}
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range []string{"Item", "Qty", "Unit", "Price", "Amount"} {
		align := "R"
		if i == 0 || i == 2 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 7, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, it := range items {
		name, unit := fmt.Sprintf("#%d", it.ProductID), ""
		if it.Product != nil {
			name, unit = it.Product.Name, it.Product.Unit
		}
		pdf.CellFormat(widths[0], 7, tr(name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, it.Quantity.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, tr(unit), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 7, it.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 7, it.LineTotal.StringFixed(2), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(2)

	summary := [][2]string{
		{"Subtotal", bill.Subtotal.StringFixed(2)},
		{fmt.Sprintf("Discount (%s%%)", bill.DiscountPercent.String()), "-" + bill.DiscountAmount.StringFixed(2)},
		{"Total", bill.Total.StringFixed(2)},
	}
	for i, row := range summary {
		if i == len(summary)-1 {
			pdf.SetFont("Arial", "B", 11)
		}
		pdf.CellFormat(160, 7, row[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, row[1], "", 1, "R", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(0, 6, "Thank you for shopping with us!", "", 1, "C", false, 0, "")

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}
