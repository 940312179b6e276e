package orders

import (
	"bytes"
	"fmt"

	"gadgethub/models"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// InvoicePayload is what the invoice QR code encodes.
func InvoicePayload(o *models.OrderView) string {
	return fmt.Sprintf("gadgethub|order|%s|%.2f", o.ID.Hex(), o.TotalAmount)
}

// RenderInvoice lays out an A4 invoice with one row per order line and a QR
// code carrying the order id and total.
func RenderInvoice(o *models.OrderView) ([]byte, error) {
	qrPNG, err := qrcode.Encode(InvoicePayload(o), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("generate QR code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+o.ID.Hex(), true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(40, 10, "Invoice")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Order: %s", o.ID.Hex()))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Date: %s", o.CreatedAt.Format("2006-01-02 15:04")))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Status: %s / payment %s", o.OrderStatus, o.PaymentStatus))
	pdf.Ln(6)
	pdf.MultiCell(120, 7, "Ship to: "+o.ShippingAddress, "", "L", false)
	pdf.Ln(6)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 20, 40, 40, false, imageOpts, 0, "")

	pdf.SetY(70)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(100, 8, "Item", "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Price", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Subtotal", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, l := range o.Products {
		name := "(removed product)"
		if l.Product != nil {
			name = l.Product.Name
		}
		pdf.CellFormat(100, 8, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%d", l.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", l.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", l.Price*float64(l.Quantity)), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(150, 9, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 9, fmt.Sprintf("%.2f", o.TotalAmount), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice: %w", err)
	}
	return buf.Bytes(), nil
}
