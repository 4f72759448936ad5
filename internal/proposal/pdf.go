package proposal

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/painelsoft/mdfcopilot/internal/models"
)

// PDFInput is everything needed to render a substitution proposal.
type PDFInput struct {
	Original   models.Product
	Suggested  models.Product
	ClientText string
	// QRContent, when set, is rendered as a QR code on the page
	// (typically a link to the suggested product's photo).
	QRContent string
	Seller    string
}

// BuildPDF renders a one-page substitution proposal the seller can
// print or attach.
func BuildPDF(in PDFInput) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Proposta de Substituicao", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 12, "Proposta de Substituicao")
	pdf.Ln(16)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(110, 110, 110)
	pdf.Cell(0, 6, fmt.Sprintf("Emitida em %s", time.Now().Format("02/01/2006 15:04")))
	if in.Seller != "" {
		pdf.Ln(5)
		pdf.Cell(0, 6, "Vendedor: "+in.Seller)
	}
	pdf.Ln(12)
	pdf.SetTextColor(0, 0, 0)

	productBlock(pdf, "Produto solicitado", in.Original)
	productBlock(pdf, "Produto sugerido", in.Suggested)

	if in.ClientText != "" {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Mensagem para o cliente")
		pdf.Ln(9)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, in.ClientText, "", "L", false)
		pdf.Ln(4)
	}

	if in.QRContent != "" {
		png, err := qrcode.Encode(in.QRContent, qrcode.Medium, 256)
		if err != nil {
			return nil, fmt.Errorf("encode qr: %w", err)
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(png))
		pdf.ImageOptions("qr", 160, pdf.GetY(), 30, 30, false, opts, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetXY(10, pdf.GetY()+10)
		pdf.Cell(0, 6, "Aponte a camera para ver o padrao sugerido.")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func productBlock(pdf *gofpdf.Fpdf, title string, p models.Product) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("%s - %s", p.Brand, p.ProductName))
	pdf.Ln(6)
	details := ""
	if p.ThicknessMM != nil {
		details += fmt.Sprintf("Espessura: %.1fmm   ", *p.ThicknessMM)
	}
	if p.Finish != "" {
		details += "Acabamento: " + p.Finish + "   "
	}
	details += "Codigo: " + p.ProductCode
	pdf.Cell(0, 6, details)
	pdf.Ln(10)
}
