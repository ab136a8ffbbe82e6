package report

import (
	"bytes"
	"fmt"
	"regexp"
	"time"

	"github.com/rmacedo/custeio/internal/domain/pricing"
	"github.com/rmacedo/custeio/internal/domain/user"
	"github.com/go-pdf/fpdf"
)

const margin = 14.0

var headerFill = [3]int{37, 99, 235}

// Build renders the currently filtered view plus the requester's profile
// into a paginated PDF: title, user block, generation timestamp, grid
// table, trailing total line. The table section may be empty; the header
// and the total line always render.
func Build(profile user.User, records []pricing.Record, now time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// Título
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(headerFill[0], headerFill[1], headerFill[2])
	pdf.SetXY(margin, 14)
	pdf.CellFormat(0, 8, tr("Relatório de Custeio Derivado"), "", 1, "L", false, 0, "")

	pdf.SetDrawColor(200, 200, 200)
	lineY := pdf.GetY() + 2
	pdf.Line(margin, lineY, 210-margin, lineY)
	pdf.SetY(lineY + 4)

	// Dados do usuário
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetX(margin)
	pdf.CellFormat(0, 6, tr("Dados do Usuário"), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	userLines := []string{
		"Nome: " + orNA(profile.Nome),
		"CPF: " + orNA(profile.CPF),
		"Email: " + orNA(profile.Email),
		"Telefone: " + orNA(profile.Telefone),
		fmt.Sprintf("Endereço: %s, %s - %s", orNA(profile.Endereco), profile.Cidade, profile.Estado),
		"CEP: " + orNA(profile.CEP),
	}
	for _, line := range userLines {
		pdf.SetX(margin)
		pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
	}

	pdf.SetTextColor(100, 100, 100)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetX(margin)
	pdf.CellFormat(0, 5, tr("Data de exportação: "+pricing.FormatUpdateDate(now)), "", 1, "L", false, 0, "")

	lineY = pdf.GetY() + 2
	pdf.Line(margin, lineY, 210-margin, lineY)
	pdf.SetY(lineY + 4)

	writeTable(pdf, tr, records)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(margin, pdf.GetY()+4)
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Total de registros: %d", len(records))), "", 1, "L", false, 0, "")

	var buf bytes.Buffer

	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

type column struct {
	title string
	width float64
	align string
}

// widths follow the on-screen table proportions
var columns = []column{
	{"Local", 30, "L"},
	{"UF", 12, "C"},
	{"Produto", 35, "L"},
	{"Modal.", 18, "L"},
	{"Custeio Der.", 24, "R"},
	{"Custeio Bio.", 24, "R"},
	{"FOB Zero", 24, "R"},
}

func writeTable(pdf *fpdf.Fpdf, tr func(string) string, records []pricing.Record) {
	drawHead := func() {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetFillColor(headerFill[0], headerFill[1], headerFill[2])
		pdf.SetTextColor(255, 255, 255)
		pdf.SetX(margin)
		for _, c := range columns {
			pdf.CellFormat(c.width, 6, tr(c.title), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}

	drawHead()

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(0, 0, 0)

	for _, r := range records {
		// keep the head with its rows across page breaks
		if pdf.GetY() > 270 {
			pdf.AddPage()
			drawHead()
			pdf.SetFont("Helvetica", "", 7)
			pdf.SetTextColor(0, 0, 0)
		}

		cells := []string{
			r.Local,
			r.UFDestino,
			r.Produto,
			r.ModalidadeVenda,
			pricing.FormatMoney(r.CusteioDerivado),
			pricing.FormatMoney(r.CusteioBiocomb),
			pricing.FormatMoney(r.FOBZero),
		}

		pdf.SetX(margin)
		for i, c := range columns {
			pdf.CellFormat(c.width, 5, tr(cells[i]), "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}

var whitespace = regexp.MustCompile(`\s+`)

// FileName embeds the requester's name (whitespace collapsed to "_") and
// the generation date.
func FileName(nome string, now time.Time) string {
	if nome == "" {
		nome = "usuario"
	}

	return fmt.Sprintf("custeio_derivado_%s_%s.pdf",
		whitespace.ReplaceAllString(nome, "_"),
		now.Format("2006-01-02"),
	)
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}
