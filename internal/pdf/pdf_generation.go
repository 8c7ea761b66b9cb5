package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"workeradmin/internal/models"
)

// Generator is what the profile export handler depends on.
type Generator interface {
	WorkerProfile(w *models.Worker) ([]byte, error)
}

// ProfileGenerator renders the "download my data" document. With FontPath
// set it embeds that TTF; otherwise it uses Helvetica with a cp1252
// translator, which covers Spanish.
type ProfileGenerator struct {
	FontPath string
	Now      func() time.Time
	fontName string
}

func NewProfileGenerator(fontPath string) *ProfileGenerator {
	g := &ProfileGenerator{FontPath: fontPath, Now: time.Now, fontName: "Helvetica"}
	if fontPath != "" {
		g.fontName = "Custom"
	}
	return g
}

func (g *ProfileGenerator) WorkerProfile(w *models.Worker) ([]byte, error) {
	if w == nil {
		return nil, fmt.Errorf("pdf: nil worker")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Datos personales", true)
	pdf.SetAuthor("Panel de trabajadores", true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	tr := g.setupFont(pdf)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, tr("DATOS PERSONALES"), "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 7, tr("Generado el "+g.Now().Format("02/01/2006 15:04")), "", 1, "C", false, 0, "")
	g.hr(pdf)

	g.sectionTitle(pdf, tr("Trabajador"))
	g.kvLine(pdf, tr("Nombre"), tr(w.Nombre))
	g.kvLine(pdf, tr("Apellido"), tr(w.Apellido))
	g.kvLine(pdf, tr("Email"), tr(w.Email))
	g.kvLine(pdf, tr("Usuario"), tr(w.Usuario))
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, tr("Permisos"))
	g.kvLine(pdf, tr("Acceso"), tr(yesNo(w.Permiso)))
	g.kvLine(pdf, tr("Administrador"), tr(yesNo(w.Administrador)))
	g.kvLine(pdf, tr("Usuario visible"), tr(yesNo(w.UsuarioVisible)))
	pdf.Ln(2)
	g.hr(pdf)

	pdf.SetFont(g.fontName, "", 10)
	pdf.MultiCell(0, 5, tr("La contraseña se almacena cifrada y no forma parte de este documento. "+
		"Puede eliminar su cuenta en cualquier momento desde su perfil."), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func yesNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}

func (g *ProfileGenerator) setupFont(pdf *gofpdf.Fpdf) func(string) string {
	if g.FontPath != "" {
		pdf.AddUTF8Font(g.fontName, "", g.FontPath)
		pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
		return func(s string) string { return s }
	}
	return pdf.UnicodeTranslatorFromDescriptor("")
}

func (g *ProfileGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *ProfileGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *ProfileGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}
