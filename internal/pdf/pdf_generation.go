package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"resumebuilder/internal/models"
)

// Generator renders documents; an interface so handlers can be tested with
// a mock.
type Generator interface {
	RenderResume(resume *models.Resume) ([]byte, error)
}

type documentGenerator struct {
	fontName string
}

func NewGenerator() Generator {
	return &documentGenerator{fontName: "Helvetica"}
}

// RenderResume lays out a resume as a single-column A4 document and returns
// the PDF bytes, ready to stream as an attachment.
func (g *documentGenerator) RenderResume(resume *models.Resume) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle(fmt.Sprintf("Resume - %s", resume.PersonalInfo.Name), false)
	doc.SetAuthor(resume.PersonalInfo.Name, false)
	doc.SetMargins(20, 20, 20)
	doc.SetAutoPageBreak(true, 20)
	doc.AddPage()

	// ===== Header
	doc.SetFont(g.fontName, "B", 20)
	doc.CellFormat(0, 10, resume.PersonalInfo.Name, "", 1, "C", false, 0, "")

	doc.SetFont(g.fontName, "", 11)
	contact := strings.Join(nonEmpty(
		resume.PersonalInfo.Email,
		resume.PersonalInfo.Phone,
		resume.PersonalInfo.Address,
	), "  |  ")
	doc.CellFormat(0, 6, contact, "", 1, "C", false, 0, "")
	g.hr(doc)

	// ===== Work experience
	if len(resume.WorkExperience) > 0 {
		g.sectionTitle(doc, "Work Experience")
		for _, w := range resume.WorkExperience {
			doc.SetFont(g.fontName, "B", 11)
			doc.CellFormat(0, 6, fmt.Sprintf("%s, %s", w.JobTitle, w.Company), "", 1, "L", false, 0, "")
			doc.SetFont(g.fontName, "I", 10)
			doc.CellFormat(0, 5, w.Duration, "", 1, "L", false, 0, "")
			doc.Ln(2)
		}
		g.hr(doc)
	}

	// ===== Education
	if len(resume.Education) > 0 {
		g.sectionTitle(doc, "Education")
		for _, e := range resume.Education {
			doc.SetFont(g.fontName, "B", 11)
			doc.CellFormat(0, 6, e.School, "", 1, "L", false, 0, "")
			doc.SetFont(g.fontName, "", 11)
			doc.CellFormat(0, 5, fmt.Sprintf("%s, %d", e.Degree, e.Year), "", 1, "L", false, 0, "")
			doc.Ln(1)
		}
		g.hr(doc)
	}

	// ===== Skills
	if len(resume.Skills) > 0 {
		g.sectionTitle(doc, "Skills")
		doc.SetFont(g.fontName, "", 11)
		doc.MultiCell(0, 6, strings.Join(resume.Skills, ", "), "", "L", false)
	}

	doc.AliasNbPages("")
	doc.SetFooterFunc(func() {
		doc.SetY(-15)
		doc.SetFont(g.fontName, "", 9)
		doc.CellFormat(0, 10,
			fmt.Sprintf("Page %d/{nb}", doc.PageNo()),
			"", 0, "C", false, 0, "",
		)
	})

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *documentGenerator) sectionTitle(doc *gofpdf.Fpdf, s string) {
	doc.SetFont(g.fontName, "B", 13)
	doc.CellFormat(0, 8, s, "", 1, "L", false, 0, "")
	doc.SetFont(g.fontName, "", 11)
}

func (g *documentGenerator) hr(doc *gofpdf.Fpdf) {
	y := doc.GetY() + 1.5
	doc.SetLineWidth(0.2)
	doc.Line(20, y, 190, y)
	doc.SetY(y + 3)
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
