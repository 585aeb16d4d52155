package certificate

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Page geometry in millimetres, matching a Letter page with one inch margins.
const (
	inch         = 25.4
	pageMargin   = inch
	headerOffset = inch / 2
	footerOffset = inch / 2
	lineHeight   = 6.0
	bodyFontSize = 11.0
	fontFamily   = "Go"
)

// Color is an RGB text color.
type Color struct {
	R, G, B int
}

// Colors used by the certificate styles.
var (
	Black      = Color{0, 0, 0}
	TitleBlue  = Color{0x17, 0x36, 0x5D}
	HeadBlue   = Color{0x36, 0x5F, 0x91}
	RuleBlue   = Color{0x4F, 0x81, 0xBD}
	PassGreen  = Color{0x05, 0x66, 0x08}
	FailRed    = Color{0xC0, 0x00, 0x00}
	FooterGray = Color{0x40, 0x40, 0x40}
)

// Run is a span of text with uniform formatting inside a paragraph.
type Run struct {
	Text        string
	Bold        bool
	Color       *Color
	Superscript bool
}

// Text returns a plain run.
func Text(s string) Run {
	return Run{Text: s}
}

// Colored returns a run in the given color.
func Colored(s string, c Color) Run {
	return Run{Text: s, Color: &c}
}

// Sup returns a superscript run.
func Sup(s string) Run {
	return Run{Text: s, Superscript: true}
}

// Align is a horizontal block alignment.
type Align int

// Alignments.
const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Layout configures the repeated page header and footer.
type Layout struct {
	Logo         string
	LogoWidth    float64
	FooterLeft   string
	FooterCenter string
}

// Meta is written to the document information dictionary.
type Meta struct {
	Title   string
	Author  string
	Subject string
	Created time.Time
}

// Document is a flowing block document: blocks are appended top to bottom
// and pages break automatically.
type Document struct {
	pdf *fpdf.Fpdf
}

// NewDocument prepares a document with the header and footer installed and
// the first page started. The logo must exist and be a readable image.
func NewDocument(layout Layout, meta Meta) (*Document, error) {
	if _, err := os.Stat(layout.Logo); err != nil {
		return nil, fmt.Errorf("failed to open logo: %w", err)
	}
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetSubject(meta.Subject, true)
	pdf.SetCreator("ramancert", false)
	if !meta.Created.IsZero() {
		pdf.SetCreationDate(meta.Created)
	}
	// Embedded UTF-8 fonts keep operator and device names as written.
	pdf.AddUTF8FontFromBytes(fontFamily, "", goregular.TTF)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", gobold.TTF)
	if pdf.Err() {
		return nil, fmt.Errorf("failed to load fonts: %w", pdf.Error())
	}

	logoOpts := fpdf.ImageOptions{ReadDpi: true}
	info := pdf.RegisterImageOptions(layout.Logo, logoOpts)
	if pdf.Err() {
		return nil, fmt.Errorf("failed to load logo: %w", pdf.Error())
	}
	logoWidth := layout.LogoWidth
	if logoWidth <= 0 {
		logoWidth = 2 * inch
	}
	logoHeight := logoWidth * info.Height() / info.Width()

	d := &Document{pdf: pdf}

	pdf.SetHeaderFunc(func() {
		pageWidth, _ := pdf.GetPageSize()
		x := pageWidth - pageMargin - logoWidth
		pdf.ImageOptions(layout.Logo, x, headerOffset, logoWidth, logoHeight, false, logoOpts, 0, "")
		if bottom := headerOffset + logoHeight + 4; bottom > pageMargin {
			pdf.SetY(bottom)
		}
	})
	pdf.SetFooterFunc(func() {
		pageWidth, _ := pdf.GetPageSize()
		third := (pageWidth - 2*pageMargin) / 3
		pdf.SetY(-(footerOffset + lineHeight))
		pdf.SetFont(fontFamily, "", 9)
		pdf.SetTextColor(FooterGray.R, FooterGray.G, FooterGray.B)
		pdf.CellFormat(third, lineHeight, layout.FooterLeft, "", 0, "L", false, 0, "")
		pdf.CellFormat(third, lineHeight, layout.FooterCenter, "", 0, "C", false, 0, "")
		pdf.CellFormat(third, lineHeight, strconv.Itoa(pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	return d, nil
}

func (d *Document) contentWidth() float64 {
	pageWidth, _ := d.pdf.GetPageSize()
	left, _, right, _ := d.pdf.GetMargins()
	return pageWidth - left - right
}

func (d *Document) setColor(c Color) {
	d.pdf.SetTextColor(c.R, c.G, c.B)
}

// AddTitle writes a large title with a rule underneath.
func (d *Document) AddTitle(text string) {
	d.pdf.SetFont(fontFamily, "", 26)
	d.setColor(TitleBlue)
	d.pdf.MultiCell(0, 12, text, "", "L", false)
	left, _, _, _ := d.pdf.GetMargins()
	y := d.pdf.GetY() + 1
	d.pdf.SetDrawColor(RuleBlue.R, RuleBlue.G, RuleBlue.B)
	d.pdf.SetLineWidth(0.5)
	d.pdf.Line(left, y, left+d.contentWidth(), y)
	d.pdf.Ln(5)
}

// AddHeading writes a bold section heading.
func (d *Document) AddHeading(text string) {
	d.pdf.Ln(4)
	d.pdf.SetFont(fontFamily, "B", 14)
	d.setColor(HeadBlue)
	d.pdf.MultiCell(0, 8, text, "", "L", false)
	d.pdf.Ln(2)
}

// AddParagraph writes runs as one wrapped paragraph.
func (d *Document) AddParagraph(runs ...Run) {
	d.writeRuns(runs)
	d.pdf.Ln(lineHeight + 2)
}

// AddBullet writes a bulleted paragraph with a hanging indent.
func (d *Document) AddBullet(runs ...Run) {
	left, _, _, _ := d.pdf.GetMargins()
	d.pdf.SetFont(fontFamily, "", bodyFontSize)
	d.setColor(Black)
	d.pdf.SetX(left + 6)
	d.pdf.CellFormat(6, lineHeight, "•", "", 0, "L", false, 0, "")
	d.pdf.SetLeftMargin(left + 12)
	d.writeRuns(runs)
	d.pdf.SetLeftMargin(left)
	d.pdf.Ln(lineHeight + 1)
}

func (d *Document) writeRuns(runs []Run) {
	for _, r := range runs {
		style := ""
		if r.Bold {
			style = "B"
		}
		d.pdf.SetFont(fontFamily, style, bodyFontSize)
		if r.Color != nil {
			d.setColor(*r.Color)
		} else {
			d.setColor(Black)
		}
		if r.Superscript {
			d.pdf.SubWrite(lineHeight, r.Text, bodyFontSize*0.6, bodyFontSize*0.35, 0, "")
			continue
		}
		d.pdf.Write(lineHeight, r.Text)
	}
}

// AddImage places an image of the given width, keeping its aspect ratio.
// A new page is started when the image does not fit.
func (d *Document) AddImage(path string, width float64, align Align) error {
	opts := fpdf.ImageOptions{ReadDpi: true}
	info := d.pdf.RegisterImageOptions(path, opts)
	if d.pdf.Err() {
		return fmt.Errorf("failed to load image: %w", d.pdf.Error())
	}
	height := width * info.Height() / info.Width()

	_, pageHeight := d.pdf.GetPageSize()
	if d.pdf.GetY()+height > pageHeight-pageMargin {
		d.pdf.AddPage()
	}
	left, _, _, _ := d.pdf.GetMargins()
	x := left
	switch align {
	case AlignCenter:
		x = left + (d.contentWidth()-width)/2
	case AlignRight:
		x = left + d.contentWidth() - width
	}
	y := d.pdf.GetY()
	d.pdf.ImageOptions(path, x, y, width, height, false, opts, 0, "")
	d.pdf.SetY(y + height + 3)
	return nil
}

// AddSpacer inserts n empty lines.
func (d *Document) AddSpacer(n int) {
	for i := 0; i < n; i++ {
		d.pdf.Ln(lineHeight)
	}
}

// PageCount returns the number of pages started so far.
func (d *Document) PageCount() int {
	return d.pdf.PageCount()
}

// Save writes the document to path, overwriting any existing file.
func (d *Document) Save(path string) error {
	if err := d.pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}
