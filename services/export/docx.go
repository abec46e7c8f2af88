package export

import (
	"os"
	"path/filepath"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

// DocxTableStyle is the bordered grid style applied to exported tables.
const DocxTableStyle = "TableGrid"

// docxText builds a document with an optional bold heading and one paragraph
// per line. Blank lines become empty paragraphs.
func docxText(title, text string) ([]byte, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, err
	}
	if title != "" {
		doc.AddParagraph("").AddText(title).Bold(true)
	}
	for _, line := range paragraphs(text) {
		doc.AddParagraph(line)
	}
	return docxBytes(doc)
}

// docxTable builds a document holding the table title and a bordered table
// with a bold header row.
func docxTable(t Table) ([]byte, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, err
	}
	if t.Title != "" {
		doc.AddParagraph("").AddText(t.Title).Bold(true)
	}

	tbl := doc.AddTable()
	tbl.Style(DocxTableStyle)
	header := tbl.AddRow()
	for _, h := range t.Headers {
		header.AddCell().AddParagraph("").AddText(h).Bold(true)
	}
	for _, row := range t.Rows {
		r := tbl.AddRow()
		for _, cell := range row {
			r.AddCell().AddParagraph(cell)
		}
	}
	return docxBytes(doc)
}

// docxBytes packages doc through a scratch file.
func docxBytes(doc *docx.RootDoc) ([]byte, error) {
	dir, err := os.MkdirTemp("", "docx-export-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "export.docx")
	if err := doc.SaveTo(path); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}
