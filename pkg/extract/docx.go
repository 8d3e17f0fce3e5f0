package extract

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"io"
	"strings"

	"docuchat/pkg/types"
	"docuchat/pkg/utils"
)

// DocxExtractor extracts text from Office Open XML documents by streaming
// word/document.xml out of the zip container. Runs in <w:t> elements carry
// the text; paragraph ends become newlines.
type DocxExtractor struct{}

var _ Extractor = (*DocxExtractor)(nil)

// NewDocxExtractor creates a new DOCX extractor.
func NewDocxExtractor() *DocxExtractor {
	return &DocxExtractor{}
}

// Extract returns the document body as a single page; DOCX has no fixed
// pagination until layout.
func (e *DocxExtractor) Extract(ctx context.Context, path string) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, utils.NewConversionError("failed to open DOCX container", err)
	}
	defer archive.Close()

	for _, file := range archive.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, utils.NewConversionError("failed to open document body", err)
		}
		text, err := documentXMLText(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		return &Result{Pages: singlePage(text), Method: types.MethodDirect}, nil
	}

	return nil, utils.NewConversionError("DOCX container has no word/document.xml", nil)
}

// Supports reports whether the extractor handles this extension.
func (e *DocxExtractor) Supports(ext string) bool {
	return ext == "docx"
}

// Name returns the extractor name.
func (e *DocxExtractor) Name() string {
	return "docx"
}

// documentXMLText walks the WordprocessingML token stream. Only w:t content
// is text; w:p closes to a newline and w:tab/w:br to their whitespace.
func documentXMLText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var b strings.Builder
	inText := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", utils.NewConversionError("malformed document XML", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteString("\t")
			case "br":
				b.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return strings.TrimSpace(b.String()), nil
}
