package hrxml

import (
	"bytes"
	"io"

	"github.com/beevik/etree"
	"golang.org/x/text/encoding/charmap"

	"pilott-date-editor/internal/domain/entity"
)

const xmlDeclaration = `version="1.0" encoding="` + entity.DocumentEncoding + `"`

// DecodeDocument converts ISO-8859-1 bytes to UTF-8, whatever the document declares
func DecodeDocument(data []byte) ([]byte, error) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return nil, entity.WrapError(entity.KindEncoding, err)
	}
	return out, nil
}

// EncodeDocument converts UTF-8 bytes to ISO-8859-1.
// Characters outside Latin-1 are an encoding error.
func EncodeDocument(data []byte) ([]byte, error) {
	out, err := charmap.ISO8859_1.NewEncoder().Bytes(data)
	if err != nil {
		return nil, entity.WrapError(entity.KindEncoding, err)
	}
	return out, nil
}

// Input is decoded before parsing, so the declared charset needs no conversion
func passthroughCharset(_ string, input io.Reader) (io.Reader, error) {
	return input, nil
}

func newReadDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = passthroughCharset
	return doc
}

// Serialize writes doc with the canonical declaration, two-space indentation
// and explicit end tags, encoded in ISO-8859-1.
func Serialize(doc *etree.Document) ([]byte, error) {
	setDeclaration(doc)
	doc.WriteSettings.CanonicalEndTags = true
	doc.Indent(2)

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, err
	}
	if !bytes.HasSuffix(out, []byte("\n")) {
		out = append(out, '\n')
	}

	return EncodeDocument(out)
}

func setDeclaration(doc *etree.Document) {
	for _, t := range doc.Child {
		if pi, ok := t.(*etree.ProcInst); ok && pi.Target == "xml" {
			pi.Inst = xmlDeclaration
			return
		}
	}
	doc.InsertChildAt(0, etree.NewProcInst("xml", xmlDeclaration))
}
