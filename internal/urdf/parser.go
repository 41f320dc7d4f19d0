// Package urdf converts robot description XML into a generic element tree.
//
// The tree keeps every element's tag, attributes (as strings), children in
// document order and trimmed direct text. Interpreting field values is left
// to the consumer.
package urdf

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Extension is the file extension associated with URDF files.
const Extension string = "urdf"

var (
	ErrNoRoot             = errors.New("no root element")
	ErrMultipleRoots      = errors.New("junk after document element")
	ErrTextOutsideRoot    = errors.New("text outside of root element")
	ErrDuplicateAttribute = errors.New("duplicate attribute")
)

// ParseError reports a document that is unreadable or not well-formed.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("urdf: parse error at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("urdf: parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse reads a whole document from r and returns its root element.
func Parse(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true

	var root *Node
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, newParseError(dec, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil {
				return nil, newParseError(dec, ErrMultipleRoots)
			}
			root, err = parseElement(dec, t)
			if err != nil {
				return nil, err
			}
		case xml.CharData:
			if len(bytes.TrimSpace(t)) != 0 {
				return nil, newParseError(dec, ErrTextOutsideRoot)
			}
		}
	}

	if root == nil {
		return nil, &ParseError{Err: ErrNoRoot}
	}
	return root, nil
}

func ParseString(s string) (*Node, error) {
	return Parse(strings.NewReader(s))
}

func ParseBytes(b []byte) (*Node, error) {
	return Parse(bytes.NewReader(b))
}

// ParseFile opens path and parses it. A file that cannot be read is
// reported as a ParseError as well.
func ParseFile(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Err: errors.Wrapf(err, "failed to open %s", path)}
	}
	defer f.Close()
	return Parse(f)
}

func parseElement(dec *xml.Decoder, start xml.StartElement) (*Node, error) {
	attrs, err := newAttributes(start.Attr)
	if err != nil {
		return nil, newParseError(dec, err)
	}
	n := &Node{Tag: qualifiedName(start.Name), Attributes: attrs}

	// only text directly inside this element, children keep their own
	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, newParseError(dec, errors.Errorf("element <%s> not closed", n.Tag))
		}
		if err != nil {
			return nil, newParseError(dec, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			child, err := parseElement(dec, t)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			n.Text = strings.TrimSpace(text.String())
			return n, nil
		}
	}
}

func newAttributes(raw []xml.Attr) (Attributes, error) {
	var attrs Attributes
	for _, a := range raw {
		if isNamespaceDecl(a.Name) {
			continue
		}
		key := qualifiedName(a.Name)
		if attrs.Has(key) {
			return Attributes{}, errors.Wrapf(ErrDuplicateAttribute, "%q", key)
		}
		attrs.Set(key, a.Value)
	}
	return attrs, nil
}

func isNamespaceDecl(name xml.Name) bool {
	return name.Space == "xmlns" || (name.Space == "" && name.Local == "xmlns")
}

// qualifiedName renders namespaced names as {space}local.
func qualifiedName(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return "{" + name.Space + "}" + name.Local
}

func newParseError(dec *xml.Decoder, err error) *ParseError {
	var syn *xml.SyntaxError
	if errors.As(err, &syn) {
		return &ParseError{Line: syn.Line, Err: err}
	}
	line, _ := dec.InputPos()
	return &ParseError{Line: line, Err: err}
}
