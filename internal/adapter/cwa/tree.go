package cwa

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/couchcryptid/quake-risk-etl/internal/domain"
)

type frame struct {
	name     string
	children map[string]any
	text     strings.Builder
}

// DecodeTree parses an XML document into a RawCatalog. Every child element is
// appended to a []any under its local name; elements without children become
// their character data. Attributes are ignored.
func DecodeTree(r io.Reader) (domain.RawCatalog, error) {
	dec := xml.NewDecoder(r)
	root := &frame{children: map[string]any{}}
	stack := []*frame{root}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode catalog xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, &frame{name: t.Name.Local, children: map[string]any{}})
		case xml.CharData:
			stack[len(stack)-1].text.Write(t)
		case xml.EndElement:
			if len(stack) < 2 {
				return nil, fmt.Errorf("decode catalog xml: unexpected end element %q", t.Name.Local)
			}
			done := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			parent := stack[len(stack)-1]

			var value any = done.children
			if len(done.children) == 0 {
				value = done.text.String()
			}
			list, _ := parent.children[done.name].([]any)
			parent.children[done.name] = append(list, value)
		}
	}

	if len(stack) != 1 {
		return nil, errors.New("decode catalog xml: unexpected end of document")
	}
	if len(root.children) == 0 {
		return nil, errors.New("decode catalog xml: empty document")
	}
	return domain.RawCatalog(root.children), nil
}
