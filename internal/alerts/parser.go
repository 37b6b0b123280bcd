package alerts

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// ParseFeed decodes a CAP feed into its alerts, one per <entry> element, in
// document order. The decoder is a pull-token state machine: it never builds
// a full document tree. Leaf elements outside an entry are ignored, as are
// unrecognized leaves inside one. An entry is finalized when its closing tag
// is seen, whether or not any fields were present. Malformed XML is returned
// as an error; an empty feed yields an empty slice.
func ParseFeed(r io.Reader) ([]Alert, error) {
	dec := xml.NewDecoder(r)

	parsed := []Alert{}
	var current *Alert

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse CAP feed: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "entry" {
				current = &Alert{}
				continue
			}
			if current == nil {
				continue
			}
			switch t.Name.Local {
			case "title":
				if err := decodeLeaf(dec, &t, &current.Headline); err != nil {
					return nil, err
				}
			case "description":
				if err := decodeLeaf(dec, &t, &current.Description); err != nil {
					return nil, err
				}
			case "areaDesc":
				if err := decodeLeaf(dec, &t, &current.AreaDesc); err != nil {
					return nil, err
				}
			case "severity":
				if err := decodeLeaf(dec, &t, &current.Severity); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "entry" && current != nil {
				parsed = append(parsed, *current)
				current = nil
			}
		}
	}

	return parsed, nil
}

func decodeLeaf(dec *xml.Decoder, start *xml.StartElement, dst *string) error {
	if err := dec.DecodeElement(dst, start); err != nil {
		return fmt.Errorf("parse CAP feed: %w", err)
	}
	return nil
}
