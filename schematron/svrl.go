package schematron

import (
	"bytes"
	"encoding/xml"
	"io"

	"github.com/cockroachdb/errors"
)

// SVRLNamespace is the namespace of schematron validation reports.
const SVRLNamespace = "http://purl.oclc.org/dsdl/svrl"

// FailedAssertMarker appears in a report for every failed assertion.
const FailedAssertMarker = "<svrl:failed-assert "

// dedupAttr names, per report element, the attribute that identifies
// repeated siblings.
var dedupAttr = map[string]string{
	"active-pattern": "id",
	"fired-rule":     "context",
}

type span struct{ start, end int64 }

// FilterDuplicates removes repeated report entries from an SVRL document: an
// active-pattern whose id equals that of the preceding active-pattern
// sibling, and a fired-rule whose context equals that of the preceding
// fired-rule sibling. Only children of the root element are considered. The
// rest of the document is kept byte for byte.
func FilterDuplicates(report []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(report))

	var (
		drop  []span
		depth int
		last  = make(map[string]string)
		open  *span
	)
	for {
		start := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "parse validation report")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth != 2 || t.Name.Space != SVRLNamespace {
				continue
			}
			attr, tracked := dedupAttr[t.Name.Local]
			if !tracked {
				continue
			}
			value := attrValue(t, attr)
			if prev, seen := last[t.Name.Local]; seen && prev == value {
				open = &span{start: start}
			}
			last[t.Name.Local] = value
		case xml.EndElement:
			if depth == 2 && open != nil {
				open.end = dec.InputOffset()
				drop = append(drop, *open)
				open = nil
			}
			depth--
		}
	}
	if depth != 0 {
		return nil, errors.New("parse validation report: unexpected end of document")
	}
	if len(drop) == 0 {
		return report, nil
	}

	var out bytes.Buffer
	out.Grow(len(report))
	prev := int64(0)
	for _, s := range drop {
		out.Write(trimTrailingSpace(report[prev:s.start]))
		prev = s.end
	}
	out.Write(report[prev:])
	return out.Bytes(), nil
}

func attrValue(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Space == "" && a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// trimTrailingSpace drops the indentation preceding a removed element.
func trimTrailingSpace(b []byte) []byte {
	return bytes.TrimRight(b, " \t\r\n")
}
