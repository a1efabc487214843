package export

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/OpenTraceLab/schnet/pkg/kicad/netlist"
	"github.com/OpenTraceLab/schnet/pkg/kicad/schematic"
)

// Options controls document assembly.
type Options struct {
	Filename     string    // Original input name, stamped into bedroq-meta
	ProcessingID string    // Optional run identifier
	Timestamp    time.Time // Parse time; zero means now

	// StripPresentation drops display-only content: every effects map,
	// every graphics list, and Datasheet properties whose value is "" or "~".
	StripPresentation bool
}

// Serialize assembles the canonical document. The model is not modified.
func Serialize(sch *schematic.Schematic, nets []*netlist.Net, opts Options) *Document {
	ts := opts.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	ts = ts.UTC()

	doc := &Document{
		ProcessingMeta: &ProcessingMeta{
			ParserVersion:      ParserVersion,
			OriginalFilename:   opts.Filename,
			ProcessingID:       opts.ProcessingID,
			ParsedDateUnix:     ts.Unix(),
			ParsedDateReadable: ts.Format(ReadableTimeLayout),
		},
		Metadata: Metadata{
			Version:          sch.Version,
			Generator:        sch.Generator,
			GeneratorVersion: sch.GeneratorVersion,
			UUID:             sch.UUID,
			Paper:            sch.Paper,
			TitleBlock:       sch.TitleBlock,
		},
		LibrarySymbols: orderedmap.New[string, *LibrarySymbol](),
		Components:     orderedmap.New[string, *Component](),
		Nets:           orderedmap.New[string, *Net](),
		Wires:          nonNil(sch.Wires),
		Junctions:      junctionPoints(sch.Junctions),
		Labels:         nonNil(sch.Labels),
	}

	for _, t := range sch.Texts {
		if opts.StripPresentation {
			t.Effects = nil
		}
		doc.Metadata.TextAnnotations = append(doc.Metadata.TextAnnotations, t)
	}

	for pair := sch.LibSymbols.Oldest(); pair != nil; pair = pair.Next() {
		sym := pair.Value
		out := &LibrarySymbol{
			ID:         sym.ID,
			Pins:       sym.Pins,
			Properties: properties(sym.Properties, opts.StripPresentation),
		}
		if !opts.StripPresentation {
			out.Graphics = nonNil(sym.Graphics)
		}
		doc.LibrarySymbols.Set(pair.Key, out)
	}

	for pair := sch.Components.Oldest(); pair != nil; pair = pair.Next() {
		c := pair.Value
		doc.Components.Set(pair.Key, &Component{
			Reference:  c.Reference,
			Value:      c.Value,
			Footprint:  c.Footprint,
			Position:   c.Position,
			Rotation:   c.Rotation,
			LibraryID:  c.LibraryID,
			Pins:       c.Pins,
			Properties: properties(c.Properties, opts.StripPresentation),
		})
	}

	for _, n := range nets {
		doc.Nets.Set(n.Key(), &Net{
			Name:          n.Name,
			Index:         n.Index,
			NameCollision: n.NameCollision,
			Pins:          nonNil(n.Pins),
			Wires:         nonNil(n.Wires),
			Junctions:     junctionPoints(n.Junctions),
			Labels:        nonNil(n.Labels),
		})
	}

	return doc
}

// properties copies a property bag, applying presentation stripping.
func properties(in *schematic.Properties, strip bool) *schematic.Properties {
	if !strip {
		return in
	}
	out := orderedmap.New[string, *schematic.Property]()
	for pair := in.Oldest(); pair != nil; pair = pair.Next() {
		p := *pair.Value
		if p.Name == "Datasheet" && (p.Value == "" || p.Value == "~") {
			continue
		}
		p.Effects = nil
		out.Set(pair.Key, &p)
	}
	return out
}

func junctionPoints(js []schematic.Junction) []schematic.Point {
	pts := make([]schematic.Point, 0, len(js))
	for _, j := range js {
		pts = append(pts, j.Position)
	}
	return pts
}

// nonNil makes empty lists encode as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Marshal encodes the document as JSON. HTML characters are not escaped.
// With indent set the output is two-space indented.
func Marshal(doc *Document, indent bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return buf.Bytes(), nil
}

// ContentHash returns the hex SHA-256 of the compact document without its
// processing metadata. Two runs over the same input hash identically.
func ContentHash(doc *Document) (string, error) {
	stripped := *doc
	stripped.ProcessingMeta = nil

	data, err := Marshal(&stripped, false)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Unmarshal decodes a document previously produced by Marshal.
func Unmarshal(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return &doc, nil
}
