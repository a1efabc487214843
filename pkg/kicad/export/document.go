// Package export renders a schematic model and its nets into the canonical
// JSON document consumed downstream.
package export

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/OpenTraceLab/schnet/pkg/kicad/netlist"
	"github.com/OpenTraceLab/schnet/pkg/kicad/schematic"
)

// ParserVersion is stamped into every document's processing metadata.
const ParserVersion = "1.0.0"

// ReadableTimeLayout renders parsed_date_readable, always in UTC.
const ReadableTimeLayout = "2006-01-02 15:04:05 UTC"

// Document is the canonical output record. All maps keep insertion order
// so re-serializing an unchanged model is byte-identical apart from the
// processing metadata.
type Document struct {
	ProcessingMeta *ProcessingMeta                                `json:"bedroq-meta,omitzero"`
	Metadata       Metadata                                       `json:"metadata"`
	LibrarySymbols *orderedmap.OrderedMap[string, *LibrarySymbol] `json:"library_symbols"`
	Components     *orderedmap.OrderedMap[string, *Component]     `json:"components"`
	Nets           *orderedmap.OrderedMap[string, *Net]           `json:"nets"`
	Wires          []schematic.Wire                               `json:"wires"`
	Junctions      []schematic.Point                              `json:"junctions"`
	Labels         []schematic.Label                              `json:"labels"`
}

// ProcessingMeta identifies one parser run.
type ProcessingMeta struct {
	ParserVersion      string `json:"parser_version"`
	OriginalFilename   string `json:"original_filename"`
	ProcessingID       string `json:"processing_id,omitempty"`
	ParsedDateUnix     int64  `json:"parsed_date_unix"`
	ParsedDateReadable string `json:"parsed_date_readable"`
}

// Metadata carries the scalar header fields, title block and free-form
// text annotations. Fields absent from the source are omitted.
type Metadata struct {
	Version          string                                 `json:"version,omitempty"`
	Generator        string                                 `json:"generator,omitempty"`
	GeneratorVersion string                                 `json:"generator_version,omitempty"`
	UUID             string                                 `json:"uuid,omitempty"`
	Paper            string                                 `json:"paper,omitempty"`
	TitleBlock       *orderedmap.OrderedMap[string, string] `json:"title_block,omitzero"`
	TextAnnotations  []schematic.Text                       `json:"text_annotations,omitempty"`
}

// LibrarySymbol is the document form of a library prototype.
type LibrarySymbol struct {
	ID         string                `json:"id"`
	Pins       *schematic.Pins       `json:"pins"`
	Properties *schematic.Properties `json:"properties"`
	Graphics   []schematic.Graphic   `json:"graphics,omitzero"`
}

// Component is the document form of a placed symbol.
type Component struct {
	Reference  string                `json:"reference"`
	Value      string                `json:"value"`
	Footprint  string                `json:"footprint"`
	Position   schematic.Point       `json:"position"`
	Rotation   float64               `json:"rotation"`
	LibraryID  string                `json:"library_id"`
	Pins       *schematic.Pins       `json:"pins"`
	Properties *schematic.Properties `json:"properties"`
}

// Net is the document form of a synthesized net.
type Net struct {
	Name          string            `json:"name"`
	Index         int               `json:"index"`
	NameCollision bool              `json:"name_collision,omitempty"`
	Pins          []netlist.PinRef  `json:"pins"`
	Wires         []schematic.Wire  `json:"wires"`
	Junctions     []schematic.Point `json:"junctions"`
	Labels        []schematic.Label `json:"labels"`
}
