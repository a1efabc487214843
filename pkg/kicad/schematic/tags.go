package schematic

// Tag is the closed set of top-level schematic node kinds the builder
// understands. Everything else maps to TagUnknown and is ignored.
type Tag int

const (
	TagUnknown Tag = iota
	TagVersion
	TagGenerator
	TagGeneratorVersion
	TagUUID
	TagPaper
	TagTitleBlock
	TagLibSymbols
	TagWire
	TagJunction
	TagLabel
	TagHierarchicalLabel
	TagSymbol
	TagText

	tagCount
)

var tagNames = [tagCount]string{
	TagUnknown:           "unknown",
	TagVersion:           "version",
	TagGenerator:         "generator",
	TagGeneratorVersion:  "generator_version",
	TagUUID:              "uuid",
	TagPaper:             "paper",
	TagTitleBlock:        "title_block",
	TagLibSymbols:        "lib_symbols",
	TagWire:              "wire",
	TagJunction:          "junction",
	TagLabel:             "label",
	TagHierarchicalLabel: "hierarchical_label",
	TagSymbol:            "symbol",
	TagText:              "text",
}

var tagsByName = func() map[string]Tag {
	m := make(map[string]Tag, tagCount)
	for t := TagUnknown + 1; t < tagCount; t++ {
		m[tagNames[t]] = t
	}
	return m
}()

// ParseTag maps a node name to its Tag
func ParseTag(name string) Tag {
	if t, ok := tagsByName[name]; ok {
		return t
	}
	return TagUnknown
}

func (t Tag) String() string {
	if t < 0 || t >= tagCount {
		return tagNames[TagUnknown]
	}
	return tagNames[t]
}

// RootTag is the head symbol of a schematic file
const RootTag = "kicad_sch"

// Nested node names used inside the top-level records
const (
	nodeAt        = "at"
	nodePts       = "pts"
	nodeXY        = "xy"
	nodeProperty  = "property"
	nodePin       = "pin"
	nodeEffects   = "effects"
	nodeLength    = "length"
	nodeName      = "name"
	nodeNumber    = "number"
	nodeLibID     = "lib_id"
	nodeSymbol    = "symbol"
	nodeComment   = "comment"
	propReference = "Reference"
	propValue     = "Value"
	propFootprint = "Footprint"
)

// graphicTags are the library symbol children kept as opaque graphics
var graphicTags = map[string]bool{
	"symbol":    true,
	"polyline":  true,
	"rectangle": true,
	"circle":    true,
	"arc":       true,
	"bezier":    true,
	"text":      true,
}
