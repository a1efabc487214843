package export

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/OpenTraceLab/schnet/pkg/kicad/netlist"
	"github.com/OpenTraceLab/schnet/pkg/kicad/schematic"
	"github.com/OpenTraceLab/schnet/pkg/kicad/sexp/kicadsexp"
)

func loadFixture(t *testing.T) (*schematic.Schematic, []*netlist.Net) {
	t.Helper()
	sch, err := schematic.ParseFile("../schematic/testdata/divider.kicad_sch")
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	nets, err := netlist.FromSchematic(sch, nil)
	if err != nil {
		t.Fatalf("FromSchematic failed: %v", err)
	}
	return sch, nets
}

func TestSerializeTopLevelLayout(t *testing.T) {
	sch, nets := loadFixture(t)
	ts := time.Date(2024, 3, 2, 10, 30, 0, 0, time.UTC)
	doc := Serialize(sch, nets, Options{Filename: "divider.kicad_sch", ProcessingID: "run-1", Timestamp: ts})

	data, err := Marshal(doc, true)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	for _, key := range []string{"bedroq-meta", "metadata", "library_symbols", "components", "nets", "wires", "junctions", "labels"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing top-level key %q", key)
		}
	}

	if _, ok := raw["processing_meta"]; ok {
		t.Error("metadata block must be keyed bedroq-meta")
	}

	var meta ProcessingMeta
	if err := json.Unmarshal(raw["bedroq-meta"], &meta); err != nil {
		t.Fatalf("bedroq-meta: %v", err)
	}
	want := ProcessingMeta{
		ParserVersion:      ParserVersion,
		OriginalFilename:   "divider.kicad_sch",
		ProcessingID:       "run-1",
		ParsedDateUnix:     ts.Unix(),
		ParsedDateReadable: "2024-03-02 10:30:00 UTC",
	}
	if meta != want {
		t.Errorf("bedroq-meta = %+v, want %+v", meta, want)
	}

	// Top-level key order is fixed
	order := []string{`"bedroq-meta"`, `"metadata"`, `"library_symbols"`, `"components"`, `"nets"`, `"wires"`, `"junctions"`, `"labels"`}
	last := -1
	for _, k := range order {
		idx := bytes.Index(data, []byte(k))
		if idx < last {
			t.Errorf("key %s out of order", k)
		}
		last = idx
	}
}

func TestSerializeComponentAndNetShape(t *testing.T) {
	sch, nets := loadFixture(t)
	doc := Serialize(sch, nets, Options{Filename: "x"})

	data, err := Marshal(doc, false)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var out struct {
		Components map[string]struct {
			Reference  string                     `json:"reference"`
			LibraryID  string                     `json:"library_id"`
			Position   map[string]float64         `json:"position"`
			Pins       map[string]map[string]any  `json:"pins"`
			Properties map[string]map[string]any  `json:"properties"`
		} `json:"components"`
		Nets map[string]struct {
			Name      string               `json:"name"`
			Pins      [][2]string          `json:"pins"`
			Wires     []map[string]any     `json:"wires"`
			Junctions []map[string]float64 `json:"junctions"`
		} `json:"nets"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	r1 := out.Components["R1"]
	if r1.Reference != "R1" || r1.LibraryID != "Device:R" {
		t.Errorf("R1 = %+v", r1)
	}
	if r1.Position["x"] != 100 || r1.Position["y"] != 45 {
		t.Errorf("R1 position = %v", r1.Position)
	}
	if _, ok := r1.Properties["MPN"]; !ok {
		t.Error("custom MPN property must be kept")
	}
	if _, ok := r1.Properties["Datasheet"]["effects"]; !ok {
		t.Error("effects should be present without stripping")
	}

	vout, ok := out.Nets["VOUT"]
	if !ok {
		t.Fatal("VOUT net missing")
	}
	if !reflect.DeepEqual(vout.Pins, [][2]string{{"R1", "2"}, {"R2", "1"}}) {
		t.Errorf("VOUT pins = %v", vout.Pins)
	}
	if len(vout.Wires) != 3 || len(vout.Junctions) != 1 {
		t.Errorf("VOUT wires=%d junctions=%d", len(vout.Wires), len(vout.Junctions))
	}
}

func TestSerializeStable(t *testing.T) {
	sch, nets := loadFixture(t)

	first, err := Marshal(Serialize(sch, nets, Options{Filename: "a", Timestamp: time.Unix(1, 0)}), true)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	second, err := Marshal(Serialize(sch, nets, Options{Filename: "a", Timestamp: time.Unix(1, 0)}), true)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("re-serializing an unchanged model must be byte-identical")
	}
}

func TestContentHashIgnoresProcessingMeta(t *testing.T) {
	sch, nets := loadFixture(t)

	a := Serialize(sch, nets, Options{Filename: "a", ProcessingID: "1", Timestamp: time.Unix(100, 0)})
	b := Serialize(sch, nets, Options{Filename: "b", ProcessingID: "2", Timestamp: time.Unix(200, 0)})

	ha, err := ContentHash(a)
	if err != nil {
		t.Fatalf("ContentHash failed: %v", err)
	}
	hb, _ := ContentHash(b)
	if ha != hb {
		t.Errorf("hashes differ: %s vs %s", ha, hb)
	}
	if len(ha) != 64 {
		t.Errorf("expected hex sha256, got %q", ha)
	}
	if a.ProcessingMeta == nil {
		t.Error("ContentHash must not modify the document")
	}

	c := Serialize(sch, nets[:1], Options{Filename: "a"})
	if hc, _ := ContentHash(c); hc == ha {
		t.Error("different content should hash differently")
	}
}

func TestStripPresentation(t *testing.T) {
	sch, nets := loadFixture(t)
	doc := Serialize(sch, nets, Options{Filename: "x", StripPresentation: true})

	data, err := Marshal(doc, false)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	s := string(data)
	for _, banned := range []string{`"effects"`, `"graphics"`, `"font"`, `"justify"`} {
		if strings.Contains(s, banned) {
			t.Errorf("stripped output still contains %s", banned)
		}
	}

	r1, _ := doc.Components.Get("R1")
	if _, ok := r1.Properties.Get("Datasheet"); ok {
		t.Error("Datasheet with ~ value should be removed")
	}
	if _, ok := r1.Properties.Get("MPN"); !ok {
		t.Error("MPN must survive stripping")
	}

	// The model itself is untouched
	orig, _ := sch.Components.Get("R1")
	if _, ok := orig.Properties.Get("Datasheet"); !ok {
		t.Error("stripping must not modify the model")
	}
}

func TestCollidingNetsKeyedByIndex(t *testing.T) {
	input := `(kicad_sch
		(wire (pts (xy 0 0) (xy 10 0)))
		(wire (pts (xy 0 20) (xy 10 20)))
		(label "GND" (at 0 0 0))
		(label "GND" (at 0 20 0))
	)`
	sch, err := schematic.ParseText(input, kicadsexp.Options{})
	if err != nil {
		t.Fatalf("ParseText failed: %v", err)
	}
	nets, err := netlist.FromSchematic(sch, nil)
	if err != nil {
		t.Fatalf("FromSchematic failed: %v", err)
	}

	doc := Serialize(sch, nets, Options{})
	if doc.Nets.Len() != 2 {
		t.Fatalf("both nets must be kept, got %d", doc.Nets.Len())
	}
	second, ok := doc.Nets.Get("GND#1")
	if !ok || !second.NameCollision || second.Name != "GND" {
		t.Errorf("second GND net = %+v", second)
	}
	if Stats(doc).NameCollisions != 1 {
		t.Errorf("expected 1 collision in stats")
	}
}

func TestLabelMatchingCollisionKeyKeepsAllNets(t *testing.T) {
	input := `(kicad_sch
		(wire (pts (xy 0 0) (xy 10 0)))
		(wire (pts (xy 0 20) (xy 10 20)))
		(wire (pts (xy 0 40) (xy 10 40)))
		(label "GND" (at 0 0 0))
		(label "GND" (at 0 20 0))
		(label "GND#1" (at 0 40 0))
	)`
	sch, err := schematic.ParseText(input, kicadsexp.Options{})
	if err != nil {
		t.Fatalf("ParseText failed: %v", err)
	}
	nets, err := netlist.FromSchematic(sch, nil)
	if err != nil {
		t.Fatalf("FromSchematic failed: %v", err)
	}

	doc := Serialize(sch, nets, Options{})
	if doc.Nets.Len() != len(nets) {
		t.Fatalf("document has %d nets, synthesized %d", doc.Nets.Len(), len(nets))
	}
	for _, key := range []string{"GND", "GND#1", "GND#1#2"} {
		if _, ok := doc.Nets.Get(key); !ok {
			t.Errorf("missing net %q", key)
		}
	}
	if got, _ := doc.Nets.Get("GND#1"); got == nil || got.Name != "GND" || got.Index != 1 {
		t.Errorf("GND#1 = %+v, want the second GND net", got)
	}
}

func TestEmptyListsEncodeAsArrays(t *testing.T) {
	sch, err := schematic.ParseText(`(kicad_sch (version 1))`, kicadsexp.Options{})
	if err != nil {
		t.Fatalf("ParseText failed: %v", err)
	}
	data, err := Marshal(Serialize(sch, nil, Options{}), false)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	for _, frag := range []string{`"wires":[]`, `"junctions":[]`, `"labels":[]`, `"nets":{}`, `"components":{}`} {
		if !bytes.Contains(data, []byte(frag)) {
			t.Errorf("output missing %s: %s", frag, data)
		}
	}
	if bytes.Contains(data, []byte(`"title_block"`)) {
		t.Error("absent title block should be omitted")
	}
}

func TestMarshalDoesNotEscapeHTML(t *testing.T) {
	sch, err := schematic.ParseText(`(kicad_sch (title_block (title "A<B & C>")))`, kicadsexp.Options{})
	if err != nil {
		t.Fatalf("ParseText failed: %v", err)
	}
	data, err := Marshal(Serialize(sch, nil, Options{}), false)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !bytes.Contains(data, []byte(`"A<B & C>"`)) {
		t.Errorf("title should be verbatim: %s", data)
	}
}

func TestStatsAndUnconnected(t *testing.T) {
	sch, nets := loadFixture(t)
	doc := Serialize(sch, nets, Options{})

	got := Stats(doc)
	want := Statistics{
		Components:            3,
		Nets:                  3,
		NetsWithPins:          3,
		LibrarySymbols:        1,
		Wires:                 5,
		Junctions:             1,
		Labels:                3,
		UnconnectedComponents: 1,
	}
	if got != want {
		t.Errorf("Stats = %+v, want %+v", got, want)
	}
	if u := Unconnected(doc); !reflect.DeepEqual(u, []string{"TP1"}) {
		t.Errorf("Unconnected = %v, want [TP1]", u)
	}
}

func TestUnmarshalRoundTrip(t *testing.T) {
	sch, nets := loadFixture(t)
	doc := Serialize(sch, nets, Options{Filename: "divider.kicad_sch", Timestamp: time.Unix(5, 0)})
	data, err := Marshal(doc, true)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	back, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	again, err := Marshal(back, true)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Error("decoded document should re-encode identically")
	}
}
