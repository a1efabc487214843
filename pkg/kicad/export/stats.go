package export

// Statistics summarizes a document.
type Statistics struct {
	Components            int `json:"components"`
	Nets                  int `json:"nets"`
	NetsWithPins          int `json:"nets_with_pins"`
	DanglingNets          int `json:"dangling_nets"`
	NameCollisions        int `json:"name_collisions"`
	LibrarySymbols        int `json:"library_symbols"`
	Wires                 int `json:"wires"`
	Junctions             int `json:"junctions"`
	Labels                int `json:"labels"`
	UnconnectedComponents int `json:"unconnected_components"`
}

// Stats counts the contents of doc.
func Stats(doc *Document) Statistics {
	s := Statistics{
		Components:            doc.Components.Len(),
		Nets:                  doc.Nets.Len(),
		LibrarySymbols:        doc.LibrarySymbols.Len(),
		Wires:                 len(doc.Wires),
		Junctions:             len(doc.Junctions),
		Labels:                len(doc.Labels),
		UnconnectedComponents: len(Unconnected(doc)),
	}
	for pair := doc.Nets.Oldest(); pair != nil; pair = pair.Next() {
		n := pair.Value
		if len(n.Pins) > 0 {
			s.NetsWithPins++
		} else {
			s.DanglingNets++
		}
		if n.NameCollision {
			s.NameCollisions++
		}
	}
	return s
}

// Unconnected lists, in document order, the references of components that
// have no pin on any net.
func Unconnected(doc *Document) []string {
	connected := make(map[string]bool)
	for pair := doc.Nets.Oldest(); pair != nil; pair = pair.Next() {
		for _, p := range pair.Value.Pins {
			connected[p.Component] = true
		}
	}

	var refs []string
	for pair := doc.Components.Oldest(); pair != nil; pair = pair.Next() {
		if !connected[pair.Key] {
			refs = append(refs, pair.Key)
		}
	}
	return refs
}
