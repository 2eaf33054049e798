package lake

// Segment is one (classification, text) pair of a Block.
type Segment struct {
	Classification Classification `json:"classification"`
	Text           string         `json:"text"`
}

// Block holds every segment produced from one top-level body element.
// Classifications and Texts always have the same length; position i in one
// belongs to position i in the other.
type Block struct {
	Classifications []Classification
	Texts           []string
}

// add appends a segment, keeping both slices in step.
func (b *Block) add(c Classification, text string) {
	b.Classifications = append(b.Classifications, c)
	b.Texts = append(b.Texts, text)
}

func (b *Block) addSegments(segments []Segment) {
	for _, s := range segments {
		b.add(s.Classification, s.Text)
	}
}

// Len returns the number of segments in the block.
func (b *Block) Len() int {
	return len(b.Classifications)
}

// Segment returns the i-th segment.
func (b *Block) Segment(i int) Segment {
	return Segment{Classification: b.Classifications[i], Text: b.Texts[i]}
}

// Segments returns a copy of the block as a slice of pairs.
func (b *Block) Segments() []Segment {
	segments := make([]Segment, 0, b.Len())
	for i := range b.Classifications {
		segments = append(segments, b.Segment(i))
	}
	return segments
}
