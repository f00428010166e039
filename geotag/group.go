package geotag

// Group is an ordered collection of features.
type Group struct {
	tag      Tag
	elements []Feature
}

func NewGroup(tag Tag) *Group { return &Group{tag: tag} }

func (g *Group) Tag() *Tag  { return &g.tag }
func (g *Group) Kind() Kind { return KindGroup }

// Append adds features at the end of the group.
func (g *Group) Append(fs ...Feature) { g.elements = append(g.elements, fs...) }

// Remove removes the first occurrence of `f`,
// returning false if it is not in the group.
func (g *Group) Remove(f Feature) bool {
	for i, e := range g.elements {
		if e == f {
			g.elements = append(g.elements[:i], g.elements[i+1:]...)
			return true
		}
	}
	return false
}

func (g *Group) Len() int            { return len(g.elements) }
func (g *Group) At(i int) Feature    { return g.elements[i] }
func (g *Group) Elements() []Feature { return g.elements }

// Walk calls `fn` for every feature of the tree rooted at `g`
// (excluding `g` itself), depth first, with the style inherited
// from the enclosing groups.
func (g *Group) Walk(fn func(f Feature, inherited Style)) {
	g.walk(fn, g.tag.Style)
}

func (g *Group) walk(fn func(f Feature, inherited Style), parent Style) {
	for _, e := range g.elements {
		fn(e, parent)
		if sub := asGroup(e); sub != nil {
			sub.walk(fn, sub.tag.Style.Inherit(parent))
		}
	}
}

func asGroup(f Feature) *Group {
	switch f := f.(type) {
	case *Group:
		return f
	case *Document:
		return &f.Group
	}
	return nil
}

// Document is the root group of a map, with the canvas attributes
// used by the SVG output.
type Document struct {
	Group

	// Width and Height override the canvas size attributes
	// when not empty.
	Width, Height string
}

func NewDocument(tag Tag) *Document { return &Document{Group: Group{tag: tag}} }

func (d *Document) Kind() Kind { return KindDocument }
