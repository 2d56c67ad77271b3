package domain

import "sort"

// Schema declares the attributes a kind carries, in write order.
type Schema struct {
	Kind       Kind
	Attributes []string
}

var schemas = map[Kind]Schema{
	KindBook:       {Kind: KindBook, Attributes: []string{"id", "name"}},
	KindPerson:     {Kind: KindPerson, Attributes: []string{"name", "country"}},
	KindBookSeries: {Kind: KindBookSeries, Attributes: []string{"name"}},
	KindPublisher:  {Kind: KindPublisher, Attributes: []string{"id", "name"}},
	KindTopic:      {Kind: KindTopic, Attributes: []string{"name"}},
	KindCNCategory: {Kind: KindCNCategory, Attributes: []string{"id"}},
	KindCategory:   {Kind: KindCategory, Attributes: []string{"id", "name", "level"}},
}

func SchemaFor(kind Kind) (Schema, bool) {
	s, ok := schemas[kind]
	return s, ok
}

// Kinds lists every known kind in a stable order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(schemas))
	for k := range schemas {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s Schema) Has(attr string) bool {
	for _, a := range s.Attributes {
		if a == attr {
			return true
		}
	}
	return false
}

// IdentifierKey is "id" when the kind has an id attribute, else "name".
func IdentifierKey(kind Kind) string {
	if s, ok := schemas[kind]; ok && s.Has("id") {
		return "id"
	}
	return "name"
}
