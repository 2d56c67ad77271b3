package domain

import (
	"fmt"
	"strings"
)

type Kind string

const (
	KindBook       Kind = "Book"
	KindPerson     Kind = "Person"
	KindBookSeries Kind = "BookSeries"
	KindPublisher  Kind = "Publisher"
	KindTopic      Kind = "Topic"
	KindCNCategory Kind = "CNCategory"
	KindCategory   Kind = "Category"
)

// Relation labels written by ingestion. Person-to-book roles use WRITE unless the
// author field names another role (e.g. 主编).
const (
	LabelWrite          = "WRITE"
	LabelIsInSeries     = "IS_IN_SERIES"
	LabelPublish        = "PUBLISH"
	LabelHasTopic       = "HAS_TOPIC"
	LabelIsInCNCategory = "IS_IN_CN_CATEGORY"
	LabelIsInCategory   = "IS_IN_CATEGORY"
)

// Property is one attribute value of an entity, in schema order.
type Property struct {
	Key   string
	Value any
}

// Entity is a typed graph node value. Properties omits optional attributes that have no value.
type Entity interface {
	Kind() Kind
	Properties() []Property
}

type Book struct {
	ID   string
	Name string
}

func (Book) Kind() Kind { return KindBook }
func (b Book) Properties() []Property {
	return []Property{{Key: "id", Value: b.ID}, {Key: "name", Value: b.Name}}
}

type Person struct {
	Name    string
	Country string
}

func (Person) Kind() Kind { return KindPerson }
func (p Person) Properties() []Property {
	props := []Property{{Key: "name", Value: p.Name}}
	if p.Country != "" {
		props = append(props, Property{Key: "country", Value: p.Country})
	}
	return props
}

type BookSeries struct {
	Name string
}

func (BookSeries) Kind() Kind { return KindBookSeries }
func (s BookSeries) Properties() []Property {
	return []Property{{Key: "name", Value: s.Name}}
}

type Publisher struct {
	ID   string
	Name string
}

func (Publisher) Kind() Kind { return KindPublisher }
func (p Publisher) Properties() []Property {
	return []Property{{Key: "id", Value: p.ID}, {Key: "name", Value: p.Name}}
}

type Topic struct {
	Name string
}

func (Topic) Kind() Kind { return KindTopic }
func (t Topic) Properties() []Property {
	return []Property{{Key: "name", Value: t.Name}}
}

type CNCategory struct {
	ID string
}

func (CNCategory) Kind() Kind { return KindCNCategory }
func (c CNCategory) Properties() []Property {
	return []Property{{Key: "id", Value: c.ID}}
}

type Category struct {
	ID    string
	Name  string
	Level int
}

func (Category) Kind() Kind { return KindCategory }
func (c Category) Properties() []Property {
	return []Property{
		{Key: "id", Value: c.ID},
		{Key: "name", Value: c.Name},
		{Key: "level", Value: int64(c.Level)},
	}
}

// PropertyMap flattens Properties into a map, the shape graph drivers take as parameters.
func PropertyMap(e Entity) map[string]any {
	props := e.Properties()
	out := make(map[string]any, len(props))
	for _, p := range props {
		out[p.Key] = p.Value
	}
	return out
}

// Identity returns the identifier attribute of e's kind and e's value for it.
func Identity(e Entity) (key string, value string) {
	key = IdentifierKey(e.Kind())
	for _, p := range e.Properties() {
		if p.Key == key {
			return key, fmt.Sprint(p.Value)
		}
	}
	return key, ""
}

// QualifiedID is the global node reference "<Kind>/<identifier value>".
func QualifiedID(kind Kind, value string) string {
	return string(kind) + "/" + value
}

// SplitQualifiedID is the inverse of QualifiedID. Only the first "/" separates kind from value,
// since identifier values (series names) may contain slashes.
func SplitQualifiedID(qid string) (Kind, string, bool) {
	kind, value, ok := strings.Cut(qid, "/")
	if !ok || kind == "" {
		return "", "", false
	}
	return Kind(kind), value, true
}

// Ref identifies a node without its attributes.
type Ref struct {
	Kind  Kind
	Value string
}

func RefOf(e Entity) Ref {
	_, v := Identity(e)
	return Ref{Kind: e.Kind(), Value: v}
}

func (r Ref) String() string { return QualifiedID(r.Kind, r.Value) }

// Relation is a directed labeled edge between two entities. It is identified by (From, To, Label) refs.
type Relation struct {
	From  Entity
	To    Entity
	Label string
}

// Triplet is an exported edge in qualified-identifier form.
type Triplet struct {
	Head  string
	Label string
	Tail  string
}
