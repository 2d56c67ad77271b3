package parser

import (
	"errors"
	"strings"

	"github.com/yungbote/bookgraph/internal/domain"
)

const (
	bookNameSeparator = "/"
	categoryLevel     = 3
)

var ErrMissingBookID = errors.New("record has no book_id")

// Parsed is everything one record contributes to the graph.
type Parsed struct {
	Book       domain.Book
	Series     *domain.BookSeries
	Roles      Roles
	Publisher  domain.Publisher
	Topics     []domain.Topic
	CNCategory *domain.CNCategory
	Category   domain.Category
	Warnings   []string
}

// Parse decodes all compound fields of rec. It fails only when the record has no book id.
func Parse(rec Record) (*Parsed, error) {
	book := ExtractBook(rec)
	if strings.TrimSpace(book.ID) == "" {
		return nil, ErrMissingBookID
	}
	p := &Parsed{
		Book:      book,
		Roles:     ExtractAuthors(rec),
		Publisher: ExtractPublisher(rec),
		Category:  ExtractCategory(rec),
	}
	if s, ok := ExtractBookSeries(rec); ok {
		p.Series = &s
	}
	if c, ok := ExtractCNCategory(rec); ok {
		p.CNCategory = &c
	}
	p.Topics, p.Warnings = ExtractTopics(rec)
	return p, nil
}

// Relations lists the edges of the record in write order.
func (p *Parsed) Relations() []domain.Relation {
	var rels []domain.Relation
	for _, role := range p.Roles {
		for _, person := range role.Persons {
			rels = append(rels, domain.Relation{From: person, To: p.Book, Label: role.Relation})
		}
	}
	if p.Series != nil {
		rels = append(rels, domain.Relation{From: p.Book, To: *p.Series, Label: domain.LabelIsInSeries})
	}
	rels = append(rels, domain.Relation{From: p.Publisher, To: p.Book, Label: domain.LabelPublish})
	for _, t := range p.Topics {
		rels = append(rels, domain.Relation{From: p.Book, To: t, Label: domain.LabelHasTopic})
	}
	if p.CNCategory != nil {
		rels = append(rels, domain.Relation{From: p.Book, To: *p.CNCategory, Label: domain.LabelIsInCNCategory})
	}
	rels = append(rels, domain.Relation{From: p.Book, To: p.Category, Label: domain.LabelIsInCategory})
	return rels
}

func ExtractBook(rec Record) domain.Book {
	name, _, _ := strings.Cut(rec.Get(ColBookNameStr), bookNameSeparator)
	return domain.Book{ID: rec.Get(ColBookID), Name: name}
}

// ExtractBookSeries returns everything after the first "/" of the book name as the series name.
func ExtractBookSeries(rec Record) (domain.BookSeries, bool) {
	_, rest, found := strings.Cut(rec.Get(ColBookNameStr), bookNameSeparator)
	if !found {
		return domain.BookSeries{}, false
	}
	return domain.BookSeries{Name: rest}, true
}

func ExtractPublisher(rec Record) domain.Publisher {
	return domain.Publisher{ID: rec.Get(ColPublisherID), Name: rec.Get(ColPublisherName)}
}

func ExtractCNCategory(rec Record) (domain.CNCategory, bool) {
	id := rec.Get(ColCNCategory)
	if id == "" {
		return domain.CNCategory{}, false
	}
	return domain.CNCategory{ID: id}, true
}

func ExtractCategory(rec Record) domain.Category {
	return domain.Category{
		ID:    rec.Get(ColCategory3ID),
		Name:  rec.Get(ColCategory3Name),
		Level: categoryLevel,
	}
}
