package parser

import (
	"regexp"
	"strings"

	"github.com/yungbote/bookgraph/internal/domain"
)

var (
	roleSegmentRe = regexp.MustCompile(`^(.+):(.+)`)
	personTokenRe = regexp.MustCompile(`^\((.+)\)(.+)`)
)

const (
	roleSeparator   = "|"
	personSeparator = "//"
)

// Role is the persons one "|"-segment of the author field relates to the book, under one label.
type Role struct {
	Relation string
	Persons  []domain.Person
}

// Roles keeps one entry per author-field segment, in field order.
type Roles []Role

// Map is the label view of the roles. A later segment with a label already seen replaces the earlier one.
func (rs Roles) Map() map[string][]domain.Person {
	out := make(map[string][]domain.Person, len(rs))
	for _, r := range rs {
		out[r.Relation] = r.Persons
	}
	return out
}

// ExtractAuthors decodes "<relation>:<persons>|<persons>|..." where persons is
// "(country)name//name//...". Segments without a relation prefix default to WRITE.
func ExtractAuthors(rec Record) Roles {
	return parseAuthors(rec.Get(ColAuthorStr))
}

func parseAuthors(authorStr string) Roles {
	segments := strings.Split(authorStr, roleSeparator)
	roles := make(Roles, 0, len(segments))
	for _, seg := range segments {
		if m := roleSegmentRe.FindStringSubmatch(seg); m != nil {
			roles = append(roles, Role{Relation: m[1], Persons: parsePersons(m[2])})
			continue
		}
		roles = append(roles, Role{Relation: domain.LabelWrite, Persons: parsePersons(seg)})
	}
	return roles
}

func parsePersons(s string) []domain.Person {
	tokens := strings.Split(s, personSeparator)
	persons := make([]domain.Person, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		if m := personTokenRe.FindStringSubmatch(tok); m != nil {
			persons = append(persons, domain.Person{Name: m[2], Country: m[1]})
			continue
		}
		persons = append(persons, domain.Person{Name: tok})
	}
	return persons
}
