package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yungbote/bookgraph/internal/domain"
)

// An optional single leading digit (a weight in the export), then a name that starts with a non-digit.
var topicTokenRe = regexp.MustCompile(`^[0-9]?([^0-9].*)`)

const topicSeparator = "//"

// ExtractTopics returns the distinct topics of the record. Tokens that do not carry a name
// are skipped and reported in warnings.
func ExtractTopics(rec Record) (topics []domain.Topic, warnings []string) {
	return parseTopics(rec.Get(ColTopicStr))
}

func parseTopics(topicStr string) ([]domain.Topic, []string) {
	if topicStr == "" {
		return nil, nil
	}
	var (
		topics   []domain.Topic
		warnings []string
		seen     = map[string]struct{}{}
	)
	for _, tok := range strings.Split(topicStr, topicSeparator) {
		m := topicTokenRe.FindStringSubmatch(tok)
		if m == nil {
			warnings = append(warnings, fmt.Sprintf("cannot process topic token %q", tok))
			continue
		}
		name := m[1]
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		topics = append(topics, domain.Topic{Name: name})
	}
	return topics, warnings
}
