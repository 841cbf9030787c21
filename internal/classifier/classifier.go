// Package classifier routes complaint text to a maintenance category
// using ordered keyword rules. The first rule with a keyword contained
// in the lower-cased text wins.
package classifier

import (
	"strings"

	"github.com/campus-fixit/fixit/internal/domain"
)

// Source tells which stage of the rule table produced a Result.
type Source string

const (
	SourcePrimary  Source = "primary"
	SourceFallback Source = "fallback"
	SourceDefault  Source = "default"
)

// Result is the derived routing for one complaint text.
type Result struct {
	domain.Assignment
	Source  Source
	Matched string
}

// Classifier is immutable and safe for concurrent use.
type Classifier struct {
	rules RuleSet
}

// New builds a Classifier. Keywords are lower-cased once here.
func New(rules RuleSet) *Classifier {
	rules.Primary = normalize(rules.Primary)
	rules.Fallback = normalize(rules.Fallback)
	return &Classifier{rules: rules}
}

var defaultClassifier = New(DefaultRuleSet())

// Classify runs the built-in rule table with the fallback matcher.
func Classify(text string) Result {
	return defaultClassifier.Classify(text)
}

// Classify maps text to a category and assignee. Every string,
// including the empty one, has a result.
func (c *Classifier) Classify(text string) Result {
	lower := strings.ToLower(text)

	if res, ok := match(c.rules.Primary, lower, SourcePrimary); ok {
		return res
	}
	if c.rules.FallbackEnabled && strings.TrimSpace(lower) != "" {
		if res, ok := match(c.rules.Fallback, lower, SourceFallback); ok {
			return res
		}
		return general(c.rules.Unmatched)
	}
	return general(c.rules.Blank)
}

// Rules returns the table the classifier was built from.
func (c *Classifier) Rules() RuleSet {
	return c.rules
}

func match(rules []Rule, lower string, source Source) (Result, bool) {
	for _, r := range rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return Result{
					Assignment: domain.Assignment{Category: r.Category, AssignedTo: r.AssignedTo},
					Source:     source,
					Matched:    kw,
				}, true
			}
		}
	}
	return Result{}, false
}

func general(assignee string) Result {
	return Result{
		Assignment: domain.Assignment{Category: domain.CategoryGeneral, AssignedTo: assignee},
		Source:     SourceDefault,
	}
}

func normalize(rules []Rule) []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		kws := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			kws = append(kws, strings.ToLower(kw))
		}
		r.Keywords = kws
		out[i] = r
	}
	return out
}

// BadgeClass is the CSS class for a category badge: the lower-cased
// first word of the label.
func BadgeClass(category domain.Category) string {
	fields := strings.Split(strings.ToLower(string(category)), " ")
	return fields[0]
}
