package classify

import "strings"

// Tag is one category label attached to a review, with the trigger that
// produced it for traceability.
type Tag struct {
	Category string
	Matched  string
}

type Result struct {
	Tags            []Tag
	BillingCount    int
	ProductCount    int
	BillingDominant bool
}

// Classifier tags review text against a fixed rule table. Output is a pure
// function of the text and the table; there is no state between calls.
type Classifier struct {
	rules Rules
}

func New(rules Rules) *Classifier { return &Classifier{rules: rules} }

func (c *Classifier) Rules() Rules { return c.rules }

func (c *Classifier) Classify(text string) Result {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return Result{}
	}

	res := Result{
		BillingCount: c.count(lower, c.rules.BillingTerms),
		ProductCount: c.count(lower, c.rules.ProductTerms),
	}

	switch c.rules.Policy {
	case PolicyComparative:
		res.BillingDominant = res.BillingCount > res.ProductCount+c.rules.ComparativeMargin
	default:
		res.BillingDominant = res.BillingCount > c.rules.DistinctThreshold
	}

	// Categories are evaluated independently; within one category the scan
	// stops at the first matching trigger.
	for _, cat := range c.rules.Categories {
		for _, t := range cat.Triggers {
			if match(t, lower) {
				res.Tags = append(res.Tags, Tag{Category: cat.Name, Matched: t.String()})
				break
			}
		}
	}
	return res
}

func match(t Trigger, lower string) bool {
	if t.Pattern != nil {
		return t.Pattern.MatchString(lower)
	}
	return strings.Contains(lower, t.Keyword)
}

func (c *Classifier) count(lower string, terms []string) int {
	n := 0
	for _, term := range terms {
		switch c.rules.Counting {
		case CountOccurrences:
			n += strings.Count(lower, term)
		default:
			if strings.Contains(lower, term) {
				n++
			}
		}
	}
	return n
}
