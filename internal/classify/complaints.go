package classify

import (
	"regexp"
	"strings"
)

// Complaint is one (type, detail) pair mined from complaint phrasing.
// The extraction is heuristic and lossy; treat the output as illustrative
// excerpts, never as authoritative classification.
type Complaint struct {
	Type   string
	Detail string
}

type complaintPattern struct {
	re    *regexp.Regexp
	ctype string
}

var complaintPatterns = []complaintPattern{
	{regexp.MustCompile(`can'?t (\w+ ?\w*)`), "inability"},
	{regexp.MustCompile(`doesn'?t (\w+ ?\w*)`), "failure"},
	{regexp.MustCompile(`won'?t (\w+ ?\w*)`), "failure"},
	{regexp.MustCompile(`unable to (\w+ ?\w*)`), "inability"},
	{regexp.MustCompile(`no (\w+) (option|feature|way)`), "missing_feature"},
	{regexp.MustCompile(`(\w+) (doesn't|does not|won't|will not) work`), "broken_feature"},
	{regexp.MustCompile(`too (slow|fast|loud|quiet|short|long)`), "quality_issue"},
	{regexp.MustCompile(`not enough (\w+)`), "insufficient"},
	{regexp.MustCompile(`(\w+) is (broken|buggy|glitchy)`), "technical_issue"},
}

// ExtractComplaints mines all complaint-shaped phrases from a review text,
// in pattern-table order. Multiple matches per pattern are all retained.
func ExtractComplaints(text string) []Complaint {
	lower := strings.ToLower(text)
	var out []Complaint
	for _, p := range complaintPatterns {
		for _, m := range p.re.FindAllStringSubmatch(lower, -1) {
			detail := strings.TrimSpace(strings.Join(m[1:], " "))
			if detail == "" {
				continue
			}
			out = append(out, Complaint{Type: p.ctype, Detail: detail})
		}
	}
	return out
}

var requestPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)wish (?:it |they |there was |there were |I could )(.{10,60})`),
	regexp.MustCompile(`(?i)would be (?:nice|great|better) (?:if|to) (.{10,60})`),
	regexp.MustCompile(`(?i)should (?:have|be able to|let you) (.{10,60})`),
	regexp.MustCompile(`(?i)need(?:s)? (?:a |to |the ability to )(.{10,60})`),
	regexp.MustCompile(`(?i)no (?:option|way|ability) to (.{10,60})`),
	regexp.MustCompile(`(?i)doesn'?t (?:even )?(?:have|let|allow) (.{10,60})`),
	regexp.MustCompile(`(?i)missing (.{10,40})`),
	regexp.MustCompile(`(?i)lacks? (.{10,40})`),
}

// billing phrases disqualify a mined request; users asking for refunds are
// not asking for features.
var requestStoplist = []string{"refund", "money", "cancel", "charge"}

// ExtractFeatureRequests mines feature-request phrasings from review text.
// Same caveats as ExtractComplaints.
func ExtractFeatureRequests(text string) []string {
	var out []string
	for _, p := range requestPatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			cleaned := strings.TrimRight(strings.TrimSpace(m[1]), ".,!?")
			if len(cleaned) <= 10 {
				continue
			}
			lower := strings.ToLower(cleaned)
			skip := false
			for _, stop := range requestStoplist {
				if strings.Contains(lower, stop) {
					skip = true
					break
				}
			}
			if !skip {
				out = append(out, cleaned)
			}
		}
	}
	return out
}
