package classify

import "regexp"

// signal is one named deterministic classification trigger. Weak signals
// match on a single generic word and get a semantic re-check when they are
// the only thing a category matched on.
type signal struct {
	name string
	re   *regexp.Regexp
	weak bool
}

func (s signal) matches(q string) bool {
	return s.re.MatchString(q)
}

// Topics the bot refuses outright, whatever the phrasing around them
var refuseSignals = []signal{
	{name: "compensation", re: regexp.MustCompile(`(?i)\b(salar(?:y|ies)|compensation|equity grants?)\b`)},
	{name: "legal_advice", re: regexp.MustCompile(`(?i)\blegal advice\b`)},
	{name: "personal_data", re: regexp.MustCompile(`(?i)\b(home address|personal (?:phone|email|cell))\b`)},
}

// Explicit compound requests: meeting content plus an unrelated action in
// one sentence. These short-circuit to CLARIFY with a split proposal.
var splitSignals = []signal{
	{name: "summarize_and_send", re: regexp.MustCompile(`(?i)\bsummar\w+\b.*\band\b.*\b(email|send|draft|write|post)\b`)},
	{name: "then_send", re: regexp.MustCompile(`(?i)\b(and then|after that)\b.*\b(email|send|post|share)\b`)},
}

// SplitOptions returned with a needsSplit clarification
var splitOptions = []string{"meeting content", "other request"}

var multiMeetingSignals = []signal{
	{name: "all_meetings", re: regexp.MustCompile(`(?i)\b(all|every)\b[^.?!]*\b(meetings?|calls?)\b`)},
	{name: "across_meetings", re: regexp.MustCompile(`(?i)\bacross\b[^.?!]*\b(meetings?|calls?|customers?|accounts?)\b`)},
	{name: "meetings_that_mention", re: regexp.MustCompile(`(?i)\bmeetings?\s+that\s+mention\b`)},
	{name: "how_often", re: regexp.MustCompile(`(?i)\bhow often\b`)},
	{name: "over_time", re: regexp.MustCompile(`(?i)\bover time\b`)},
	{name: "trend", re: regexp.MustCompile(`(?i)\btrends?\b`), weak: true},
	{name: "compare", re: regexp.MustCompile(`(?i)\bcompare\b`), weak: true},
}

var singleMeetingSignals = []signal{
	{name: "the_meeting", re: regexp.MustCompile(`(?i)\b(the|this|that|our|yesterday'?s|today'?s|last)\s+(meeting|call|demo)\b`)},
	{name: "recap", re: regexp.MustCompile(`(?i)\b(recap|debrief)\b`), weak: true},
	{name: "action_items", re: regexp.MustCompile(`(?i)\baction items?\b`)},
	{name: "followups_from", re: regexp.MustCompile(`(?i)\bfollow[- ]?ups?\s+from\b`)},
}

var productKnowledgeSignals = []signal{
	{name: "how_platform", re: regexp.MustCompile(`(?i)\bhow (?:does|do|can)\b[^.?!]*\b(platform|product|leverege|system|api)\b`)},
	{name: "does_support", re: regexp.MustCompile(`(?i)\b(?:do we|does (?:leverege|the platform|it)|can (?:we|the platform|it))\s+support\b`)},
	{name: "feature", re: regexp.MustCompile(`(?i)\b(feature|integration|capabilit)\w*\b`), weak: true},
	{name: "spec", re: regexp.MustCompile(`(?i)\b(spec|specification|data ?sheet)s?\b`)},
}

// Action-priority signals: drafting and greetings win over document lookup
var generalHelpSignals = []signal{
	{name: "drafting", re: regexp.MustCompile(`(?i)\b(draft|write|compose)\b`)},
	{name: "greeting", re: regexp.MustCompile(`(?i)^\s*(hi|hello|hey|thanks|thank you)\b`)},
}

var externalResearchSignals = []signal{
	{name: "web_search", re: regexp.MustCompile(`(?i)\b(google|search the web|look up online|online research)\b`)},
	{name: "news", re: regexp.MustCompile(`(?i)\b(news|press release|announcement)s?\s+(about|from|on)\b`)},
}

var documentSearchSignals = []signal{
	{name: "document", re: regexp.MustCompile(`(?i)\b(document|deck|slide|proposal|one[- ]?pager|pdf|datasheet)s?\b`)},
}

// Aggregate quantifiers promote an entity hit from one meeting to many
var aggregateQuantifier = regexp.MustCompile(`(?i)\b(all|every|across|any)\b`)

// matchSignals returns the names of matched and rejected signals for a set
func matchSignals(question string, signals []signal) (matched, rejected []string, weakOnly bool) {
	var weakCount, strongCount int
	for _, s := range signals {
		if s.matches(question) {
			matched = append(matched, s.name)
			if s.weak {
				weakCount++
			} else {
				strongCount++
			}
		} else {
			rejected = append(rejected, s.name)
		}
	}
	weakOnly = strongCount == 0 && weakCount == 1
	return matched, rejected, weakOnly
}
