// Package classify scores inbound messages into triage categories.
// The classifier is pure: built once at startup, it performs no I/O and
// reaches the same verdict for identical (content, sender, source) input.
package classify

import (
	"embed"
	"regexp"
	"strings"

	"replydesk/domain"

	goahocorasick "github.com/anknown/ahocorasick"
)

//go:embed keywords/*
var keywordsFolder embed.FS

const (
	keywordWeight = 2
	patternWeight = 3
)

// categoryPatterns are word-boundary phrase signals, weighted higher than
// single keywords. Counted per occurrence, case-insensitive.
var categoryPatterns = map[domain.Category][]string{
	domain.CategoryBusiness: {
		`\bschedule\s+(?:a\s+)?(?:call|meeting)\b`,
		`\bfollow(?:ing)?\s+up\b`,
		`\blet'?s\s+discuss\b`,
	},
	domain.CategoryPersonal: {
		`\bhappy\s+birthday\b`,
		`\bmiss\s+you\b`,
		`\bhow\s+are\s+you\b`,
	},
	domain.CategorySupport: {
		`\bnot\s+working\b`,
		`\berror\s+code\s+\d+\b`,
		`\bneed\s+help\b`,
	},
	domain.CategoryNetworking: {
		`\blet'?s\s+connect\b`,
		`\bcoffee\s+chat\b`,
		`\bgrab\s+(?:a\s+)?coffee\b`,
	},
	domain.CategorySales: {
		`\bspecial\s+offer\b`,
		`\b\d+%\s+off\b`,
		`\bfree\s+trial\b`,
	},
}

// sourceDeltas is the flat per-(source, category) adjustment table.
// Deltas reflect what each platform is predominantly used for.
var sourceDeltas = map[domain.Source]map[domain.Category]int{
	domain.SourceLinkedin: {
		domain.CategoryBusiness:   2,
		domain.CategoryNetworking: 3,
		domain.CategorySales:      1,
	},
	domain.SourceGmail: {
		domain.CategoryBusiness: 1,
		domain.CategorySupport:  1,
	},
	domain.SourceTelegram: {
		domain.CategoryPersonal: 2,
	},
	domain.SourceFacebook: {
		domain.CategoryPersonal:   2,
		domain.CategoryNetworking: 1,
	},
	domain.SourceInstagram: {
		domain.CategoryPersonal: 2,
		domain.CategorySales:    1,
	},
	domain.SourceSlack: {
		domain.CategoryBusiness: 2,
		domain.CategorySupport:  1,
	},
}

// businessRoles and personalRelations drive the sender heuristics:
// a business-role term boosts business and dents personal, and the
// personal-relation vocabulary does the inverse.
var (
	businessRoles = []string{
		"recruiter", "recruiting", "hiring", "manager", "director",
		"ceo", "cto", "founder", "consultant", "agency", "corp",
		"sales", "noreply", "talent",
	}
	personalRelations = []string{
		"mom", "dad", "mother", "father", "brother", "sister",
		"aunt", "uncle", "grandma", "grandpa", "cousin", "bestie",
	}
)

type Classifier struct {
	machines map[domain.Category]*goahocorasick.Machine
	patterns map[domain.Category][]*regexp.Regexp
}

// NewClassifier loads the embedded keyword sets and builds one
// Aho-Corasick automaton per category, plus the compiled phrase patterns.
func NewClassifier() (*Classifier, error) {
	sets, err := NewKeywordLoader(keywordsFolder).LoadSets("keywords")
	if err != nil {
		return nil, err
	}

	machines := make(map[domain.Category]*goahocorasick.Machine, len(sets))
	for category, words := range sets {
		patterns := make([][]rune, len(words))
		for i, word := range words {
			patterns[i] = []rune(strings.ToLower(word))
		}
		m := new(goahocorasick.Machine)
		if err := m.Build(patterns); err != nil {
			return nil, err
		}
		machines[category] = m
	}

	compiled := make(map[domain.Category][]*regexp.Regexp, len(categoryPatterns))
	for category, exprs := range categoryPatterns {
		for _, expr := range exprs {
			compiled[category] = append(compiled[category], regexp.MustCompile(`(?i)`+expr))
		}
	}

	return &Classifier{machines: machines, patterns: compiled}, nil
}

// Classify returns the category with the strictly highest positive score,
// ties broken by the fixed category order (business first). Anything that
// never scores above zero is general.
func (c *Classifier) Classify(content, sender string, source domain.Source) domain.Category {
	scores := c.score(content, sender, source)

	best := domain.CategoryGeneral
	bestScore := 0
	for _, category := range domain.ScoredCategories() {
		if scores[category] > bestScore {
			best = category
			bestScore = scores[category]
		}
	}
	return best
}

func (c *Classifier) score(content, sender string, source domain.Source) map[domain.Category]int {
	scores := make(map[domain.Category]int, len(c.machines))
	lowered := strings.ToLower(content)
	loweredRunes := []rune(lowered)

	for _, category := range domain.ScoredCategories() {
		scores[category] = c.keywordScore(category, loweredRunes) + c.patternScore(category, content)
	}

	for category, delta := range sourceDeltas[source] {
		scores[category] += delta
	}

	applySenderHeuristics(scores, sender)
	return scores
}

// keywordScore counts distinct matched keywords: repeating one keyword
// does not inflate the score, matching several does.
func (c *Classifier) keywordScore(category domain.Category, content []rune) int {
	machine := c.machines[category]
	if machine == nil || len(content) == 0 {
		return 0
	}

	found := make(map[string]struct{})
	for _, term := range machine.MultiPatternSearch(content, false) {
		found[string(term.Word)] = struct{}{}
	}
	return keywordWeight * len(found)
}

func (c *Classifier) patternScore(category domain.Category, content string) int {
	total := 0
	for _, re := range c.patterns[category] {
		total += patternWeight * len(re.FindAllStringIndex(content, -1))
	}
	return total
}

func applySenderHeuristics(scores map[domain.Category]int, sender string) {
	lowered := strings.ToLower(sender)

	for _, role := range businessRoles {
		if strings.Contains(lowered, role) {
			scores[domain.CategoryBusiness] += 2
			scores[domain.CategoryPersonal]--
			break
		}
	}
	for _, relation := range personalRelations {
		if strings.Contains(lowered, relation) {
			scores[domain.CategoryPersonal] += 2
			scores[domain.CategoryBusiness]--
			break
		}
	}
}
