package classify

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Category is a blog label. Labels are upper-case, matching what the article
// editor produces.
type Category string

const (
	Finance     Category = "FINANCE"
	Tech        Category = "TECH"
	Career      Category = "CAREER"
	Education   Category = "EDUCATION"
	Regulations Category = "REGULATIONS"
	Lifestyle   Category = "LIFESTYLE"
	Skills      Category = "SKILLS"

	// General is assigned when no keyword matches.
	General Category = "GENERAL"
)

// AllCategories returns the known labels in canonical order.
func AllCategories() []Category {
	return []Category{Finance, Tech, Career, Education, Regulations, Lifestyle, Skills}
}

var categoryKeywords = map[Category][]string{
	Finance: {
		"finance", "financial", "money", "budget", "invest", "stock", "tax",
		"saving", "retirement", "loan", "mortgage", "credit", "bank", "crypto",
		"portfolio", "income", "expense", "debt", "personal finance",
	},
	Tech: {
		"software", "programming", "code", "developer", "javascript", "react",
		"golang", "python", "cloud", "kubernetes", "database", "api", "frontend",
		"backend", "machine learning", "artificial intelligence", "llm", "open source", "engineering",
	},
	Career: {
		"career", "job", "interview", "resume", "hiring", "promotion", "salary",
		"manager", "leadership", "remote work", "workplace", "mentor", "layoff",
		"negotiat", "job search",
	},
	Education: {
		"education", "learn", "course", "university", "college", "student",
		"teacher", "school", "degree", "tutorial", "curriculum", "bootcamp",
		"online course",
	},
	Regulations: {
		"regulation", "compliance", "law", "legal", "policy", "gdpr", "privacy",
		"government", "license", "audit", "securities", "legislation", "court",
	},
	Lifestyle: {
		"lifestyle", "health", "habit", "travel", "fitness", "minimalism",
		"mindfulness", "wellbeing", "sleep", "family", "food", "happiness",
		"work-life balance",
	},
	Skills: {
		"skill", "productivity", "communication", "writing", "design",
		"negotiation", "public speaking", "time management", "focus", "practice",
		"critical thinking", "soft skills",
	},
}

// Aliases maps short CLI names to labels.
var Aliases = map[string]Category{
	"fin":     Finance,
	"money":   Finance,
	"tech":    Tech,
	"career":  Career,
	"edu":     Education,
	"regs":    Regulations,
	"law":     Regulations,
	"life":    Lifestyle,
	"skills":  Skills,
	"general": General,
}

// ResolveAlias maps a CLI alias or a label in any case to its label.
func ResolveAlias(alias string) (Category, error) {
	alias = strings.ToLower(strings.TrimSpace(alias))
	if cat, ok := Aliases[alias]; ok {
		return cat, nil
	}
	for _, cat := range AllCategories() {
		if strings.EqualFold(string(cat), alias) {
			return cat, nil
		}
	}
	valid := make([]string, 0, len(Aliases))
	for k := range Aliases {
		valid = append(valid, k)
	}
	sort.Strings(valid)
	return "", fmt.Errorf("unknown category %q (valid: %s)", alias, strings.Join(valid, ", "))
}

// Classify picks a label from title and description keywords. Title
// keywords are weighted 2x. Ties go to the earlier label in canonical order.
func Classify(title, description string) Category {
	titleTokens := tokenize(title)
	descTokens := tokenize(description)
	titleLower := strings.ToLower(title)
	descLower := strings.ToLower(description)

	var bestCat Category
	bestScore := 0

	for _, cat := range AllCategories() {
		score := 0
		for _, kw := range categoryKeywords[cat] {
			if !strings.Contains(kw, " ") {
				// Single-word keyword, prefix match so "invest" hits "investing"
				for _, t := range titleTokens {
					if strings.HasPrefix(t, kw) {
						score += 2
					}
				}
				for _, t := range descTokens {
					if strings.HasPrefix(t, kw) {
						score++
					}
				}
			} else {
				if strings.Contains(titleLower, kw) {
					score += 2
				}
				if strings.Contains(descLower, kw) {
					score++
				}
			}
		}
		if score > bestScore {
			bestScore = score
			bestCat = cat
		}
	}

	if bestScore == 0 {
		return General
	}
	return bestCat
}

func tokenize(s string) []string {
	var tokens []string
	for _, word := range strings.Fields(strings.ToLower(s)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if word != "" {
			tokens = append(tokens, word)
		}
	}
	return tokens
}
