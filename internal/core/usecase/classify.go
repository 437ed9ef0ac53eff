package usecase

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/incois/floatchat/internal/core/domain"
)

//go:embed intents.yaml
var defaultIntentRules []byte

type intentRule struct {
	Intent      domain.Intent `yaml:"intent"`
	Priority    int           `yaml:"priority"`
	Description string        `yaml:"description"`
	Triggers    []string      `yaml:"triggers"`
}

type intentRuleSet struct {
	Intents      []intentRule `yaml:"intents"`
	GenericTerms []string     `yaml:"generic_terms"`
}

// Classifier maps free-text queries to the fixed intent taxonomy via trigger
// phrase tables. The tables are configuration data, not control flow: they
// ship embedded and can be swapped with an external YAML file.
type Classifier struct {
	rules   []intentRule
	generic []string
}

func NewClassifier() *Classifier {
	classifier, err := newClassifierFromYAML(defaultIntentRules)
	if err != nil {
		// The embedded rules are validated by tests; a parse failure here
		// is a build defect.
		panic(fmt.Sprintf("parse embedded intent rules: %v", err))
	}
	return classifier
}

func NewClassifierFromFile(path string) (*Classifier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrConfiguration, "load intent rules", err)
	}
	classifier, err := newClassifierFromYAML(raw)
	if err != nil {
		return nil, domain.WrapError(domain.ErrConfiguration, "load intent rules", err)
	}
	return classifier, nil
}

func newClassifierFromYAML(raw []byte) (*Classifier, error) {
	var set intentRuleSet
	if err := yaml.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("unmarshal intent rules: %w", err)
	}
	if len(set.Intents) == 0 {
		return nil, fmt.Errorf("intent rules are empty")
	}
	rules := make([]intentRule, len(set.Intents))
	copy(rules, set.Intents)
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Priority < rules[j].Priority })

	generic := make([]string, 0, len(set.GenericTerms))
	for _, term := range set.GenericTerms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			generic = append(generic, term)
		}
	}
	return &Classifier{rules: rules, generic: generic}, nil
}

// Classify is a pure function over the rule tables. Empty or whitespace-only
// input yields Unclassified with confidence 0. Among matching intents the
// one with the most matched triggers wins; ties fall to the rule priority
// order. Queries that only mention generic ARGO terms default to
// program_overview with low confidence.
func (c *Classifier) Classify(queryText string) (domain.Intent, float64) {
	text := strings.ToLower(strings.TrimSpace(queryText))
	if text == "" {
		return domain.IntentUnclassified, 0
	}

	best := domain.IntentUnclassified
	bestMatches := 0
	for _, rule := range c.rules {
		matches := 0
		for _, trigger := range rule.Triggers {
			if strings.Contains(text, strings.ToLower(trigger)) {
				matches++
			}
		}
		if matches > bestMatches {
			best = rule.Intent
			bestMatches = matches
		}
	}
	if bestMatches > 0 {
		return best, float64(bestMatches) / float64(bestMatches+1)
	}

	for _, term := range c.generic {
		if strings.Contains(text, term) {
			return domain.IntentProgramOverview, 0.25
		}
	}
	return domain.IntentUnclassified, 0
}

// ListIntents returns the supported intents in priority order with example
// triggers for introspection. The returned slices are copies.
func (c *Classifier) ListIntents() []domain.IntentInfo {
	out := make([]domain.IntentInfo, 0, len(c.rules))
	for _, rule := range c.rules {
		examples := make([]string, len(rule.Triggers))
		copy(examples, rule.Triggers)
		out = append(out, domain.IntentInfo{
			Intent:          rule.Intent,
			Description:     rule.Description,
			ExampleTriggers: examples,
		})
	}
	return out
}
