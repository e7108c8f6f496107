// Package companyinfo answers free-text questions about the company from a
// small curated corpus. Sections come from a YAML file or the built-in
// defaults; lookup is token overlap over folded text, no model involved.
package companyinfo

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"carbot_backend/platform/apperr"
	"carbot_backend/platform/textnorm"
)

// Section is one answerable topic.
type Section struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
}

type corpusFile struct {
	Sections []Section `yaml:"sections"`
}

// Corpus holds the indexed sections.
type Corpus struct {
	sections []indexedSection
}

type indexedSection struct {
	section Section
	tokens  map[string]struct{}
}

// Load reads a YAML corpus from path. An empty path loads the built-in
// default sections.
func Load(path string) (*Corpus, error) {
	if path == "" {
		return newCorpus(defaultSections), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read company info corpus: %w", err)
	}

	var file corpusFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse company info corpus: %w", err)
	}
	if len(file.Sections) == 0 {
		return nil, fmt.Errorf("company info corpus %s has no sections", path)
	}
	return newCorpus(file.Sections), nil
}

func newCorpus(sections []Section) *Corpus {
	c := &Corpus{sections: make([]indexedSection, 0, len(sections))}
	for _, s := range sections {
		tokens := make(map[string]struct{})
		for _, tok := range textnorm.Tokens(s.Title + " " + s.Body) {
			tokens[tok] = struct{}{}
		}
		c.sections = append(c.sections, indexedSection{section: s, tokens: tokens})
	}
	return c
}

// Lookup returns the body of the best-matching section. Ties break toward
// the earlier section so answers stay stable across calls.
func (c *Corpus) Lookup(query string) (string, error) {
	queryTokens := textnorm.Tokens(query)
	if len(queryTokens) == 0 {
		return "", apperr.Validation("query must contain words").WithOp("companyinfo.Lookup")
	}

	type scored struct {
		index int
		score int
	}
	scores := make([]scored, 0, len(c.sections))
	for i, s := range c.sections {
		overlap := 0
		for _, tok := range queryTokens {
			if _, ok := s.tokens[tok]; ok {
				overlap++
			}
		}
		if overlap > 0 {
			scores = append(scores, scored{index: i, score: overlap})
		}
	}
	if len(scores) == 0 {
		return "", apperr.NotFound("no matching company information").WithOp("companyinfo.Lookup")
	}

	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	return c.sections[scores[0].index].section.Body, nil
}

// Sections returns the loaded section titles, mainly for logging at startup.
func (c *Corpus) Sections() []string {
	titles := make([]string, 0, len(c.sections))
	for _, s := range c.sections {
		titles = append(titles, s.section.Title)
	}
	return titles
}
