// Package vocabulary normalizes extractor output onto one canonical token
// vocabulary so breed equality and set overlap compare like with like.
package vocabulary

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/feralmap/catwatch/internal/core/domain"
)

type vocabularyFile struct {
	Breeds   map[string][]string `yaml:"breeds"`
	Colors   map[string][]string `yaml:"colors"`
	Patterns map[string][]string `yaml:"patterns"`
}

// Normalizer maps free-form extractor tokens to canonical vocabulary
// entries. Unknown tokens pass through lowercased and trimmed; extraction
// is best-effort and the vocabulary must not discard signal.
type Normalizer struct {
	breeds   map[string]string
	colors   map[string]string
	patterns map[string]string
}

// Default returns the built-in vocabulary.
func Default() *Normalizer {
	return &Normalizer{
		breeds: aliasIndex(map[string][]string{
			"domestic_shorthair": {"dsh", "shorthair", "domestic shorthair", "moggy", "house cat"},
			"domestic_longhair":  {"dlh", "longhair", "domestic longhair"},
			"siamese":            {},
			"persian":            {},
			"maine_coon":         {"maine coon"},
			"bengal":             {},
			"sphynx":             {"sphinx"},
			"ragdoll":            {},
			"british_shorthair":  {"british shorthair", "bsh"},
		}),
		colors: aliasIndex(map[string][]string{
			"orange": {"ginger", "red", "marmalade"},
			"black":  {"ebony"},
			"white":  {},
			"gray":   {"grey", "blue", "silver"},
			"brown":  {"chocolate"},
			"cream":  {"beige", "buff"},
		}),
		patterns: aliasIndex(map[string][]string{
			"tabby":        {"striped", "mackerel", "mackerel tabby"},
			"solid":        {"self", "plain"},
			"tuxedo":       {"bicolor black and white"},
			"calico":       {"tricolor", "tortoiseshell and white"},
			"tortoiseshell": {"tortie"},
			"spotted":      {},
			"pointed":      {"colorpoint", "color point"},
		}),
	}
}

// Load reads a YAML vocabulary file and merges it over the built-in one,
// so deployments can extend the canon without restating it.
func Load(path string) (*Normalizer, error) {
	n := Default()
	if path == "" {
		return n, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary file: %w", err)
	}

	var file vocabularyFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse vocabulary yaml: %w", err)
	}

	mergeAliases(n.breeds, file.Breeds)
	mergeAliases(n.colors, file.Colors)
	mergeAliases(n.patterns, file.Patterns)
	return n, nil
}

// NormalizeRecord canonicalizes every token of a feature record. Set
// dimensions are de-duplicated with first-seen order preserved.
func (n *Normalizer) NormalizeRecord(rec domain.FeatureRecord) domain.FeatureRecord {
	return domain.FeatureRecord{
		Breed:               lookupToken(n.breeds, rec.Breed),
		Colors:              normalizeSet(n.colors, rec.Colors),
		Patterns:            normalizeSet(n.patterns, rec.Patterns),
		DistinctiveFeatures: normalizeSet(nil, rec.DistinctiveFeatures),
		EstimatedAge:        normalizeAge(rec.EstimatedAge),
		Size:                normalizeSize(rec.Size),
	}
}

func aliasIndex(canon map[string][]string) map[string]string {
	index := make(map[string]string, len(canon)*2)
	for canonical, aliases := range canon {
		index[canonical] = canonical
		for _, alias := range aliases {
			index[cleanToken(alias)] = canonical
		}
	}
	return index
}

func mergeAliases(index map[string]string, extra map[string][]string) {
	for canonical, aliases := range extra {
		canonical = cleanToken(canonical)
		if canonical == "" {
			continue
		}
		index[canonical] = canonical
		for _, alias := range aliases {
			if alias = cleanToken(alias); alias != "" {
				index[alias] = canonical
			}
		}
	}
}

func lookupToken(index map[string]string, token string) string {
	token = cleanToken(token)
	if token == "" {
		return ""
	}
	if index != nil {
		if canonical, ok := index[token]; ok {
			return canonical
		}
	}
	return token
}

func normalizeSet(index map[string]string, tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		canonical := lookupToken(index, token)
		if canonical == "" {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func normalizeAge(age domain.AgeClass) domain.AgeClass {
	switch cleanToken(string(age)) {
	case "young", "kitten", "juvenile":
		return domain.AgeYoung
	case "adult":
		return domain.AgeAdult
	case "senior", "elderly", "old":
		return domain.AgeSenior
	default:
		return domain.AgeUnspecified
	}
}

func normalizeSize(size domain.SizeClass) domain.SizeClass {
	switch cleanToken(string(size)) {
	case "small":
		return domain.SizeSmall
	case "medium", "average":
		return domain.SizeMedium
	case "large", "big":
		return domain.SizeLarge
	default:
		return domain.SizeUnspecified
	}
}

func cleanToken(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}
