// Package brand maps free-text station names and brands to a canonical
// brand key and builds the logo URL for that key.
package brand

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/agext/levenshtein"
	"go.uber.org/zap"
)

// Default is returned when no brand matches.
const Default = "default"

// maxEditDistance is the largest Levenshtein distance still treated as a match.
const maxEditDistance = 2

type brandKeywords struct {
	key      string
	keywords []string
}

type namePattern struct {
	re  *regexp.Regexp
	key string
}

// Keyword table. Iteration order decides overlapping matches, so hpcl is
// checked before bp and bp before bpcl.
func defaultKeywords() []brandKeywords {
	return []brandKeywords{
		{key: "hpcl", keywords: []string{"hpcl", "hindustan petroleum", "hp petrol", "hp petroleum", "hp fuel"}},
		{key: "bp", keywords: []string{"british petroleum", "bp petrol", "bp gas", "bp fuel"}},
		{key: "bpcl", keywords: []string{"bharat petroleum", "bpcl", "bharatpetroleum"}},
		{key: "shell", keywords: []string{"shell", "royal dutch shell"}},
		{key: "indian-oil", keywords: []string{"indian oil", "indianoil", "iocl", "indane"}},
		{key: "reliance", keywords: []string{"reliance", "reliance industries", "jio-bp"}},
		{key: "essar", keywords: []string{"essar", "nayara"}},
		{key: "total", keywords: []string{"total", "totalenergies"}},
		{key: "adani", keywords: []string{"adani", "adani gas"}},
		{key: "gulf", keywords: []string{"gulf", "gulf oil"}},
		{key: "castrol", keywords: []string{"castrol"}},
	}
}

// Most specific first.
var stationNamePatterns = []namePattern{
	{regexp.MustCompile(`(?i)hpcl`), "hpcl"},
	{regexp.MustCompile(`(?i)hindustan.*petroleum`), "hpcl"},
	{regexp.MustCompile(`(?i)hp.*petrol`), "hpcl"},
	{regexp.MustCompile(`(?i)hp.*petroleum`), "hpcl"},
	{regexp.MustCompile(`(?i)hp.*fuel`), "hpcl"},

	{regexp.MustCompile(`(?i)bharat.*petroleum`), "bpcl"},
	{regexp.MustCompile(`(?i)bpcl`), "bpcl"},

	{regexp.MustCompile(`(?i)british.*petroleum`), "bp"},
	{regexp.MustCompile(`(?i)bp.*petrol`), "bp"},
	{regexp.MustCompile(`(?i)bp.*gas`), "bp"},
	{regexp.MustCompile(`(?i)bp.*fuel`), "bp"},

	{regexp.MustCompile(`(?i)shell`), "shell"},
	{regexp.MustCompile(`(?i)indian.*oil`), "indian-oil"},
	{regexp.MustCompile(`(?i)iocl`), "indian-oil"},
	{regexp.MustCompile(`(?i)reliance`), "reliance"},
	{regexp.MustCompile(`(?i)jio.*bp`), "reliance"},
	{regexp.MustCompile(`(?i)essar`), "essar"},
	{regexp.MustCompile(`(?i)nayara`), "essar"},
	{regexp.MustCompile(`(?i)total`), "total"},
	{regexp.MustCompile(`(?i)adani`), "adani"},
	{regexp.MustCompile(`(?i)gulf`), "gulf"},
	{regexp.MustCompile(`(?i)castrol`), "castrol"},
}

// Classifier resolves brand keys and logo URLs. It is safe for concurrent use.
type Classifier struct {
	logosBucket string
	region      string

	mu    sync.RWMutex
	table []brandKeywords
}

// NewClassifier returns a Classifier whose logo URLs point at logosBucket in region.
func NewClassifier(logosBucket, region string) *Classifier {
	return &Classifier{
		logosBucket: logosBucket,
		region:      region,
		table:       defaultKeywords(),
	}
}

// Classify returns the brand key for a station. stationBrand is trusted
// first, then the station name patterns, then fuzzy matching on the name.
func (c *Classifier) Classify(stationName, stationBrand string) string {
	if b := strings.ToLower(strings.TrimSpace(stationBrand)); b != "" {
		if key, ok := c.match(b); ok {
			return key
		}
	}

	name := strings.TrimSpace(stationName)
	if name == "" {
		return Default
	}
	for _, p := range stationNamePatterns {
		if p.re.MatchString(name) {
			return p.key
		}
	}
	if key, ok := c.match(strings.ToLower(name)); ok {
		return key
	}
	return Default
}

// LogoURL formats the public logo location for brandKey. No I/O is performed.
func (c *Classifier) LogoURL(brandKey string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s.png", c.logosBucket, c.region, brandKey)
}

// BrandLogoURL classifies the station and returns the logo URL for the result.
func (c *Classifier) BrandLogoURL(stationName, stationBrand string) string {
	return c.LogoURL(c.Classify(stationName, stationBrand))
}

// SupportedBrands lists the known brand keys in match order, followed by Default.
func (c *Classifier) SupportedBrands() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.table)+1)
	for _, b := range c.table {
		out = append(out, b.key)
	}
	return append(out, Default)
}

// AddBrandMapping replaces the keywords of an existing brand or appends a new
// brand at the end of the table.
func (c *Classifier) AddBrandMapping(brandKey string, keywords ...string) {
	key := strings.ToLower(strings.TrimSpace(brandKey))
	if key == "" || key == Default {
		return
	}
	kw := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			kw = append(kw, k)
		}
	}
	if len(kw) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.table {
		if c.table[i].key == key {
			c.table[i].keywords = kw
			zap.L().Info("brand mapping replaced", zap.String("brand", key), zap.Strings("keywords", kw))
			return
		}
	}
	c.table = append(c.table, brandKeywords{key: key, keywords: kw})
	zap.L().Info("brand mapping added", zap.String("brand", key), zap.Strings("keywords", kw))
}

// match expects lowercase, trimmed, non-empty text. Containment is tried
// across the whole table before edit distance so that near-identical keys
// such as "bpcl" and "hpcl" resolve to the exact one.
func (c *Classifier) match(text string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, b := range c.table {
		for _, kw := range b.keywords {
			if strings.Contains(text, kw) || strings.Contains(kw, text) {
				return b.key, true
			}
		}
	}
	for _, b := range c.table {
		for _, kw := range b.keywords {
			if levenshtein.Distance(text, kw, nil) <= maxEditDistance {
				return b.key, true
			}
		}
	}
	return "", false
}
