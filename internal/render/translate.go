package render

import (
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Translator looks up localized UI strings. SetLanguage selects the language that
// later Translate calls use.
type Translator interface {
	SetLanguage(tag string)
	Translate(key, fallback string) string
}

// NopTranslator always returns the fallback.
type NopTranslator struct{}

func (NopTranslator) SetLanguage(string) {}

func (NopTranslator) Translate(_, fallback string) string { return fallback }

// Catalog is a Translator backed by i18n/<tag>.json files holding a
// "localized-strings" object.
type Catalog struct {
	mu      sync.RWMutex
	current string
	strings map[string]map[string]string
}

type catalogFile struct {
	Localized map[string]string `yaml:"localized-strings"`
}

// LoadCatalog reads i18n/<tag>.json for each tag below websiteDir. Missing files are
// treated as empty catalogs.
func LoadCatalog(websiteDir string, tags []string) (*Catalog, error) {
	c := &Catalog{strings: map[string]map[string]string{}}
	for _, tag := range tags {
		data, err := os.ReadFile(filepath.Join(websiteDir, "i18n", tag+".json"))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		var f catalogFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		c.strings[tag] = f.Localized
	}
	return c, nil
}

func (c *Catalog) SetLanguage(tag string) {
	c.mu.Lock()
	c.current = tag
	c.mu.Unlock()
}

func (c *Catalog) Translate(key, fallback string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if s, ok := c.strings[c.current][key]; ok && s != "" {
		return s
	}
	return fallback
}
