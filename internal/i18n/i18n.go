// Package i18n holds the message catalogs used to render CLI output.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// ErrInvalidCatalog is returned when a locale file cannot be used.
var ErrInvalidCatalog = errors.New("invalid message catalog")

// Bundle is a set of locale catalogs with English as the fallback.
type Bundle struct {
	builder *catalog.Builder
	tags    []language.Tag
	matcher language.Matcher
}

var (
	defaultOnce   sync.Once
	defaultBundle *Bundle
	defaultErr    error
)

// Default returns the bundle built from the embedded locales. It panics if
// an embedded catalog is malformed.
func Default() *Bundle {
	defaultOnce.Do(func() {
		defaultBundle, defaultErr = Load(localeFS)
	})
	if defaultErr != nil {
		panic(defaultErr)
	}
	return defaultBundle
}

// Load reads every locales/*.yaml file in fsys. Each file maps message keys to
// fmt-style templates and is named after its language tag.
func Load(fsys fs.FS) (*Bundle, error) {
	files, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	parsed := make(map[language.Tag]map[string]string, len(files))
	for _, file := range files {
		tag, err := language.Parse(strings.TrimSuffix(path.Base(file), ".yaml"))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, file, err)
		}
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, file, err)
		}
		var messages map[string]string
		if err := yaml.Unmarshal(data, &messages); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, file, err)
		}
		if len(messages) == 0 {
			return nil, fmt.Errorf("%w: %s is empty", ErrInvalidCatalog, file)
		}
		parsed[tag] = messages
	}
	english, ok := parsed[language.English]
	if !ok {
		return nil, fmt.Errorf("%w: missing en catalog", ErrInvalidCatalog)
	}

	b := &Bundle{builder: catalog.NewBuilder(catalog.Fallback(language.English))}
	for tag, messages := range parsed {
		// Keys a locale does not translate render in English.
		for key, msg := range english {
			if _, ok := messages[key]; !ok {
				messages[key] = msg
			}
		}
		keys := make([]string, 0, len(messages))
		for key := range messages {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if err := b.builder.SetString(tag, key, messages[key]); err != nil {
				return nil, fmt.Errorf("%w: %s: %s: %v", ErrInvalidCatalog, tag, key, err)
			}
		}
		b.tags = append(b.tags, tag)
	}

	// The matcher's first tag is its default.
	sort.SliceStable(b.tags, func(i, j int) bool {
		if b.tags[i] == language.English {
			return b.tags[j] != language.English
		}
		if b.tags[j] == language.English {
			return false
		}
		return b.tags[i].String() < b.tags[j].String()
	})
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

// Locales returns the supported language tags, English first.
func (b *Bundle) Locales() []string {
	out := make([]string, len(b.tags))
	for i, tag := range b.tags {
		out[i] = tag.String()
	}
	return out
}

// Tag resolves lang to the closest supported language. Unknown or
// unsupported languages resolve to English.
func (b *Bundle) Tag(lang string) language.Tag {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return language.English
	}
	requested, err := language.Parse(lang)
	if err != nil {
		return language.English
	}
	_, idx, confidence := b.matcher.Match(requested)
	if confidence == language.No {
		return language.English
	}
	return b.tags[idx]
}

// Printer returns a printer for lang backed by this bundle.
func (b *Bundle) Printer(lang string) *message.Printer {
	return message.NewPrinter(b.Tag(lang), message.Catalog(b.builder))
}
