package i18n

import (
	"embed"
	"encoding/json"
	"errors"
	"sync"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var builtin embed.FS

var (
	mu     sync.RWMutex
	bundle *goi18n.Bundle
)

// Init creates the bundle with English as the default language and loads the
// built-in locale files.
func Init() {
	b := goi18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)
	for _, name := range []string{"locales/active.en.json", "locales/active.it.json"} {
		if _, err := b.LoadMessageFileFS(builtin, name); err != nil {
			panic(err)
		}
	}

	mu.Lock()
	bundle = b
	mu.Unlock()
}

// Load adds (or overrides) messages from a locale file on disk.
func Load(path string) error {
	mu.Lock()
	defer mu.Unlock()
	if bundle == nil {
		return errNotInitialized
	}
	_, err := bundle.LoadMessageFile(path)
	return err
}

var errNotInitialized = errors.New("i18n: Init must be called first")

// T localizes messageID for the accept-language style list of langs.
// Unknown ids fall back to the id itself.
func T(messageID string, data map[string]interface{}, langs ...string) string {
	return Plural(messageID, nil, data, langs...)
}

// Plural is T with plural selection driven by count.
func Plural(messageID string, count interface{}, data map[string]interface{}, langs ...string) string {
	mu.RLock()
	b := bundle
	mu.RUnlock()
	if b == nil {
		Init()
		mu.RLock()
		b = bundle
		mu.RUnlock()
	}

	loc := goi18n.NewLocalizer(b, langs...)
	// A missing translation still yields the default-language text.
	msg, _ := loc.Localize(&goi18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
		PluralCount:  count,
	})
	if msg == "" {
		return messageID
	}
	return msg
}
