package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"git.home.luguber.info/inful/docserve/internal/config"
)

func translatedSite() *config.Site {
	return &config.Site{Languages: []config.Language{
		{Tag: "en", Enabled: true},
		{Tag: "fr", Enabled: true},
		{Tag: "zh-CN", Enabled: true},
		{Tag: "de", Enabled: false},
	}}
}

func TestLanguageFromPath(t *testing.T) {
	site := translatedSite()
	assert.Equal(t, "fr", LanguageFromPath("/fr/help.html", site))
	assert.Equal(t, "zh-CN", LanguageFromPath("/zh-cn/users.html", site))
	assert.Equal(t, "fr", LanguageFromPath("/en/sub/fr/x.html", site), "last segment wins")
	assert.Equal(t, "en", LanguageFromPath("/de/help.html", site), "disabled languages are ignored")
	assert.Equal(t, "en", LanguageFromPath("/help.html", site))
	assert.Empty(t, LanguageFromPath("/fr/help.html", &config.Site{}))
}

func TestEnglishPath(t *testing.T) {
	site := translatedSite()
	p, ok := EnglishPath("fr/help.html", site)
	assert.True(t, ok)
	assert.Equal(t, "en/help.html", p)

	_, ok = EnglishPath("en/help.html", site)
	assert.False(t, ok)
	_, ok = EnglishPath("help.html", site)
	assert.False(t, ok)
}
