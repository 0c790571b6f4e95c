package resolve

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docserve/internal/config"
	"git.home.luguber.info/inful/docserve/internal/content"
	derrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
)

var roots = config.Roots{
	Docs:       "/site/docs",
	Versioned:  "/site/website/versioned_docs",
	Translated: "/site/website/translated_docs",
}

func TestLocate_Rules(t *testing.T) {
	cases := []struct {
		name       string
		entity     content.Entity
		translated bool
		want       string
	}{
		{"canonical english", content.Entity{Source: "intro.md", Language: "en"}, true, "/site/docs/intro.md"},
		{"canonical untranslated site", content.Entity{Source: "intro.md", Language: "fr"}, false, "/site/docs/intro.md"},
		{"canonical translation", content.Entity{Source: "intro.md", Language: "fr"}, true, "/site/website/translated_docs/fr/intro.md"},
		{"versioned english", content.Entity{Source: "version-1.0/intro.md", Language: "en", OriginalID: "intro"}, true, "/site/website/versioned_docs/version-1.0/intro.md"},
		{"versioned untranslated site", content.Entity{Source: "version-1.0/intro.md", Language: "fr", OriginalID: "intro"}, false, "/site/website/versioned_docs/version-1.0/intro.md"},
		{"versioned translation", content.Entity{Source: "version-1.0/intro.md", Language: "fr", OriginalID: "intro"}, true, "/site/website/translated_docs/fr/version-1.0/intro.md"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, filepath.FromSlash(tc.want), Locate(&tc.entity, tc.translated, roots))
		})
	}
}

func TestLocate_TranslationDisabledNeverUsesTranslatedRoot(t *testing.T) {
	for _, lang := range []string{"en", "fr", "pt-BR", ""} {
		for _, orig := range []string{"", "intro"} {
			e := &content.Entity{Source: "a/b.md", Language: lang, OriginalID: orig}
			got := Locate(e, false, roots)
			assert.False(t, strings.HasPrefix(got, filepath.FromSlash(roots.Translated)), got)
		}
	}
}

func TestLocate_EnglishCanonicalIgnoresTranslationFlag(t *testing.T) {
	e := &content.Entity{ID: "intro", Permalink: "/docs/intro.html", Source: "intro.md", Language: "en"}
	assert.Equal(t, Locate(e, false, roots), Locate(e, true, roots))
	assert.Equal(t, filepath.FromSlash("/site/docs/intro.md"), Locate(e, true, roots))
}

func TestRead_MissingFileIsNotFound(t *testing.T) {
	r := config.Roots{Docs: t.TempDir()}
	_, _, err := Read(&content.Entity{ID: "x", Source: "x.md", Language: "en"}, false, r)
	require.Error(t, err)
	assert.True(t, derrors.IsNotFound(err))
}

func TestRead_ReturnsContent(t *testing.T) {
	r := config.Roots{Docs: t.TempDir()}
	require.NoError(t, os.WriteFile(filepath.Join(r.Docs, "x.md"), []byte("hi"), 0o600))
	file, data, err := Read(&content.Entity{ID: "x", Source: "x.md", Language: "en"}, false, r)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(r.Docs, "x.md"), file)
	assert.Equal(t, "hi", string(data))
}
