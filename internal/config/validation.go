package config

import (
	"fmt"
	"strings"

	derrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
)

// Validate checks a loaded site configuration.
func Validate(s *Site) error {
	return newSiteValidator(s).validate()
}

type siteValidator struct {
	site *Site
}

func newSiteValidator(s *Site) *siteValidator {
	return &siteValidator{site: s}
}

func (v *siteValidator) validate() error {
	if err := v.validateBasics(); err != nil {
		return err
	}
	if err := v.validateLanguages(); err != nil {
		return err
	}
	if err := v.validateVersions(); err != nil {
		return err
	}
	return v.validateLayouts()
}

func (v *siteValidator) validateBasics() error {
	if strings.TrimSpace(v.site.Title) == "" {
		return derrors.ValidationError("site title is required").Build()
	}
	b := v.site.BaseURL
	if !strings.HasPrefix(b, "/") || !strings.HasSuffix(b, "/") {
		return derrors.ValidationError(fmt.Sprintf("base_url must start and end with '/': %q", b)).
			WithContext("base_url", b).Build()
	}
	return nil
}

func (v *siteValidator) validateLanguages() error {
	if !v.site.TranslationEnabled() {
		return nil
	}
	seen := map[string]bool{}
	for _, l := range v.site.Languages {
		if l.Tag == "" {
			return derrors.ValidationError("language entry without tag").Build()
		}
		if seen[l.Tag] {
			return derrors.ValidationError(fmt.Sprintf("duplicate language tag: %s", l.Tag)).Build()
		}
		seen[l.Tag] = true
	}
	if !v.site.LanguageEnabled(DefaultLanguage) {
		return derrors.ValidationError("languages must enable the default language " + DefaultLanguage).Build()
	}
	return nil
}

func (v *siteValidator) validateVersions() error {
	seen := map[string]bool{}
	for _, ver := range v.site.Versions {
		if ver == "" || strings.Contains(ver, "/") {
			return derrors.ValidationError(fmt.Sprintf("invalid version label: %q", ver)).Build()
		}
		if seen[ver] {
			return derrors.ValidationError(fmt.Sprintf("duplicate version: %s", ver)).Build()
		}
		seen[ver] = true
	}
	return nil
}

func (v *siteValidator) validateLayouts() error {
	for name, file := range v.site.Layouts {
		if name == "" || file == "" {
			return derrors.ValidationError("layouts entries need a name and a template file").Build()
		}
	}
	return nil
}
