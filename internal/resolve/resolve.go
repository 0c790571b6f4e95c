// Package resolve maps content entities to the files that back them.
package resolve

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docserve/internal/config"
	"git.home.luguber.info/inful/docserve/internal/content"
	derrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
)

// Locate returns the absolute file that backs e.
//
// Variants (OriginalID set) live under the translated root for non-English languages on
// translated sites and under the versioned root otherwise. Canonical entities live under
// the docs root unless they are a translation.
func Locate(e *content.Entity, translationEnabled bool, roots config.Roots) string {
	rel := filepath.FromSlash(e.Source)
	translated := translationEnabled && e.Language != config.DefaultLanguage
	if e.OriginalID != "" {
		if translated {
			return filepath.Join(roots.Translated, e.Language, rel)
		}
		return filepath.Join(roots.Versioned, rel)
	}
	if !translated {
		return filepath.Join(roots.Docs, rel)
	}
	return filepath.Join(roots.Translated, e.Language, rel)
}

// Read locates and reads the file backing e. A missing file is a not-found error so the
// router can fall through to its next rule.
func Read(e *content.Entity, translationEnabled bool, roots config.Roots) (string, []byte, error) {
	file := Locate(e, translationEnabled, roots)
	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return file, nil, derrors.NotFoundError("source file missing").
				WithContext("entity", e.ID).WithContext("file", file).Build()
		}
		return file, nil, derrors.WrapError(err, derrors.CategoryFileSystem, "failed to read source file").
			WithContext("file", file).Build()
	}
	return file, data, nil
}
