// Package assets builds the generated site assets: main.css, the sitemap and blog feeds.
package assets

import (
	"cmp"
	_ "embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/docserve/internal/config"
	derrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
)

//go:embed static/main.css
var baseCSS string

// CSSResult is the generated stylesheet plus configuration problems worth reporting.
type CSSResult struct {
	CSS      string
	Warnings []string
}

// MainCSS concatenates the built-in stylesheet with every .css file below staticDir that
// is not listed in separate_css, then substitutes $<color>, $<font> and $codeColor tokens.
func MainCSS(site *config.Site, staticDir string) (CSSResult, error) {
	var res CSSResult
	var b strings.Builder
	b.WriteString(baseCSS)

	files, err := cssFiles(staticDir)
	if err != nil {
		return res, err
	}
	for _, f := range files {
		if isSeparateCSS(site, f) {
			continue
		}
		data, err := os.ReadFile(f)
		if err != nil {
			return res, derrors.WrapError(err, derrors.CategoryFileSystem, "failed to read stylesheet").
				WithContext("file", f).Build()
		}
		b.WriteByte('\n')
		b.Write(data)
	}

	primary, secondary := site.Colors["primaryColor"], site.Colors["secondaryColor"]
	if primary == "" || secondary == "" {
		res.Warnings = append(res.Warnings,
			"missing color configuration: colors must include primaryColor and secondaryColor")
	}

	tokens := map[string]string{}
	for k, v := range site.Colors {
		tokens[k] = v
	}
	if primary != "" {
		tokens["codeColor"] = withAlpha(primary, 0.07)
	}
	for k, fonts := range site.Fonts {
		quoted := make([]string, len(fonts))
		for i, f := range fonts {
			quoted[i] = strconv.Quote(f)
		}
		tokens[k] = strings.Join(quoted, ", ")
	}
	res.CSS = substitute(b.String(), tokens)
	return res, nil
}

// substitute replaces $key tokens, longest key first so "$primaryColorDark" is not
// clobbered by "$primaryColor".
func substitute(css string, tokens map[string]string) string {
	keys := make([]string, 0, len(tokens))
	for k := range tokens {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		return cmp.Or(cmp.Compare(len(b), len(a)), strings.Compare(a, b))
	})
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "$"+k, tokens[k])
	}
	return strings.NewReplacer(pairs...).Replace(css)
}

func cssFiles(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == root {
				return filepath.SkipDir
			}
			return err
		}
		if !d.IsDir() && filepath.Ext(p) == ".css" {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "failed to list stylesheets").
			WithContext("path", root).Build()
	}
	slices.Sort(out)
	return out, nil
}

func isSeparateCSS(site *config.Site, file string) bool {
	slashed := filepath.ToSlash(file)
	for _, s := range site.SeparateCSS {
		if s != "" && strings.Contains(slashed, s) {
			return true
		}
	}
	return false
}

// withAlpha turns a #rgb or #rrggbb color into rgba() with the given alpha. Other
// values are returned unchanged.
func withAlpha(color string, alpha float64) string {
	hex := strings.TrimPrefix(strings.TrimSpace(color), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 || !strings.HasPrefix(strings.TrimSpace(color), "#") {
		return color
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", v>>16&0xff, v>>8&0xff, v&0xff, strconv.FormatFloat(alpha, 'f', -1, 64))
}
