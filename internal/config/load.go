package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
)

// Load reads siteConfig.yaml and the optional languages.yaml and versions.json from
// websiteDir. A missing or malformed site configuration is a fatal configuration error.
func Load(websiteDir string) (*Site, error) {
	if err := loadEnvFile(websiteDir); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryConfig, "failed to load .env file").Fatal().Build()
	}

	path := filepath.Join(websiteDir, SiteConfigFile)
	var site Site
	found, err := readYAML(path, &site)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, derrors.ConfigError(fmt.Sprintf("configuration file not found: %s", path)).
			WithContext("path", path).Build()
	}

	if _, err := readYAML(filepath.Join(websiteDir, LanguagesFile), &site.Languages); err != nil {
		return nil, err
	}
	// versions.json is a JSON array, which is valid YAML.
	if _, err := readYAML(filepath.Join(websiteDir, VersionsFile), &site.Versions); err != nil {
		return nil, err
	}

	applyDefaults(&site)

	if err := Validate(&site); err != nil {
		return nil, err
	}
	return &site, nil
}

// readYAML decodes path into out after expanding environment variables.
// It reports found=false without error when the file does not exist.
func readYAML(path string, out any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, derrors.WrapError(err, derrors.CategoryConfig, "failed to read config file").
			Fatal().WithContext("path", path).Build()
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), out); err != nil {
		return true, derrors.WrapError(err, derrors.CategoryConfig, "malformed config file").
			Fatal().WithContext("path", path).Build()
	}
	return true, nil
}
