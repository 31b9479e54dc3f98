package main

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
)

// SiteConfig represents the site.json configuration for page chrome and
// site identity.
type SiteConfig struct {
	Site  SiteIdentity `json:"site"`
	Links LinksConfig  `json:"links"`
}

// SiteIdentity contains site-wide identity information
type SiteIdentity struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LinksConfig contains link tags (favicon, stylesheet)
type LinksConfig struct {
	Favicon    string `json:"favicon"`
	Stylesheet string `json:"stylesheet"`
}

var (
	siteConfig     *SiteConfig
	siteConfigMu   sync.RWMutex
	siteConfigOnce sync.Once
)

// GetSiteConfig returns the current site configuration (thread-safe)
func GetSiteConfig() *SiteConfig {
	siteConfigOnce.Do(func() {
		siteConfigMu.Lock()
		defer siteConfigMu.Unlock()
		if siteConfig == nil {
			siteConfig = loadSiteConfigFromFile()
		}
	})

	siteConfigMu.RLock()
	defer siteConfigMu.RUnlock()
	return siteConfig
}

func loadSiteConfigFromFile() *SiteConfig {
	configPath := os.Getenv("SITE_CONFIG")
	if configPath == "" {
		configPath = "config/site.json"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("site config file not found, using defaults", "path", configPath)
		} else {
			slog.Warn("could not read site config, using defaults", "path", configPath, "error", err)
		}
		return getDefaultSiteConfig()
	}

	var config SiteConfig
	if err := json.Unmarshal(data, &config); err != nil {
		slog.Error("invalid JSON in site config, using defaults", "path", configPath, "error", err)
		return getDefaultSiteConfig()
	}

	slog.Info("loaded site configuration", "name", config.Site.Name)
	return &config
}

// getDefaultSiteConfig returns the embedded default configuration
func getDefaultSiteConfig() *SiteConfig {
	return &SiteConfig{
		Site: SiteIdentity{
			Name:        "ACG Forum",
			Description: "A discussion forum for anime, comics and games",
		},
		Links: LinksConfig{
			Favicon:    "/static/favicon.ico",
			Stylesheet: "/static/style.css",
		},
	}
}
