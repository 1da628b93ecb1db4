// Package config provides configuration structures and utilities for pagecrawl.
// It defines the crawl settings, output locations, per-host request settings
// and crawl history preferences.
package config
