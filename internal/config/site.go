package config

import (
	"maps"
	"net/http"
	"strings"
	"time"
)

// HostConfig holds request settings for a single host.
type HostConfig struct {
	// Cookie is an HTTP cookie to send to this host.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this host.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// CrawlSettings mirrors the crawl flags so they can be kept in the file.
// Unset fields leave the current value alone.
type CrawlSettings struct {
	Seeds       []string       `yaml:"seeds,omitempty"`
	OutputDir   string         `yaml:"output_dir,omitempty"`
	FilePrefix  string         `yaml:"file_prefix,omitempty"`
	BatchSize   int            `yaml:"batch_size,omitempty"`
	MaxPages    *int           `yaml:"max_pages,omitempty"`
	Timeout     *time.Duration `yaml:"timeout,omitempty"`
	UserAgent   string         `yaml:"user_agent,omitempty"`
	MaxBodySize *int64         `yaml:"max_body_size,omitempty"`
	DBDir       string         `yaml:"db_dir,omitempty"`
	History     *bool          `yaml:"history,omitempty"`
	SummaryFile string         `yaml:"summary_file,omitempty"`
	LogFormat   string         `yaml:"log_format,omitempty"`
}

// File represents the structure of the .pagecrawl configuration file.
type File struct {
	// Crawl holds crawl settings that override the built-in defaults.
	Crawl CrawlSettings `yaml:"crawl,omitempty"`

	// Hosts maps host names (without scheme or port, e.g. "www.azquotes.com")
	// to their request settings.
	Hosts map[string]HostConfig `yaml:"hosts,omitempty"`

	// Defaults contains request settings applied to all hosts unless
	// overridden in the host-specific configuration.
	Defaults HostConfig `yaml:"defaults,omitempty"`
}

// GetHostConfig returns the configuration for host.
// It merges the host-specific configuration with defaults. Host names are
// matched case-insensitively.
func (cf *File) GetHostConfig(host string) HostConfig {
	result := HostConfig{Cookie: cf.Defaults.Cookie}
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = maps.Clone(cf.Defaults.Headers)
	}

	hostConfig, ok := cf.Hosts[strings.ToLower(host)]
	if !ok {
		return result
	}

	if hostConfig.Cookie != "" {
		result.Cookie = hostConfig.Cookie
	}
	if len(hostConfig.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		maps.Copy(result.Headers, hostConfig.Headers)
	}

	return result
}

// Decorate adds the cookie and headers configured for the request's host.
func (cf *File) Decorate(req *http.Request) {
	hc := cf.GetHostConfig(req.URL.Hostname())
	for name, value := range hc.Headers {
		req.Header.Set(name, value)
	}
	if hc.Cookie != "" {
		req.Header.Set("Cookie", hc.Cookie)
	}
}

// ApplyTo overlays the file's crawl settings on c.
func (cf *File) ApplyTo(c *Config) {
	s := cf.Crawl
	if len(s.Seeds) > 0 {
		c.Seeds = append([]string(nil), s.Seeds...)
	}
	if s.OutputDir != "" {
		c.OutputDir = s.OutputDir
	}
	if s.FilePrefix != "" {
		c.FilePrefix = s.FilePrefix
	}
	if s.BatchSize != 0 {
		c.BatchSize = s.BatchSize
	}
	if s.MaxPages != nil {
		c.MaxPages = *s.MaxPages
	}
	if s.Timeout != nil {
		c.Timeout = *s.Timeout
	}
	if s.UserAgent != "" {
		c.UserAgent = s.UserAgent
	}
	if s.MaxBodySize != nil {
		c.MaxBodySize = *s.MaxBodySize
	}
	if s.DBDir != "" {
		c.DBDir = s.DBDir
	}
	if s.History != nil {
		c.SaveToDB = *s.History
	}
	if s.SummaryFile != "" {
		c.SummaryFile = s.SummaryFile
	}
	if s.LogFormat != "" {
		c.LogFormat = s.LogFormat
	}
	c.Hosts = cf
}
