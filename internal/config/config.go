package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"fknsrs.biz/p/ytreport/internal/locale"
	"fknsrs.biz/p/ytreport/internal/stringutil"
)

type LevelList []logrus.Level

func (a LevelList) MarshalText() ([]byte, error) {
	if len(a) == 0 {
		return []byte("-"), nil
	}

	s := make([]string, len(a))
	for i, e := range a {
		s[i] = e.String()
	}

	return []byte(strings.Join(s, ",")), nil
}

func (a *LevelList) UnmarshalText(d []byte) error {
	if string(d) == "" || string(d) == "-" {
		*a = LevelList{}
		return nil
	}

	var aa LevelList

	for _, e := range stringutil.SplitList(string(d)) {
		l, err := logrus.ParseLevel(e)
		if err != nil {
			return fmt.Errorf("config.LevelList.UnmarshalText: could not parse value as logrus level: %w", err)
		}

		aa = append(aa, l)
	}

	*a = aa

	return nil
}

// StringList is a comma separated list of words.
type StringList []string

func (a StringList) MarshalText() ([]byte, error) {
	return []byte(strings.Join(a, ",")), nil
}

func (a *StringList) UnmarshalText(d []byte) error {
	*a = StringList(stringutil.SplitList(string(d)))
	return nil
}

type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = 0
		return nil
	}

	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("config.Duration.UnmarshalText: %w", err)
	}

	if v < 0 {
		return fmt.Errorf("config.Duration.UnmarshalText: duration can not be negative: %s", v)
	}

	*d = Duration(v)

	return nil
}

const (
	LogFormatText = "text"
	LogFormatJSON = "json"

	MetadataProviderYTDLP  = "ytdlp"
	MetadataProviderDirect = "direct"
)

type Config struct {
	Config           string       `name:"config" toml:"config" yaml:"config" help:"Config file location."`
	LogLevel         logrus.Level `name:"log_level" toml:"log_level" yaml:"log_level" help:"Global log level."`
	LogFormat        string       `name:"log_format" toml:"log_format" yaml:"log_format" help:"Log output format, text or json."`
	LogDebugLevels   LevelList    `name:"log_debug_levels" toml:"log_debug_levels" yaml:"log_debug_levels" help:"Which log levels to include stack data on."`
	OutputDir        string       `name:"output_dir" toml:"output_dir" yaml:"output_dir" help:"Directory for reports when none is given on the command line."`
	Languages        StringList   `name:"languages" toml:"languages" yaml:"languages" help:"Preferred caption languages, most preferred first."`
	Locale           string       `name:"locale" toml:"locale" yaml:"locale" help:"Language of the report text (en or ko)."`
	MetadataProvider string       `name:"metadata_provider" toml:"metadata_provider" yaml:"metadata_provider" help:"Where video metadata comes from, ytdlp or direct."`
	YTDLPProgram     string       `name:"ytdlp_program" toml:"ytdlp_program" yaml:"ytdlp_program" help:"Name or path of the yt-dlp executable."`
	HTTPCachePath    string       `name:"http_cache_path" toml:"http_cache_path" yaml:"http_cache_path" help:"Location for HTTP client cache; empty disables caching."`
	HTTPCacheMaxAge  Duration     `name:"http_cache_max_age" toml:"http_cache_max_age" yaml:"http_cache_max_age" help:"How long cached HTTP responses are used."`
	HTTPCacheRFC     bool         `name:"http_cache_rfc" toml:"http_cache_rfc" yaml:"http_cache_rfc" help:"Follow the server's caching headers instead of http_cache_max_age."`
	HTTPTimeout      Duration     `name:"http_timeout" toml:"http_timeout" yaml:"http_timeout" help:"Timeout for each HTTP request; 0 means none."`
	TemplateDir      string       `name:"template_dir" toml:"template_dir" yaml:"template_dir" help:"Directory with templates overriding the built in report layout."`
	YouTubeBaseURL   string       `name:"youtube_base_url" toml:"youtube_base_url" yaml:"youtube_base_url" help:"Base URL for watch page requests."`
}

func Default() Config {
	return Config{
		LogLevel:         logrus.WarnLevel,
		LogFormat:        LogFormatText,
		LogDebugLevels:   LevelList{},
		Languages:        StringList{"ko", "en"},
		Locale:           locale.English.Name,
		MetadataProvider: MetadataProviderYTDLP,
		YTDLPProgram:     "yt-dlp",
		HTTPCacheMaxAge:  Duration(time.Hour * 24),
		YouTubeBaseURL:   "https://www.youtube.com",
	}
}

func (c Config) Validate() error {
	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("config.Config.Validate: log_format must be %s or %s; was %q", LogFormatText, LogFormatJSON, c.LogFormat)
	}

	switch c.MetadataProvider {
	case MetadataProviderYTDLP, MetadataProviderDirect:
	default:
		return fmt.Errorf("config.Config.Validate: metadata_provider must be %s or %s; was %q", MetadataProviderYTDLP, MetadataProviderDirect, c.MetadataProvider)
	}

	if _, err := locale.Lookup(c.Locale); err != nil {
		return fmt.Errorf("config.Config.Validate: %w", err)
	}

	if len(c.Languages) == 0 {
		return fmt.Errorf("config.Config.Validate: languages must name at least one language")
	}

	if c.MetadataProvider == MetadataProviderYTDLP && c.YTDLPProgram == "" {
		return fmt.Errorf("config.Config.Validate: ytdlp_program is required when metadata_provider is %s", MetadataProviderYTDLP)
	}

	if u, err := url.Parse(c.YouTubeBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config.Config.Validate: youtube_base_url must be an absolute http or https url; was %q", c.YouTubeBaseURL)
	}

	return nil
}
