package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultLocale is used when no locale is configured.
const DefaultLocale = "en"

//go:embed locales/*.yaml
var localeFiles embed.FS

// Profile carries every user-visible string and the window geometry for one
// UI language.
type Profile struct {
	Code   string `yaml:"code"`
	Title  string `yaml:"title"`
	Window struct {
		Width  float32 `yaml:"width"`
		Height float32 `yaml:"height"`
	} `yaml:"window"`
	Labels struct {
		BackupLocation string `yaml:"backup_location"`
		Copies         string `yaml:"copies"`
		Save           string `yaml:"save"`
	} `yaml:"labels"`
	Placeholders struct {
		BackupLocation string `yaml:"backup_location"`
		Copies         string `yaml:"copies"`
		Editor         string `yaml:"editor"`
	} `yaml:"placeholders"`
	Menu struct {
		File  string `yaml:"file"`
		Save  string `yaml:"save"`
		Quit  string `yaml:"quit"`
		Help  string `yaml:"help"`
		About string `yaml:"about"`
	} `yaml:"menu"`
	Messages struct {
		Saved         string `yaml:"saved"`
		SavedTitle    string `yaml:"saved_title"`
		BackupsFailed string `yaml:"backups_failed"`
		OriginalError string `yaml:"original_error"`
		ErrorTitle    string `yaml:"error_title"`
		InvalidCopies string `yaml:"invalid_copies"`
		TooManyCopies string `yaml:"too_many_copies"`
		About         string `yaml:"about"`
		QuitTitle     string `yaml:"quit_title"`
		QuitPending   string `yaml:"quit_pending"`
	} `yaml:"messages"`
	Status struct {
		Ready             string `yaml:"ready"`
		Saving            string `yaml:"saving"`
		Saved             string `yaml:"saved"`
		SavedWithFailures string `yaml:"saved_with_failures"`
		Failed            string `yaml:"failed"`
	} `yaml:"status"`
}

// Available lists the bundled locale codes in sorted order.
func Available() []string {
	entries, err := fs.ReadDir(localeFiles, "locales")
	if err != nil {
		return nil
	}
	codes := make([]string, 0, len(entries))
	for _, e := range entries {
		codes = append(codes, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(codes)
	return codes
}

// Load returns the profile for code. An empty code means DefaultLocale.
func Load(code string) (*Profile, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		code = DefaultLocale
	}

	data, err := localeFiles.ReadFile(path.Join("locales", code+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("unknown locale %q (available: %s)", code, strings.Join(Available(), ", "))
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse locale %q: %w", code, err)
	}
	return &p, nil
}

// MustLoad is Load for locales known to be bundled.
func MustLoad(code string) *Profile {
	p, err := Load(code)
	if err != nil {
		panic(err)
	}
	return p
}
