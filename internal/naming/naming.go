package naming

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	Prefix          = "youtube_"
	Extension       = ".md"
	MaxTitleLength  = 50
	TimestampLayout = "20060102_150405"

	// maxAttempts bounds the suffix search in Create.
	maxAttempts = 1000
)

var unsafeCharacters = `<>:"/\|?*`

// SafeTitle removes characters that are not allowed in file names on common
// filesystems and truncates the result to MaxTitleLength characters.
func SafeTitle(title string) string {
	s := strings.Map(func(r rune) rune {
		if strings.ContainsRune(unsafeCharacters, r) {
			return -1
		}
		return r
	}, title)

	if r := []rune(s); len(r) > MaxTitleLength {
		s = string(r[:MaxTitleLength])
	}

	return s
}

// FileName returns "youtube_<safe title>_<YYYYMMDD_HHMMSS>.md".
func FileName(title string, t time.Time) string {
	return Prefix + SafeTitle(title) + "_" + t.Format(TimestampLayout) + Extension
}

// Create opens a new file for name inside dir. If the name is taken, a
// numeric suffix is appended ("report.md" becomes "report_2.md", then
// "report_3.md"). An empty dir means the current directory.
func Create(dir, name string) (*os.File, string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 1; i <= maxAttempts; i++ {
		candidate := name
		if i > 1 {
			candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}

		p := candidate
		if dir != "" {
			p = filepath.Join(dir, candidate)
		}

		fd, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return fd, p, nil
		}

		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("naming.Create: %w", err)
		}
	}

	return nil, "", fmt.Errorf("naming.Create: no free name for %q after %d attempts", name, maxAttempts)
}
