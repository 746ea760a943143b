package util

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

const KiB = 1024
const MiB = KiB * 1024
const GiB = MiB * 1024

func FormatBytes(bytes int64) string {
	if bytes < KiB {
		return fmt.Sprintf("%dB", bytes)
	} else if bytes < MiB {
		return fmt.Sprintf("%.1fKiB", float64(bytes)/KiB)
	} else if bytes < GiB {
		return fmt.Sprintf("%.1fMiB", float64(bytes)/MiB)
	} else {
		return fmt.Sprintf("%.1fGiB", float64(bytes)/GiB)
	}
}

var unsafeChars = regexp.MustCompile(`[\/\\:\*\?"<>\|\p{C}]`)

// FileNameFromURL returns the last path segment of rawURL. Without one, the host is used.
func FileNameFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrapf(err, "invalid URL %s", rawURL)
	}

	fileName := u.Path[strings.LastIndex(u.Path, "/")+1:]

	// If there is no path, set filename to the host
	if fileName == "" {
		host := strings.TrimPrefix(u.Hostname(), "www.")
		fileName = strings.ReplaceAll(host, ".", "-")
	}

	if fileName == "" {
		return "", errors.Errorf("no file name in URL %s", rawURL)
	}

	return sanitizeFileName(fileName), nil
}

func sanitizeFileName(name string) string {
	name = unsafeChars.ReplaceAllString(name, "-")
	return strings.Trim(name, " .")
}
