package fetcher

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResolveCookieFile locates a cookie jar for age-gated or
// authenticated hosts. A configured on-disk file wins; otherwise an
// environment-supplied blob is materialized into the temp directory.
// Returns "" when neither source is present.
func ResolveCookieFile(configuredPath, envVar string) (string, error) {
	if configuredPath != "" {
		if _, err := os.Stat(configuredPath); err == nil {
			return configuredPath, nil
		}
	}

	if envVar == "" {
		return "", nil
	}
	blob := os.Getenv(envVar)
	if blob == "" {
		return "", nil
	}

	path := filepath.Join(os.TempDir(), "media-digest-cookies.txt")
	if err := os.WriteFile(path, []byte(blob), 0600); err != nil {
		return "", fmt.Errorf("materialize cookie jar: %w", err)
	}
	return path, nil
}
