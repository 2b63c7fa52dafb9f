package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nguyentantai21042004/media-digest/internal/logger"
)

// ErrNoFiles reports a packaging request with nothing to pack.
var ErrNoFiles = errors.New("no files to archive")

// Packager bundles downloaded media into flat zip archives.
type Packager struct {
	dir    string
	logger logger.Logger
	now    func() time.Time
}

// NewPackager creates a Packager writing into dir.
func NewPackager(dir string, log logger.Logger) *Packager {
	return &Packager{dir: dir, logger: log, now: time.Now}
}

// Pack writes the given files into a timestamped archive and returns
// its filename. Entries are stored flat under their base names; when
// two inputs share a base name the later ones get a numeric suffix.
// A file that disappeared between selection and packaging is skipped,
// not fatal.
func (p *Packager) Pack(paths []string) (string, error) {
	if len(paths) == 0 {
		return "", ErrNoFiles
	}

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", fmt.Errorf("create archive directory: %w", err)
	}

	name := fmt.Sprintf("batch_download_%s.zip", p.now().Format("20060102_150405"))
	outPath := filepath.Join(p.dir, name)

	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	seen := make(map[string]int)
	packed := 0

	for _, path := range paths {
		if err := p.addFile(zw, path, seen); err != nil {
			if os.IsNotExist(err) {
				p.logger.Warn(context.Background(), "Skipping missing file: %s", path)
				continue
			}
			zw.Close()
			return "", err
		}
		packed++
	}

	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("finalize archive: %w", err)
	}
	if packed == 0 {
		os.Remove(outPath)
		return "", ErrNoFiles
	}

	p.logger.Info(context.Background(), "Packed %d files into %s", packed, name)
	return name, nil
}

func (p *Packager) addFile(zw *zip.Writer, path string, seen map[string]int) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	base := filepath.Base(path)
	if n := seen[base]; n > 0 {
		ext := filepath.Ext(base)
		base = fmt.Sprintf("%s (%d)%s", base[:len(base)-len(ext)], n, ext)
	}
	seen[filepath.Base(path)]++

	w, err := zw.Create(base)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}

// Path resolves an archive filename inside the packager directory,
// rejecting anything that escapes it.
func (p *Packager) Path(name string) (string, error) {
	if name != filepath.Base(name) || name == "" {
		return "", fmt.Errorf("invalid archive name: %q", name)
	}
	path := filepath.Join(p.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}
