// Package fetch downloads the benchmark instance archives and extracts them.
package fetch

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrStatus is returned when the server answers with a non-2xx status.
var ErrStatus = errors.New("unexpected HTTP status")

// DefaultArchives are the Dropbox share links of the benchmark corpus.
var DefaultArchives = []string{
	"https://www.dropbox.com/scl/fi/y739yds3givrzuoao1b0u/C1.zip?rlkey=z22clyzvalloof4335cdosbea&dl=0",
	"https://www.dropbox.com/scl/fi/geoymn3ndrmp2rbkrrv6o/C3.zip?rlkey=bkee32fj67mlgg664vfm1jrlx&dl=0",
	"https://www.dropbox.com/scl/fi/254dl7d1vqh7o3fj5zxpg/C10.zip?rlkey=2ugfkzuo7tzro0kb1whplammv&dl=0",
	"https://www.dropbox.com/scl/fi/8v8d5mhf01vbvs29n9bh4/R3.zip?rlkey=9haa9ryoykfno81jy3u15q438&dl=0",
	"https://www.dropbox.com/scl/fi/57790j528scwlngdfiz1q/R10.zip?rlkey=owiwvl25j6h03qoi0i54705gf&dl=0",
	"https://www.dropbox.com/scl/fi/irs32pobjzxs9t6arym8o/sparse_corr.zip?rlkey=fsl6y7p2z2asg5ugc8e152xl2&dl=0",
	"https://www.dropbox.com/scl/fi/f9sznsnp78g5lgcn0ws77/sparse_rand.zip?rlkey=nh7bjqwvh7etd3v4y6jtcrrf3&dl=0",
}

// DirectURL rewrites a share link so that it serves the file itself
// (dl=1) and returns the file name taken from the URL path.
func DirectURL(raw string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	q := u.Query()
	q.Set("dl", "1")
	u.RawQuery = q.Encode()

	name := path.Base(u.Path)
	if name == "/" || name == "." {
		return "", "", fmt.Errorf("no file name in %s", raw)
	}
	return u.String(), name, nil
}

type Fetcher struct {
	Client *http.Client
	Dir    string
	Logger *zap.Logger
}

func New(dir string, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		Client: &http.Client{Timeout: 10 * time.Minute},
		Dir:    dir,
		Logger: logger,
	}
}

// Download saves the body of link to dest.
func (f *Fetcher) Download(ctx context.Context, link, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return out.Close()
}

// Unzip extracts archive into dir. Entries that would land outside dir are
// rejected.
func Unzip(archive, dir string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	root, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	for _, file := range r.File {
		target := filepath.Join(root, filepath.FromSlash(file.Name))
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return fmt.Errorf("illegal path in archive: %s", file.Name)
		}
		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := extractFile(file, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(file *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// FetchAll downloads and extracts every archive in turn. A failing archive is
// logged and skipped; the number of archives extracted is returned.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) int {
	extracted := 0
	for _, raw := range urls {
		direct, name, err := DirectURL(raw)
		if err != nil {
			f.Logger.Error("Skipping malformed archive URL", zap.String("url", raw), zap.Error(err))
			continue
		}
		dest := filepath.Join(f.Dir, name)

		f.Logger.Info("Downloading archive", zap.String("file", name))
		if err := f.Download(ctx, direct, dest); err != nil {
			f.Logger.Error("Error downloading archive", zap.String("file", name), zap.Error(err))
			continue
		}

		f.Logger.Info("Unzipping archive", zap.String("file", name))
		if err := Unzip(dest, f.Dir); err != nil {
			f.Logger.Error("Error unzipping archive", zap.String("file", name), zap.Error(err))
			continue
		}
		extracted++
	}
	f.Logger.Info("Archives processed", zap.Int("extracted", extracted), zap.Int("total", len(urls)))
	return extracted
}
