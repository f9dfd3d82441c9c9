// Package download fetches the toolbar application files into a local folder.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/santiagomed/devtut/logger"
	"github.com/spf13/afero"
)

const rawBase = "https://raw.githubusercontent.com/vonage-community/tutorial-interactive_tutorials/refs/heads/main/toolbar-app/vonage-toolbar/"

// Asset is a remote file and the name it is saved under.
type Asset struct {
	URL  string
	Name string
}

// DefaultAssets are the toolbar integration files.
var DefaultAssets = []Asset{
	{URL: rawBase + "integration.ts", Name: "integration.ts"},
	{URL: rawBase + "app.ts", Name: "app.ts"},
}

// Result reports the outcome of one asset download.
type Result struct {
	Asset Asset
	Path  string
	Bytes int64
	Err   error
}

// Fetcher downloads assets into Dir.
type Fetcher struct {
	Fs     afero.Fs
	HTTP   *http.Client
	Dir    string
	Logger logger.Logger
}

// NewFetcher creates a fetcher writing into dir.
func NewFetcher(fs afero.Fs, dir string, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.NewNullLogger()
	}
	return &Fetcher{
		Fs:     fs,
		HTTP:   &http.Client{Timeout: 5 * time.Minute},
		Dir:    dir,
		Logger: log,
	}
}

type progressWriter struct {
	total      int64
	downloaded int64
	onProgress func(float64)
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	pw.downloaded += int64(len(p))
	if pw.total > 0 && pw.onProgress != nil {
		pw.onProgress(float64(pw.downloaded) / float64(pw.total))
	}
	return len(p), nil
}

// Fetch downloads a single asset. onProgress, when set, receives the
// completed fraction whenever the response size is known.
func (f *Fetcher) Fetch(ctx context.Context, asset Asset, onProgress func(float64)) Result {
	res := Result{Asset: asset, Path: filepath.Join(f.Dir, asset.Name)}
	res.Bytes, res.Err = f.fetch(ctx, asset, res.Path, onProgress)
	return res
}

func (f *Fetcher) fetch(ctx context.Context, asset Asset, dst string, onProgress func(float64)) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.URL, nil)
	if err != nil {
		return 0, fmt.Errorf("error creating request: %w", err)
	}

	client := f.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := f.Fs.MkdirAll(f.Dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory %s: %w", f.Dir, err)
	}
	out, err := f.Fs.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer out.Close()

	pw := &progressWriter{total: resp.ContentLength, onProgress: onProgress}
	n, err := io.Copy(out, io.TeeReader(resp.Body, pw))
	if err != nil {
		return n, fmt.Errorf("failed to write %s: %w", dst, err)
	}
	if onProgress != nil {
		onProgress(1.0)
	}
	return n, nil
}

// FetchAll downloads every asset. A failed download does not stop the others.
func (f *Fetcher) FetchAll(ctx context.Context, assets []Asset) []Result {
	results := make([]Result, 0, len(assets))
	for _, asset := range assets {
		log := f.Logger.WithField("file", asset.Name)
		log.Info("downloading")

		res := f.Fetch(ctx, asset, nil)
		if res.Err != nil {
			log.Error(fmt.Sprintf("error downloading file: %v", res.Err))
		} else {
			log.Info("file downloaded and written successfully")
		}
		results = append(results, res)
	}
	return results
}
