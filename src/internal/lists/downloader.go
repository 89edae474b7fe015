package lists

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/net/proxy"

	"github.com/ipmerge/ipmerge/src/internal/config"
	"github.com/ipmerge/ipmerge/src/internal/errors"
	"github.com/ipmerge/ipmerge/src/internal/hashing"
	"github.com/ipmerge/ipmerge/src/internal/log"
	"github.com/ipmerge/ipmerge/src/internal/utils"
)

// HTTPClient interface for dependency injection in tests
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher downloads the address archive.
type Fetcher struct {
	client  HTTPClient
	timeout time.Duration
}

// FetchResult describes a completed download.
type FetchResult struct {
	URL      string
	Path     string
	Size     int64
	Checksum string
	// Changed is false when the archive is byte-identical to the previous download.
	Changed bool
}

// NewFetcher builds a Fetcher from the source configuration, dialing through the
// configured SOCKS5 proxy if there is one.
func NewFetcher(cfg *config.SourceConfig) (*Fetcher, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, errors.NewConfigError("invalid source proxy", err)
		}
		dialer, err := proxy.FromURL(proxyURL, proxy.Direct)
		if err != nil {
			return nil, errors.NewConfigError("unsupported source proxy", err)
		}

		transport.Proxy = nil
		if contextDialer, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = contextDialer.DialContext
		} else {
			transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
		log.Debugf("Downloading through proxy %s", proxyURL.Redacted())
	}

	return NewFetcherWithClient(&http.Client{Transport: transport}, cfg.Timeout()), nil
}

// NewFetcherWithClient creates a Fetcher with a custom HTTP client.
// A zero timeout leaves requests bounded only by ctx.
func NewFetcherWithClient(client HTTPClient, timeout time.Duration) *Fetcher {
	return &Fetcher{client: client, timeout: timeout}
}

// Fetch downloads the archive to archivePath. URLs are tried in order, each once;
// the first successful download wins. The previous archive is only replaced once a
// download has completed.
func (f *Fetcher) Fetch(ctx context.Context, urls []string, archivePath string) (*FetchResult, error) {
	if len(urls) == 0 {
		return nil, errors.NewFetchError("no source URL configured", nil)
	}

	var errs []error
	for i, u := range urls {
		result, err := f.fetchOne(ctx, u, archivePath)
		if err == nil {
			return result, nil
		}

		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
		if i < len(urls)-1 {
			log.Warnf("Download from %s failed, trying next source: %v", u, err)
		}
	}

	return nil, errors.NewFetchError("failed to download archive", stderrors.Join(errs...))
}

func (f *Fetcher) fetchOne(ctx context.Context, rawURL, archivePath string) (*FetchResult, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	log.Infof("Downloading archive from %s", rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %s: %w", rawURL, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", rawURL, err)
	}
	defer utils.CloseOrWarn(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request to %s failed: %s", rawURL, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", archivePath, err)
	}

	partPath := archivePath + ".part"
	bodyProxy := hashing.NewMD5ReaderProxy(resp.Body)
	if err := writeStream(partPath, bodyProxy); err != nil {
		_ = utils.RemoveIfExists(partPath)
		return nil, fmt.Errorf("failed to save archive from %s: %w", rawURL, err)
	}

	changed, err := IsFileChanged(bodyProxy, archivePath)
	if err != nil {
		log.Warnf("Failed to compare archive checksum: %v", err)
		changed = true
	}

	if err := os.Rename(partPath, archivePath); err != nil {
		_ = utils.RemoveIfExists(partPath)
		return nil, fmt.Errorf("failed to move archive into place: %w", err)
	}
	if err := WriteChecksum(bodyProxy, archivePath); err != nil {
		log.Warnf("Failed to write archive checksum: %v", err)
	}

	checksum, _ := bodyProxy.GetChecksum()
	if changed {
		log.Infof("Downloaded %d bytes (md5 %s)", bodyProxy.Size(), checksum)
	} else {
		log.Infof("Downloaded %d bytes, archive is unchanged since the previous run", bodyProxy.Size())
	}

	return &FetchResult{
		URL:      rawURL,
		Path:     archivePath,
		Size:     bodyProxy.Size(),
		Checksum: checksum,
		Changed:  changed,
	}, nil
}

func writeStream(path string, r io.Reader) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, r); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
