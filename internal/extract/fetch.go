package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kailas-cloud/clausewise/internal/domain"
)

const (
	fetchTimeout  = 30 * time.Second
	maxFetchBytes = 32 << 20 // 32 MiB
)

// Fetch downloads a document over HTTP and returns its bytes and the
// reported Content-Type. The download is bounded in both time and size.
func Fetch(ctx context.Context, url string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build document request: %w: %v", domain.ErrUnsupportedDocument, err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch document: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read document body: %w", err)
	}
	if len(data) > maxFetchBytes {
		return nil, "", fmt.Errorf("document exceeds %d bytes: %w", maxFetchBytes, domain.ErrUnsupportedDocument)
	}
	return data, resp.Header.Get("Content-Type"), nil
}
