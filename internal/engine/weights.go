package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/segmentio/ksuid"
)

// ensureWeights makes sure the model weight file referenced by rawURL exists
// under dir and matches wantSHA256 (hex, optional). The download happens at
// most once; a file that already verifies is reused across restarts.
func ensureWeights(ctx context.Context, dir, rawURL, wantSHA256 string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("weights url: %w", err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("weights url %q has no file name", rawURL)
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("weights dir: %w", err)
	}
	dst := filepath.Join(dir, name)

	if ok, err := fileVerifies(dst, wantSHA256); err == nil && ok {
		return dst, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download weights: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download weights: unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	// Download to a temp name first so a partial fetch never looks like a
	// usable weight file.
	tmp := filepath.Join(dir, ".download-"+ksuid.New().String())
	f, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	_, err = io.Copy(io.MultiWriter(f, h), resp.Body)
	cerr := f.Close()
	if err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("download weights: %w", err)
	}
	if cerr != nil {
		_ = os.Remove(tmp)
		return "", cerr
	}
	if wantSHA256 != "" {
		got := hex.EncodeToString(h.Sum(nil))
		if !strings.EqualFold(got, wantSHA256) {
			_ = os.Remove(tmp)
			return "", fmt.Errorf("weights checksum mismatch: got %s want %s", got, wantSHA256)
		}
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return dst, nil
}

// fileVerifies reports whether p exists and, when a digest is given, hashes to it.
func fileVerifies(p, wantSHA256 string) (bool, error) {
	fi, err := os.Stat(p)
	if err != nil || fi.IsDir() {
		return false, err
	}
	if wantSHA256 == "" {
		return fi.Size() > 0, nil
	}
	f, err := os.Open(p)
	if err != nil {
		return false, err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return false, err
	}
	return strings.EqualFold(hex.EncodeToString(h.Sum(nil)), wantSHA256), nil
}
