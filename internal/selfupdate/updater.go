package selfupdate

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	ErrDevBuild      = errors.New("cannot update a development build")
	ErrAlreadyLatest = errors.New("already running the latest version")
	ErrChecksum      = errors.New("checksum verification failed")
)

// releaseAsset names the published archive for a platform and the
// binary inside it.
type releaseAsset struct {
	Archive string
	Binary  string
}

func (a releaseAsset) zipped() bool { return strings.HasSuffix(a.Archive, ".zip") }

// Update replaces the running binary with the release tagged
// targetVersion, or with the latest release when targetVersion is
// empty. Progress messages go to report; stage detail goes to the
// Checker's logger.
func (c *Checker) Update(ctx context.Context, currentVersion, targetVersion string, report func(string)) error {
	if currentVersion == "(devel)" {
		return ErrDevBuild
	}

	tag := targetVersion
	if tag == "" {
		report("Checking for latest version...")
		result, err := c.Check(ctx, &CheckInput{Version: currentVersion})
		if err != nil {
			return fmt.Errorf("check for updates: %w", err)
		}
		if !result.UpdateAvailable {
			return ErrAlreadyLatest
		}
		tag = result.LatestVersion
	}

	asset, err := assetFor(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return err
	}
	c.logger.Debug("resolved release asset", "tag", tag, "archive", asset.Archive)

	base := strings.TrimRight(c.downloadBaseURL, "/")
	downloads := fmt.Sprintf("%s/%s/%s/releases/download/%s", base, c.owner, c.repo, tag)

	report(fmt.Sprintf("Downloading %s...", tag))
	archive, err := c.fetch(ctx, downloads+"/"+asset.Archive)
	if err != nil {
		return fmt.Errorf("download archive: %w", err)
	}

	report("Verifying checksum...")
	sums, err := c.fetch(ctx, downloads+"/checksums.txt")
	if err != nil {
		return fmt.Errorf("download checksums: %w", err)
	}
	want, ok := parseChecksums(sums)[asset.Archive]
	if !ok {
		return fmt.Errorf("no checksum found for %s in checksums.txt", asset.Archive)
	}
	if err := verifyChecksum(archive, want); err != nil {
		return err
	}

	report("Extracting binary...")
	binary, err := extractBinary(archive, asset)
	if err != nil {
		return fmt.Errorf("extract binary: %w", err)
	}

	report("Applying update...")
	target, err := c.execPath()
	if err != nil {
		return fmt.Errorf("resolve executable path: %w", err)
	}
	c.logger.Debug("swapping binary", "target", target, "bytes", len(binary))

	sum := sha256.Sum256(binary)
	if err := swapBinary(binary, target, sum[:]); err != nil {
		return fmt.Errorf("apply update: %w", err)
	}

	c.logger.Info("updated binary", "tag", tag, "target", target)
	report(fmt.Sprintf("Updated to %s", tag))
	return nil
}

// assetFor maps a platform onto its goreleaser artifact names.
func assetFor(goos, goarch string) (releaseAsset, error) {
	if goos == "darwin" {
		return releaseAsset{Archive: "croki_Darwin_all.tar.gz", Binary: "croki"}, nil
	}

	arch, ok := map[string]string{"amd64": "x86_64", "arm64": "arm64", "386": "i386"}[goarch]
	if !ok {
		return releaseAsset{}, fmt.Errorf("unsupported architecture: %s", goarch)
	}
	switch goos {
	case "linux":
		return releaseAsset{Archive: fmt.Sprintf("croki_Linux_%s.tar.gz", arch), Binary: "croki"}, nil
	case "windows":
		return releaseAsset{Archive: fmt.Sprintf("croki_Windows_%s.zip", arch), Binary: "croki.exe"}, nil
	default:
		return releaseAsset{}, fmt.Errorf("unsupported operating system: %s", goos)
	}
}

func (c *Checker) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	return io.ReadAll(resp.Body)
}

// parseChecksums reads a goreleaser checksums.txt into a name-to-hash
// map, skipping malformed lines.
func parseChecksums(data []byte) map[string]string {
	result := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		parts := strings.Fields(line)
		if len(parts) != 2 {
			continue
		}
		result[parts[1]] = parts[0]
	}
	return result
}

func verifyChecksum(data []byte, expectedHex string) error {
	h := sha256.Sum256(data)
	actual := hex.EncodeToString(h[:])
	if actual != expectedHex {
		return fmt.Errorf("%w: expected %s, got %s", ErrChecksum, expectedHex, actual)
	}
	return nil
}

func extractBinary(archive []byte, asset releaseAsset) ([]byte, error) {
	if asset.zipped() {
		return extractFromZip(archive, asset.Binary)
	}
	return extractFromTarGz(archive, asset.Binary)
}

func extractFromTarGz(data []byte, name string) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tar: %w", err)
		}
		if filepath.Base(hdr.Name) == name && hdr.Typeflag == tar.TypeReg {
			return io.ReadAll(tr)
		}
	}
	return nil, fmt.Errorf("binary %q not found in archive", name)
}

func extractFromZip(data []byte, name string) ([]byte, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	for _, f := range r.File {
		if filepath.Base(f.Name) == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer func() { _ = rc.Close() }()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("binary %q not found in archive", name)
}

// swapBinary writes the new binary next to the target and renames it
// into place, keeping the target's mode. The temp copy is re-read and
// hashed before the rename.
func swapBinary(binary []byte, targetPath string, expectedHash []byte) error {
	info, err := os.Stat(targetPath)
	if err != nil {
		return fmt.Errorf("stat target: %w", err)
	}

	tmpDir, err := os.MkdirTemp(filepath.Dir(targetPath), ".croki-update-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	tmpFile := filepath.Join(tmpDir, "croki-new")
	if err := os.WriteFile(tmpFile, binary, 0600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	written, err := os.ReadFile(tmpFile)
	if err != nil {
		return fmt.Errorf("re-read temp file: %w", err)
	}
	writtenHash := sha256.Sum256(written)
	if !bytes.Equal(writtenHash[:], expectedHash) {
		return fmt.Errorf("%w: temp file was tampered with after write", ErrChecksum)
	}

	if err := os.Rename(tmpFile, targetPath); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	if err := os.Chmod(targetPath, info.Mode()); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	return nil
}
