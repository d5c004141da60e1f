package updater

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/creativeprojects/go-selfupdate"
)

// fakeSource serves releases from memory the way a GitHub release page would
type fakeSource struct {
	releases  []selfupdate.SourceRelease
	assets    map[int64][]byte
	listErr   error
	listCalls int
	nextID    int64
}

// publish adds a release carrying a binary for this platform and its SHA256SUMS.txt
func (s *fakeSource) publish(tag string, binary []byte) *fakeRelease {
	if s.assets == nil {
		s.assets = make(map[int64][]byte)
	}

	name := fmt.Sprintf("nvmlsg_%s_%s", runtime.GOOS, runtime.GOARCH)
	sums := fmt.Sprintf("%x  %s\n", sha256.Sum256(binary), name)

	rel := &fakeRelease{tag: tag, notes: "Release " + tag}
	rel.binaryID = s.addAsset(rel, name, binary)
	s.addAsset(rel, checksumFile, []byte(sums))

	s.releases = append(s.releases, rel)
	return rel
}

func (s *fakeSource) addAsset(rel *fakeRelease, name string, data []byte) int64 {
	s.nextID++
	s.assets[s.nextID] = data
	rel.assets = append(rel.assets, &fakeAsset{id: s.nextID, name: name, size: len(data)})
	return s.nextID
}

func (s *fakeSource) ListReleases(ctx context.Context, repository selfupdate.Repository) ([]selfupdate.SourceRelease, error) {
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.releases, nil
}

func (s *fakeSource) DownloadReleaseAsset(ctx context.Context, rel *selfupdate.Release, assetID int64) (io.ReadCloser, error) {
	data, ok := s.assets[assetID]
	if !ok {
		return nil, fmt.Errorf("asset %d not found", assetID)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type fakeRelease struct {
	tag      string
	notes    string
	assets   []selfupdate.SourceAsset
	binaryID int64
}

func (r *fakeRelease) GetID() int64 { return 1 }
func (r *fakeRelease) GetTagName() string { return r.tag }
func (r *fakeRelease) GetDraft() bool { return false }
func (r *fakeRelease) GetPrerelease() bool { return false }
func (r *fakeRelease) GetPublishedAt() time.Time { return time.Time{} }
func (r *fakeRelease) GetReleaseNotes() string { return r.notes }
func (r *fakeRelease) GetName() string { return "nvmlsg " + r.tag }
func (r *fakeRelease) GetURL() string { return "https://github.com/acme/nvmlsg/releases/tag/" + r.tag }
func (r *fakeRelease) GetAssets() []selfupdate.SourceAsset { return r.assets }

type fakeAsset struct {
	id   int64
	name string
	size int
}

func (a *fakeAsset) GetID() int64 { return a.id }
func (a *fakeAsset) GetName() string { return a.name }
func (a *fakeAsset) GetSize() int { return a.size }
func (a *fakeAsset) GetBrowserDownloadURL() string {
	return "https://github.com/acme/nvmlsg/releases/download/" + a.name
}
