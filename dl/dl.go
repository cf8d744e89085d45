package dl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

type DownloadMetadata struct {
	SHA1 string `json:"sha1"`
	Size int    `json:"size"`
	URL  string `json:"url"`
}

type VersionMetadata struct {
	Downloads map[string]*DownloadMetadata `json:"downloads"`
}

type Version struct {
	Id          string `json:"id"`
	Type        string `json:"type"`
	Time        string `json:"time"`
	ReleaseTime string `json:"releaseTime"`
	URL         string `json:"url"`
}

type VersionManifest struct {
	Latest struct {
		Release  string `json:"release"`
		Snapshot string `json:"snapshot"`
	} `json:"latest"`
	Versions []Version `json:"versions"`
}

func (v *VersionManifest) GetLatestRelease() *Version {
	return v.GetRelease(v.Latest.Release)
}

func (v *VersionManifest) GetRelease(id string) *Version {
	for _, version := range v.Versions {
		if version.Id == id {
			return &version
		}
	}
	return nil
}

const VERSION_MANIFEST_URL = "https://launchermeta.mojang.com/mc/game/version_manifest.json"

// Client fetches version metadata and game files.
type Client struct {
	HTTP        *http.Client
	ManifestURL string
}

func NewClient() *Client {
	return &Client{
		HTTP:        &http.Client{Timeout: 10 * time.Minute},
		ManifestURL: VERSION_MANIFEST_URL,
	}
}

func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	r, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer r.Body.Close()

	if r.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", url, r.Status)
	}
	return json.NewDecoder(r.Body).Decode(v)
}

func (c *Client) GetVersionManifest(ctx context.Context) (*VersionManifest, error) {
	var manifest VersionManifest
	if err := c.getJSON(ctx, c.ManifestURL, &manifest); err != nil {
		return nil, err
	}
	return &manifest, nil
}

func (c *Client) GetMetadata(ctx context.Context, v *Version) (*VersionMetadata, error) {
	var meta VersionMetadata
	if err := c.getJSON(ctx, v.URL, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (c *Client) Get(ctx context.Context, d *DownloadMetadata, dst io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL, nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", d.URL, resp.Status)
	}

	_, err = io.Copy(dst, resp.Body)
	return err
}

// DownloadClientJar stores the client jar of a release at path. An empty
// version selects the latest release. The jar is written next to path and
// renamed into place once complete.
func (c *Client) DownloadClientJar(ctx context.Context, version, path string) error {
	manifest, err := c.GetVersionManifest(ctx)
	if err != nil {
		return err
	}

	var release *Version
	if version == "" {
		release = manifest.GetLatestRelease()
	} else {
		release = manifest.GetRelease(version)
	}
	if release == nil {
		return fmt.Errorf("unknown minecraft version %q", version)
	}

	meta, err := c.GetMetadata(ctx, release)
	if err != nil {
		return err
	}
	client, ok := meta.Downloads["client"]
	if !ok {
		return fmt.Errorf("version %s has no client download", release.Id)
	}

	out, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(out.Name())

	if err := c.Get(ctx, client, out); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Rename(out.Name(), path)
}
