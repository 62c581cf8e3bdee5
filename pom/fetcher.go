// Package pom resolves Maven coordinates to jars on disk. A
// classpath entry mvn:group:artifact:version fetches the artifact
// from a Maven repository and caches the jar locally.
package pom

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
)

const (
	DefaultMavenRepoURL = "https://repo1.maven.org/maven2"
	EnvMavenRepoURL     = "MAVEN_REPO_URL"
)

var log = commonlog.GetLogger("stubgen.pom")

// Coordinate identifies one Maven artifact.
type Coordinate struct {
	GroupID    string
	ArtifactID string
	Version    string
	Classifier string
}

func (c Coordinate) String() string {
	if c.Classifier != "" {
		return c.GroupID + ":" + c.ArtifactID + ":" + c.Classifier + ":" + c.Version
	}
	return c.GroupID + ":" + c.ArtifactID + ":" + c.Version
}

// JarName returns the artifact's jar file name.
func (c Coordinate) JarName() string {
	if c.Classifier != "" {
		return fmt.Sprintf("%s-%s-%s.jar", c.ArtifactID, c.Version, c.Classifier)
	}
	return fmt.Sprintf("%s-%s.jar", c.ArtifactID, c.Version)
}

// ParseCoordinate reads group:artifact:version or
// group:artifact:classifier:version, with an optional mvn: prefix.
func ParseCoordinate(coord string) (Coordinate, error) {
	parts := strings.Split(strings.TrimPrefix(coord, "mvn:"), ":")
	for _, part := range parts {
		if part == "" {
			return Coordinate{}, fmt.Errorf("invalid Maven coordinate: %s", coord)
		}
	}
	switch len(parts) {
	case 3:
		return Coordinate{GroupID: parts[0], ArtifactID: parts[1], Version: parts[2]}, nil
	case 4:
		return Coordinate{GroupID: parts[0], ArtifactID: parts[1], Classifier: parts[2], Version: parts[3]}, nil
	default:
		return Coordinate{}, fmt.Errorf("invalid Maven coordinate: %s (expected group:artifact:version or group:artifact:classifier:version)", coord)
	}
}

// DownloadJar resolves a mvn: classpath entry to a cached jar using
// a fetcher configured from the environment.
func DownloadJar(coord string) (string, error) {
	c, err := ParseCoordinate(coord)
	if err != nil {
		return "", err
	}
	return NewMavenFetcher().DownloadJar(c)
}

// MavenFetcher talks to one Maven repository and keeps downloaded
// jars in a local cache directory.
type MavenFetcher struct {
	RepoURL    string
	CacheDir   string
	httpClient *http.Client
}

// NewMavenFetcher reads the repository URL from MAVEN_REPO_URL
// (default Maven Central) and places the cache under the user cache
// directory.
func NewMavenFetcher() *MavenFetcher {
	repoURL := os.Getenv(EnvMavenRepoURL)
	if repoURL == "" {
		repoURL = DefaultMavenRepoURL
	}
	repoURL = strings.TrimSuffix(repoURL, "/")

	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}

	return &MavenFetcher{
		RepoURL:    repoURL,
		CacheDir:   filepath.Join(base, "stubgen", "jars"),
		httpClient: &http.Client{},
	}
}

// FetchPOM retrieves and parses the project description for an
// artifact. Coordinates and properties inherited from the parent
// chain are merged in, then ${...} property references are
// interpolated.
func (f *MavenFetcher) FetchPOM(groupID, artifactID, version string) (*Project, error) {
	url := f.pomURL(groupID, artifactID, version)
	log.Debugf("fetching POM %s", url)
	resp, err := f.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch POM: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch POM: HTTP %d for %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read POM: %w", err)
	}

	project, err := f.parsePOM(data)
	if err != nil {
		return nil, fmt.Errorf("parse POM: %w", err)
	}

	if err := f.resolveParent(project); err != nil {
		return nil, err
	}

	f.interpolateProperties(project)

	return project, nil
}

func (f *MavenFetcher) parsePOM(data []byte) (*Project, error) {
	var project Project
	if err := xml.Unmarshal(data, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (f *MavenFetcher) resolveParent(project *Project) error {
	if project.Parent == nil {
		return nil
	}

	parent, err := f.FetchPOM(project.Parent.GroupID, project.Parent.ArtifactID, project.Parent.Version)
	if err != nil {
		return fmt.Errorf("fetch parent POM: %w", err)
	}

	if project.GroupID == "" {
		project.GroupID = parent.GroupID
	}
	if project.Version == "" {
		project.Version = parent.Version
	}

	if project.Properties == nil {
		project.Properties = &Properties{Entries: make(map[string]string)}
	}
	if parent.Properties != nil {
		for k, v := range parent.Properties.Entries {
			if _, exists := project.Properties.Entries[k]; !exists {
				project.Properties.Entries[k] = v
			}
		}
	}

	return nil
}

func (f *MavenFetcher) interpolateProperties(project *Project) {
	props := map[string]string{
		"project.groupId":    project.GroupID,
		"project.artifactId": project.ArtifactID,
		"project.version":    project.Version,
		"pom.groupId":        project.GroupID,
		"pom.artifactId":     project.ArtifactID,
		"pom.version":        project.Version,
	}
	if project.Properties != nil {
		for k, v := range project.Properties.Entries {
			props[k] = v
		}
	}

	interpolate := func(s string) string {
		for k, v := range props {
			s = strings.ReplaceAll(s, "${"+k+"}", v)
		}
		return s
	}

	project.Version = interpolate(project.Version)
	if r := project.Relocation(); r != nil {
		r.GroupID = interpolate(r.GroupID)
		r.ArtifactID = interpolate(r.ArtifactID)
		r.Version = interpolate(r.Version)
	}
}

func (f *MavenFetcher) pomURL(groupID, artifactID, version string) string {
	groupPath := strings.ReplaceAll(groupID, ".", "/")
	return fmt.Sprintf("%s/%s/%s/%s/%s-%s.pom", f.RepoURL, groupPath, artifactID, version, artifactID, version)
}

// JarURL returns the repository URL of a coordinate's jar.
func (f *MavenFetcher) JarURL(c Coordinate) string {
	groupPath := strings.ReplaceAll(c.GroupID, ".", "/")
	return fmt.Sprintf("%s/%s/%s/%s/%s", f.RepoURL, groupPath, c.ArtifactID, c.Version, c.JarName())
}

// DownloadJar fetches the jar for a coordinate into the cache and
// returns its local path. A previously downloaded jar is reused
// without touching the network. Relocated artifacts are followed to
// their new coordinates.
func (f *MavenFetcher) DownloadJar(c Coordinate) (string, error) {
	destDir := filepath.Join(f.CacheDir, strings.ReplaceAll(c.GroupID, ".", "/"), c.ArtifactID, c.Version)
	destPath := filepath.Join(destDir, c.JarName())
	if _, err := os.Stat(destPath); err == nil {
		log.Debugf("using cached %s", destPath)
		return destPath, nil
	}

	if project, err := f.FetchPOM(c.GroupID, c.ArtifactID, c.Version); err == nil {
		if r := project.Relocation(); r != nil {
			moved := c
			if r.GroupID != "" {
				moved.GroupID = r.GroupID
			}
			if r.ArtifactID != "" {
				moved.ArtifactID = r.ArtifactID
			}
			if r.Version != "" {
				moved.Version = r.Version
			}
			if moved != c {
				log.Infof("artifact %s relocated to %s", c, moved)
				return f.DownloadJar(moved)
			}
		}
	} else {
		log.Debugf("no POM for %s: %s", c, err.Error())
	}

	url := f.JarURL(c)
	log.Infof("downloading %s", url)
	resp, err := f.httpClient.Get(url)
	if err != nil {
		return "", fmt.Errorf("download jar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download jar: HTTP %d for %s", resp.StatusCode, url)
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}

	file, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, resp.Body); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("write file: %w", err)
	}

	return destPath, nil
}
