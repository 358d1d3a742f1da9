// Package tracks loads the track catalog that maps inbox folder names
// to tracks and carries per-track specifications.
package tracks

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrUnknownTrackMapping = errors.New("no track mapped to folder")

type Spec struct {
	Distance  *float64 `json:"distance,omitempty"`  // meters
	HeatPrice *float64 `json:"heatPrice,omitempty"` // euros
}

type Track struct {
	Name    string   `json:"name"`
	Specs   Spec     `json:"specifications"`
	Folders []string `json:"folders"`
}

type Catalog struct {
	tracks   []Track
	byFolder map[string]*Track
}

type catalogFile struct {
	Tracks []Track `json:"tracks"`
}

// Load reads a catalog file and indexes it by folder name.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading track catalog: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing track catalog: %w", err)
	}
	c := &Catalog{tracks: f.Tracks, byFolder: make(map[string]*Track)}
	for i := range c.tracks {
		t := &c.tracks[i]
		if t.Name == "" {
			return nil, fmt.Errorf("track catalog entry %d has no name", i)
		}
		for _, folder := range t.Folders {
			key := strings.ToLower(strings.TrimSpace(folder))
			if prev, ok := c.byFolder[key]; ok && prev != t {
				return nil, fmt.Errorf("folder %q mapped to both %q and %q", folder, prev.Name, t.Name)
			}
			c.byFolder[key] = t
		}
	}
	return c, nil
}

// ForFolder resolves the track mapped to an inbox folder. The lookup
// is case insensitive. Unmapped folders return ErrUnknownTrackMapping so
// the caller can skip the folder with a warning instead of aborting.
func (c *Catalog) ForFolder(folder string) (*Track, error) {
	t, ok := c.byFolder[strings.ToLower(strings.TrimSpace(folder))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTrackMapping, folder)
	}
	return t, nil
}

func (c *Catalog) All() []Track {
	return c.tracks
}
