package batch

import (
	"encoding/json"
	"os"
)

// ManifestEntry represents one document in the output manifest.
type ManifestEntry struct {
	Path    string `json:"path"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Faces   uint64 `json:"faces"`
	Meshes  int    `json:"logical_meshes"`
	Preview string `json:"preview,omitempty"`
}

// WriteManifest writes manifest.json. preview maps a document path to its
// rendered image path and may be nil.
func WriteManifest(path string, results []Result, preview func(string) string) error {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		e := ManifestEntry{
			Path:    r.Path,
			Success: r.Success,
			Error:   r.Error,
		}
		if r.Stats != nil {
			e.Faces = r.Stats.FaceCount
			e.Meshes = r.Stats.LogicalMeshes
		}
		if r.Success && preview != nil {
			e.Preview = preview(r.Path)
		}
		entries[i] = e
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
