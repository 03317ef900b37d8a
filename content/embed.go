package content

import (
	"embed"
	"os"
	"path/filepath"
	"strings"
)

//go:embed scripts/*.yaml
var ScriptsFS embed.FS

// Load reads a script file, preferring an on-disk copy under content/
// over the embedded one so edits take effect without rebuilding.
func Load(name string) ([]byte, error) {
	clean := cleanScriptPath(name)
	if data, err := os.ReadFile(diskScriptPath(clean)); err == nil {
		return data, nil
	}
	return ScriptsFS.ReadFile(clean)
}

// ListScripts names every embedded script file.
func ListScripts() ([]string, error) {
	entries, err := ScriptsFS.ReadDir("scripts")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func cleanScriptPath(path string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	if after, ok := strings.CutPrefix(s, "content/scripts/"); ok {
		s = after
	}
	if after, ok := strings.CutPrefix(s, "content/"); ok {
		s = after
	}
	if after, ok := strings.CutPrefix(s, "scripts/"); ok {
		s = after
	}
	return "scripts/" + s
}

func diskScriptPath(clean string) string {
	return filepath.Join("content", filepath.FromSlash(clean))
}
