package prefabs

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

func LoadScript(name string) ([]byte, error) {
	clean := cleanScriptPath(name)
	if data, err := os.ReadFile(diskPrefabPath(clean)); err == nil {
		return data, nil
	}
	return ScriptsFS.ReadFile(clean)
}

//go:embed effects/*.yaml
var EffectsFS embed.FS

// Load returns the named effect description. A file under prefabs/effects on
// disk wins over the embedded copy so edits show up without a rebuild.
func Load(name string) ([]byte, error) {
	if filepath.IsAbs(name) {
		return os.ReadFile(name)
	}
	if p, ok := resolve(name); ok {
		return os.ReadFile(p)
	}
	return EffectsFS.ReadFile(cleanEffectPath(name))
}

// ModTime reports when the file Load reads for name last changed. It is
// false when name only exists embedded.
func ModTime(name string) (time.Time, bool) {
	p, ok := resolve(name)
	if !ok {
		return time.Time{}, false
	}
	info, err := os.Stat(p)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// resolve finds the disk file backing an effect name: the path itself when
// absolute, else prefabs/effects/<name>, else name relative to the working
// directory.
func resolve(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	candidates := []string{diskPrefabPath(cleanEffectPath(name)), name}
	if filepath.IsAbs(name) {
		candidates = []string{name}
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}

// List returns the names of the embedded effects, without extension.
func List() ([]string, error) {
	entries, err := fs.ReadDir(EffectsFS, "effects")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !isSpecFile(e.Name()) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(names)
	return names, nil
}

func cleanEffectPath(p string) string {
	if p == "" {
		return ""
	}
	s := filepath.ToSlash(p)
	if after, ok := strings.CutPrefix(s, "prefabs/"); ok {
		s = after
	}
	if after, ok := strings.CutPrefix(s, "effects/"); ok {
		s = after
	}
	if path.Ext(s) == "" {
		s += ".yaml"
	}
	return fmt.Sprintf("effects/%s", s)
}

func cleanScriptPath(p string) string {
	if p == "" {
		return ""
	}

	s := filepath.ToSlash(p)

	if after, ok := strings.CutPrefix(s, "prefabs/scripts/"); ok {
		s = after
	}

	if after, ok := strings.CutPrefix(s, "prefabs/"); ok {
		s = after
	}

	if after, ok := strings.CutPrefix(s, "scripts/"); ok {
		s = after
	}

	if path.Ext(s) == "" {
		s += ".tengo"
	}

	return fmt.Sprintf("scripts/%s", s)
}

func diskPrefabPath(clean string) string {
	return filepath.Join("prefabs", filepath.FromSlash(clean))
}
