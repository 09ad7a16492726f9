// Package assets bundles the demo program sources.
package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// Demo programs, in assembler source form.
//
//go:embed roms/*.s
var Sources embed.FS

const srcDir = "roms"

// Names lists the bundled programs, without extension.
func Names() []string {
	entries, _ := fs.ReadDir(Sources, srcDir) // Embedded, can't fail.
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), ".s"))
	}
	return out
}

// Source returns the source of the named program.
func Source(name string) (string, error) {
	data, err := Sources.ReadFile(path.Join(srcDir, name+".s"))
	if err != nil {
		return "", fmt.Errorf("unknown demo %q: %w", name, err)
	}
	return string(data), nil
}
