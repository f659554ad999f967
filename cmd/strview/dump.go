package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ADHSoft/ro-str-viewer/effect"
)

// dumpFrame lists the descriptors of f, one per line.
func dumpFrame(name string, f effect.Frame) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s frame %d", name, f.Number)
	if f.Looped {
		b.WriteString(" (looped)")
	}
	fmt.Fprintf(&b, ": %d draws", len(f.Draws))
	for _, d := range f.Draws {
		b.WriteString("\n  ")
		b.WriteString(d.String())
	}
	return b.String()
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
