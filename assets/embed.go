// Package assets embeds the textures the sample effects draw with.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed textures/*.bmp
var texturesFS embed.FS

// Textures returns the embedded textures, rooted so that "flare0.bmp" names
// textures/flare0.bmp.
func Textures() fs.FS {
	sub, err := fs.Sub(texturesFS, "textures")
	if err != nil {
		panic(err)
	}
	return sub
}
