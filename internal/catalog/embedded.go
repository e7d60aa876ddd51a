package catalog

import (
	"embed"
	"io/fs"
)

//go:embed store
var embeddedFS embed.FS

// Embedded opens the default store compiled into the binary.
func Embedded() (*Store, error) {
	sub, err := fs.Sub(embeddedFS, "store")
	if err != nil {
		return nil, err
	}
	return OpenFS(sub)
}
