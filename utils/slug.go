package utils

import (
	"strings"

	"github.com/gosimple/slug"
)

// CatalogKey normalizes a song or course name into its catalog key, so
// "My Song", "my-song" and "MY_SONG" all map to "my-song".
func CatalogKey(name string) string {
	// slug keeps underscores
	return slug.Make(strings.ReplaceAll(name, "_", " "))
}
