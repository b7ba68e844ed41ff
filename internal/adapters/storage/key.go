package storage

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"eventcalendar/internal/domain"
)

// Folder is the key prefix every event image is stored under.
const Folder = "event-posters"

const maxSlugLen = 50

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ContentTypeFor returns the image content type for filename's extension,
// or false when the extension is not an accepted image format.
func ContentTypeFor(filename string) (string, bool) {
	ct, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]
	return ct, ok
}

// objectKey returns a unique key such as "event-posters/team-standup-<uuid>.png".
func objectKey(name, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := contentTypes[ext]; !ok {
		return "", domain.NewValidationError("image", "Only image files are allowed (jpg, jpeg, png, gif, webp)")
	}
	base := slug.Make(name)
	if len(base) > maxSlugLen {
		base = strings.Trim(base[:maxSlugLen], "-")
	}
	if base == "" {
		base = "event"
	}
	return path.Join(Folder, base+"-"+uuid.NewString()+ext), nil
}
