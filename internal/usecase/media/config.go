package media

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/fhuszti/medias-display-go/internal/model"
)

const VariantContentType = "image/webp"

// FetchConfig bounds a single blob fetch: every attempt gets Timeout, and
// transient failures are retried at most MaxRetries times.
type FetchConfig struct {
	Timeout         time.Duration
	MaxRetries      int
	InitialInterval time.Duration
}

func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		InitialInterval: 200 * time.Millisecond,
	}
}

func (c FetchConfig) withDefaults() FetchConfig {
	def := DefaultFetchConfig()
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.InitialInterval <= 0 {
		c.InitialInterval = def.InitialInterval
	}
	return c
}

// VariantKey is the object key a generated thumbnail of media is stored under.
func VariantKey(media *model.Media, size model.Size) string {
	file := path.Base(media.ObjectKey)
	name := strings.TrimSuffix(file, path.Ext(file))
	return path.Join("variants", media.ID.String(), fmt.Sprintf("%s_%s.webp", name, size))
}
