package model

import "fmt"

// Size selects a rendition of a media. The zero value is the original file.
type Size string

const (
	SizeOriginal Size = ""
	SizeSmall    Size = "small"
	SizeMedium   Size = "medium"
	SizeLarge    Size = "large"
)

// ThumbnailSizes lists every size that is backed by a generated variant.
var ThumbnailSizes = []Size{SizeSmall, SizeMedium, SizeLarge}

// ParseSize accepts "", "original", "small", "medium" and "large".
func ParseSize(s string) (Size, error) {
	switch s {
	case "", "original":
		return SizeOriginal, nil
	case string(SizeSmall), string(SizeMedium), string(SizeLarge):
		return Size(s), nil
	default:
		return SizeOriginal, fmt.Errorf("unknown size %q", s)
	}
}

func (s Size) String() string {
	if s == SizeOriginal {
		return "original"
	}
	return string(s)
}

func (s Size) IsOriginal() bool {
	return s == SizeOriginal
}

// CacheKey identifies one renderable variant of a media asset.
type CacheKey struct {
	FileID string
	Size   Size
}

func (k CacheKey) String() string {
	return k.FileID + "@" + k.Size.String()
}
