package domain

import (
	"fmt"
	"path"
	"time"
)

// Byte offsets of the HHMMSS scan-time field within a Level-II basename,
// per the archive naming convention (see package doc).
const (
	scanTimeStart = 13
	scanTimeEnd   = 19
	separatorByte = 12
)

// RemoteObject identifies one archived volume in the bucket listing.
// Immutable; it exists only between listing and materialization.
type RemoteObject struct {
	Bucket       string
	Key          string
	Size         int64
	LastModified time.Time
}

// Base returns the filename component of the object key.
func (o RemoteObject) Base() string {
	return path.Base(o.Key)
}

// ScanTime extracts the HHMMSS scan time embedded at the fixed byte offset of
// a Level-II basename. The key's directory component is ignored. Returns an
// error for keys that do not follow the naming convention.
func ScanTime(key string) (int, error) {
	base := path.Base(key)
	if len(base) < scanTimeEnd {
		return 0, fmt.Errorf("scan time: basename %q shorter than %d bytes", base, scanTimeEnd)
	}
	if base[separatorByte] != '_' {
		return 0, fmt.Errorf("scan time: basename %q missing separator at byte %d", base, separatorByte)
	}

	hhmmss := 0
	for i := scanTimeStart; i < scanTimeEnd; i++ {
		c := base[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("scan time: basename %q has non-digit time field %q", base, base[scanTimeStart:scanTimeEnd])
		}
		hhmmss = hhmmss*10 + int(c-'0')
	}

	if err := validateHHMMSS(hhmmss); err != nil {
		return 0, fmt.Errorf("scan time: basename %q: %w", base, err)
	}
	return hhmmss, nil
}

// Station returns the four-letter station identifier from a Level-II
// basename, or an empty string if the basename is too short.
func Station(key string) string {
	base := path.Base(key)
	if len(base) < 4 {
		return ""
	}
	return base[:4]
}
