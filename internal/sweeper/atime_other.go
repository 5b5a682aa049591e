//go:build !linux

package sweeper

import (
	"os"
	"time"
)

// accessTime approximates last access with the modification time on
// platforms without a portable atime.
func accessTime(info os.FileInfo) time.Time {
	return info.ModTime()
}
