//go:build linux

package sweeper

import (
	"os"
	"syscall"
	"time"
)

// accessTime reads the file's atime from the underlying stat structure.
// Falls back to mtime if the platform data is missing.
func accessTime(info os.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Atim.Sec, st.Atim.Nsec)
	}
	return info.ModTime()
}
