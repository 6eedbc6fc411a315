//go:build unix

package errlog

import (
	"os"

	"golang.org/x/sys/unix"
)

func writableDir(dir string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}
	return unix.Access(dir, unix.W_OK) == nil
}
