//go:build unix

package persist

import "golang.org/x/sys/unix"

// copyDirOwner sets the UID/GID of path to those of dir. The directory is
// only read.
func copyDirOwner(path, dir string) error {
	var st unix.Stat_t
	if err := unix.Stat(dir, &st); err != nil {
		return err
	}
	return unix.Chown(path, int(st.Uid), int(st.Gid))
}
