package userdir

import (
	"os"

	jvlbierrors "github.com/five82/jvlbi/internal/errors"
)

// DefaultMirrorPath is where the active scan list is additionally written
// after every read or write, for operator inspection and crash recovery —
// grounded on the original implementation's best-effort "/var/dir/Mark5A"
// mirror file.
const DefaultMirrorPath = "/var/dir/jvlbi-scans"

// WriteMirror serializes dir's scan list in the given layout and writes it
// to path, best-effort: failures are returned to the caller but are never
// fatal to the caller's own read/write operation (mirroring the original's
// "log and continue" try_write_dirlist behavior).
func WriteMirror(path string, layout Layout, dir *Directory) error {
	data := layout.Serialize(dir)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return jvlbierrors.NewIOError("userdir: failed to write directory mirror", err)
	}
	return nil
}

// ReadMirror reads a previously written mirror file at path and selects its
// layout automatically.
func ReadMirror(path string) (Layout, *Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, jvlbierrors.NewIOError("userdir: failed to read directory mirror", err)
	}
	return SelectLayout(data)
}
