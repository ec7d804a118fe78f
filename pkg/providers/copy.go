package providers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileCopier copies files byte-for-byte, creating destination directories
// and preserving the source mode.
type FileCopier struct{}

func (FileCopier) Copy(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", ErrIOFailure, src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat %s: %v", ErrIOFailure, src, err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrIOFailure, filepath.Dir(dst), err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrIOFailure, dst, err)
	}

	_, copyErr := io.Copy(out, in)
	closeErr := out.Close()
	if copyErr != nil {
		return fmt.Errorf("%w: copying %s to %s: %v", ErrIOFailure, src, dst, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("%w: closing %s: %v", ErrIOFailure, dst, closeErr)
	}
	return nil
}
