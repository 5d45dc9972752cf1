package recording

import (
	"archive/zip"
	"os"

	"github.com/pkg/errors"
)

// MakeArchive writes the given files into a zip archive at path.
func MakeArchive(path string, files []ArchiveFile) error {
	out, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not create archive file (%s)", path)
	}
	defer out.Close()

	writer := zip.NewWriter(out)

	for _, file := range files {
		entry, err := writer.Create(file.Name)
		if err != nil {
			return errors.Wrapf(err, "could not create archive entry (%s)", file.Name)
		}

		if _, err := entry.Write([]byte(file.Body)); err != nil {
			return errors.Wrapf(err, "could not write archive entry (%s)", file.Name)
		}
	}

	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "could not finalize archive")
	}

	return nil
}
