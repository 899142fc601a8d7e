// Package archive reads hymnal documents bundled in zip and compressed tar
// archives. Members are addressed as "<archive>:<entry>".
package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"

	herrors "github.com/FocuswithJustin/JuniperHymnal/core/errors"
)

// Member is one document read out of an archive.
type Member struct {
	Name string
	Data []byte
}

// MemberPath joins an archive path and an entry name.
func MemberPath(archivePath, entry string) string {
	return archivePath + ":" + entry
}

var tarSuffixes = []string{".tar.gz", ".tgz", ".tar.xz"}

// IsArchive reports whether path names a supported archive.
func IsArchive(path string) bool {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".zip") {
		return true
	}
	for _, s := range tarSuffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

// Members returns the non-empty regular entries of the archive at path whose
// names satisfy keep, in archive order. A nil keep accepts every entry.
func Members(path string, keep func(name string) bool) ([]Member, error) {
	if keep == nil {
		keep = func(string) bool { return true }
	}
	if strings.HasSuffix(strings.ToLower(path), ".zip") {
		return zipMembers(path, keep)
	}
	var members []Member
	err := IterateArchive(path, func(header *tar.Header, r io.Reader) (bool, error) {
		if header.Typeflag != tar.TypeReg || header.Size == 0 || !keep(header.Name) {
			return false, nil
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return true, herrors.Wrapf(err, "read %s", header.Name)
		}
		members = append(members, Member{Name: header.Name, Data: data})
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}

func zipMembers(path string, keep func(string) bool) ([]Member, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, herrors.Wrap(err, "open archive")
	}
	defer zr.Close()

	var members []Member
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || f.UncompressedSize64 == 0 || !keep(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, herrors.Wrapf(err, "open %s", f.Name)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, herrors.Wrapf(err, "read %s", f.Name)
		}
		members = append(members, Member{Name: f.Name, Data: data})
	}
	return members, nil
}

// Reader wraps a tar.Reader with automatic decompression handling.
type Reader struct {
	*tar.Reader
	file         *os.File
	decompressor io.Closer
}

// NewReader opens a .tar.gz, .tgz or .tar.xz archive.
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, herrors.Wrap(err, "open archive")
	}

	var reader io.Reader
	var decompressor io.Closer

	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".tar.xz"):
		xzr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, herrors.Wrap(err, "xz reader")
		}
		reader = xzr
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		gzr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, herrors.Wrap(err, "gzip reader")
		}
		reader = gzr
		decompressor = gzr
	default:
		f.Close()
		return nil, herrors.NewUnsupported("archive format", path)
	}

	return &Reader{
		Reader:       tar.NewReader(reader),
		file:         f,
		decompressor: decompressor,
	}, nil
}

// Close closes the archive reader and any underlying decompressors.
func (r *Reader) Close() error {
	var errs []error
	if r.decompressor != nil {
		if err := r.decompressor.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.file.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// Visitor is a callback function for iterating archive entries.
// Return true to stop iteration, false to continue.
type Visitor func(header *tar.Header, content io.Reader) (stop bool, err error)

// Iterate walks through all entries in the archive, calling the visitor for each.
func (r *Reader) Iterate(visitor Visitor) error {
	for {
		header, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return herrors.Wrap(err, "read header")
		}

		stop, err := visitor(header, r)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}

// IterateArchive opens a tar archive and iterates through its entries.
func IterateArchive(path string, visitor Visitor) error {
	r, err := NewReader(path)
	if err != nil {
		return err
	}
	defer r.Close()
	return r.Iterate(visitor)
}
