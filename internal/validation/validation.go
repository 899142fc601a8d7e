// Package validation checks user supplied paths and verifies that document
// contents match their file extensions before they are parsed.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// Limits on inputs.
const (
	// MaxFileSize is the maximum document size (256 MB).
	MaxFileSize = 256 << 20
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
)

// Common validation errors.
var (
	ErrPathTooLong      = errors.New("path too long")
	ErrInvalidCharacter = errors.New("invalid character in path")
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrFileTooLarge     = errors.New("file too large")
	ErrTypeMismatch     = errors.New("file type mismatch")
)

// ValidatePath checks length limits and invalid characters.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: null byte not allowed", ErrInvalidCharacter)
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}
	return nil
}

// FileType represents a detected file type.
type FileType string

const (
	FileTypeDOCX    FileType = "docx"
	FileTypeODT     FileType = "odt"
	FileTypeZip     FileType = "zip"
	FileTypeTarGZ   FileType = "tar.gz"
	FileTypeTarXZ   FileType = "tar.xz"
	FileTypeGzip    FileType = "gzip"
	FileTypeXZ      FileType = "xz"
	FileTypeText    FileType = "text"
	FileTypeUnknown FileType = "unknown"
)

// magicBytes defines magic byte signatures for file type detection.
var magicBytes = []struct {
	fileType FileType
	magic    []byte
}{
	{FileTypeGzip, []byte{0x1f, 0x8b}},
	{FileTypeXZ, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}},
	{FileTypeZip, []byte{0x50, 0x4b, 0x03, 0x04}},
}

// container is the on-disk wrapper each extension must carry.
var container = map[FileType]FileType{
	FileTypeDOCX:  FileTypeZip,
	FileTypeODT:   FileTypeZip,
	FileTypeZip:   FileTypeZip,
	FileTypeTarGZ: FileTypeGzip,
	FileTypeTarXZ: FileTypeXZ,
}

// ValidateFileType checks that data matches the type its filename claims
// and returns that type. Files with unknown extensions pass unchanged.
func ValidateFileType(data []byte, filename string) (FileType, error) {
	if len(data) > MaxFileSize {
		return FileTypeUnknown, fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, len(data), MaxFileSize)
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	detected := detectFileTypeFromMagic(head)
	expected := detectFileTypeFromExtension(filename)

	switch expected {
	case FileTypeUnknown:
		return expected, nil
	case FileTypeText:
		if detected == FileTypeUnknown && (len(head) == 0 || isLikelyText(head)) {
			return expected, nil
		}
	default:
		if detected == container[expected] {
			return expected, nil
		}
	}
	return FileTypeUnknown, fmt.Errorf("%w: extension suggests %s but content is %s", ErrTypeMismatch, expected, describe(detected, head))
}

func describe(detected FileType, head []byte) FileType {
	if detected != FileTypeUnknown {
		return detected
	}
	if isLikelyText(head) {
		return FileTypeText
	}
	return FileTypeUnknown
}

// detectFileTypeFromMagic detects file type from magic bytes.
func detectFileTypeFromMagic(buf []byte) FileType {
	for _, sig := range magicBytes {
		if bytes.HasPrefix(buf, sig.magic) {
			return sig.fileType
		}
	}
	return FileTypeUnknown
}

// detectFileTypeFromExtension determines expected file type from filename extension.
func detectFileTypeFromExtension(filename string) FileType {
	lower := strings.ToLower(filename)

	if strings.HasSuffix(lower, ".tar.xz") {
		return FileTypeTarXZ
	}
	if strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz") {
		return FileTypeTarGZ
	}

	switch filepath.Ext(lower) {
	case ".docx":
		return FileTypeDOCX
	case ".odt":
		return FileTypeODT
	case ".zip":
		return FileTypeZip
	case ".txt":
		return FileTypeText
	default:
		return FileTypeUnknown
	}
}

// isLikelyText checks if the buffer contains likely text content.
func isLikelyText(buf []byte) bool {
	if len(buf) == 0 {
		return false
	}

	// Null bytes are a strong indicator of binary content.
	if bytes.IndexByte(buf, 0) != -1 {
		return false
	}

	printable := 0
	control := 0
	for _, b := range buf {
		if b >= 0x20 && b <= 0x7e || b == '\t' || b == '\n' || b == '\r' {
			printable++
		} else if b < 0x20 {
			control++
		}
		// UTF-8 lead and continuation bytes are neutral
	}

	return printable > 0 && float64(printable)/float64(printable+control) > 0.95
}
