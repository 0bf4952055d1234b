package convert

import (
	"fmt"
	"strings"
)

// FileType is an output file type.
type FileType int

const (
	FileTypeDDS FileType = iota
	FileTypePNG
	FileTypeTIFF
	FileTypeNutexb
	FileTypeBntx
)

// FileTypes lists every FileType.
func FileTypes() []FileType {
	return []FileType{FileTypeDDS, FileTypePNG, FileTypeTIFF, FileTypeNutexb, FileTypeBntx}
}

func (t FileType) String() string {
	switch t {
	case FileTypeDDS:
		return "DDS"
	case FileTypePNG:
		return "PNG"
	case FileTypeTIFF:
		return "TIFF"
	case FileTypeNutexb:
		return "Nutexb"
	case FileTypeBntx:
		return "Bntx"
	default:
		return fmt.Sprintf("FileType(%d)", int(t))
	}
}

// Extension returns the file extension including the leading dot.
func (t FileType) Extension() string {
	switch t {
	case FileTypeDDS:
		return ".dds"
	case FileTypePNG:
		return ".png"
	case FileTypeTIFF:
		return ".tiff"
	case FileTypeNutexb:
		return ".nutexb"
	case FileTypeBntx:
		return ".bntx"
	default:
		return ""
	}
}

// ParseFileType accepts a type name or extension in any case, with or
// without the dot.
func ParseFileType(s string) (FileType, error) {
	name := strings.TrimPrefix(strings.ToLower(s), ".")
	switch name {
	case "tif":
		return FileTypeTIFF, nil
	}
	for _, t := range FileTypes() {
		if name == strings.ToLower(t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown file type %q", s)
}
