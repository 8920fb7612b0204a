package security

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// FileKind selects the whitelist a file is checked against.
type FileKind string

const (
	FileKindResume FileKind = "resume"
	FileKindImage  FileKind = "image"
)

// FileValidationResult contains the result of file validation
type FileValidationResult struct {
	Valid        bool   // Whether the file passed all validation checks
	Extension    string // Detected file extension
	DetectedMIME string // Detected MIME type
	Error        string // Error message if validation failed
}

// Magic byte signatures for allowed file types
var magicBytes = map[string][][]byte{
	".jpg":  {{0xFF, 0xD8, 0xFF}},
	".jpeg": {{0xFF, 0xD8, 0xFF}},
	".png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	".gif":  {{0x47, 0x49, 0x46, 0x38, 0x37, 0x61}, {0x47, 0x49, 0x46, 0x38, 0x39, 0x61}}, // GIF87a & GIF89a
	".webp": {{0x52, 0x49, 0x46, 0x46}},                                                   // RIFF header
	".pdf":  {{0x25, 0x50, 0x44, 0x46}},                                                   // %PDF
	".doc":  {{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}},                           // OLE Compound Document
	".docx": {{0x50, 0x4B, 0x03, 0x04}},                                                   // ZIP (PK..)
	".txt":  {},                                                                           // no signature, MIME only
}

var allowedExtensions = map[FileKind]map[string]bool{
	FileKindResume: {".pdf": true, ".doc": true, ".docx": true, ".txt": true},
	FileKindImage:  {".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true},
}

// application/octet-stream is never accepted here.
var allowedMIMETypes = map[FileKind]map[string]bool{
	FileKindResume: {
		"application/pdf":    true,
		"application/msword": true,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
		"application/x-ole-storage": true,
		"application/zip":           true,
		"text/plain":                true,
	},
	FileKindImage: {
		"image/jpeg": true,
		"image/png":  true,
		"image/gif":  true,
		"image/webp": true,
	},
}

// ValidateFile runs three checks: extension whitelist, magic bytes matching
// the extension, and the sniffed MIME type against the kind's whitelist.
func ValidateFile(kind FileKind, filename string, data []byte) FileValidationResult {
	detected := mimetype.Detect(data)
	mime := detected.String()
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	result := FileValidationResult{DetectedMIME: mime}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		result.Error = "file has no extension"
		return result
	}
	result.Extension = ext

	if !allowedExtensions[kind][ext] {
		result.Error = "file extension not allowed: " + ext
		return result
	}

	if ext != ".txt" && !validateMagicBytes(ext, data) {
		result.Error = "file content does not match extension"
		return result
	}

	if !allowedMIMETypes[kind][mime] {
		// Old Word files are sometimes only recognised by their signature.
		if !(mime == "application/octet-stream" && (ext == ".doc" || ext == ".docx")) {
			result.Error = "MIME type not allowed: " + mime
			return result
		}
	}

	result.Valid = true
	return result
}

// validateMagicBytes checks if file content starts with expected magic bytes
func validateMagicBytes(ext string, data []byte) bool {
	if len(data) < 4 {
		return false
	}

	signatures, ok := magicBytes[ext]
	if !ok {
		return false
	}
	if len(signatures) == 0 {
		return true
	}

	for _, sig := range signatures {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

// AllowedExtensions lists the extensions accepted for kind, for messages.
func AllowedExtensions(kind FileKind) []string {
	order := []string{".pdf", ".doc", ".docx", ".txt", ".jpg", ".jpeg", ".png", ".gif", ".webp"}
	out := make([]string, 0, len(allowedExtensions[kind]))
	for _, ext := range order {
		if allowedExtensions[kind][ext] {
			out = append(out, ext)
		}
	}
	return out
}
