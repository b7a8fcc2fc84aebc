package model

import "strings"

type FileClass string

const (
	FileClassDocument FileClass = "document"
	FileClassImage    FileClass = "image"
	FileClassData     FileClass = "data"
	FileClassGeneric  FileClass = "file"
)

// ClassifyFile maps an extension (with leading dot) to its media class.
func ClassifyFile(ext string) FileClass {
	switch strings.ToLower(ext) {
	case ".txt", ".pdf", ".docx":
		return FileClassDocument
	case ".jpg", ".jpeg", ".png":
		return FileClassImage
	case ".csv", ".json":
		return FileClassData
	default:
		return FileClassGeneric
	}
}

// MediaType is a best-effort MIME type for an allowed extension.
func MediaType(ext string) string {
	switch strings.ToLower(ext) {
	case ".txt":
		return "text/plain"
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
