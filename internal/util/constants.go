package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// Evidence uploads are camera frames; everything else is rejected.
const (
	MimeImage = "image/"
)

var (
	AllowedEvidenceExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}
)
