package enums

import "fmt"

// UploadStatus tracks whether a book's assets finished uploading.
type UploadStatus string

const (
	UploadStatusPending  UploadStatus = "pending"
	UploadStatusUploaded UploadStatus = "uploaded"
)

var validUploadStatuses = []UploadStatus{
	UploadStatusPending,
	UploadStatusUploaded,
}

// String implements fmt.Stringer.
func (u UploadStatus) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UploadStatus.
func (u UploadStatus) IsValid() bool {
	for _, candidate := range validUploadStatuses {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUploadStatus converts raw input into an UploadStatus.
func ParseUploadStatus(value string) (UploadStatus, error) {
	for _, candidate := range validUploadStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid upload status %q", value)
}
