package utils

import (
	"net/http"
)

// DetectMimeTypeFromBytes sniffs the MIME type of already loaded content.
func DetectMimeTypeFromBytes(data []byte) string {
	if len(data) > sniffLength {
		data = data[:sniffLength]
	}
	return http.DetectContentType(data)
}
