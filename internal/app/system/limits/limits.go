// internal/app/system/limits/limits.go
package limits

// Request body size limits.
const (
	// MaxJSONBodySize caps JSON request bodies. Chart payloads can be large.
	MaxJSONBodySize = 50 << 20 // 50 MB

	// MaxUploadSize caps a single multipart media upload.
	MaxUploadSize = 50 << 20 // 50 MB

	// uploadFormOverhead leaves room for the non-file form fields.
	uploadFormOverhead = 1 << 20

	// MaxUploadRequestSize is the total multipart request size accepted.
	MaxUploadRequestSize = MaxUploadSize + uploadFormOverhead
)
