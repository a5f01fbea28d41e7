package model

// IngestResult reports the outcome of storing one uploaded document.
type IngestResult struct {
	Key      string   `json:"key"`                // Storage key, also the document ID
	Format   string   `json:"format"`             // Format derived from the key extension
	Size     int64    `json:"size"`               // Payload size in bytes
	Preview  string   `json:"preview"`            // Start of the extracted text
	JobID    string   `json:"job_id,omitempty"`   // Enrichment job, empty when enrichment ran inline or was refused
	Warnings []string `json:"warnings,omitempty"` // Non-fatal problems, e.g. extraction failure or an exhausted trigger quota
}

// UploadedFile is one payload of a batch ingestion.
type UploadedFile struct {
	Key  string
	Data []byte
}
