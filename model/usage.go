package model

// Resource names a metered capability.
type Resource string

const (
	ResourceOCRPages     Resource = "ocr_pages"
	ResourceTriggers     Resource = "trigger_invocations"
	ResourceStorageBytes Resource = "storage_bytes"
)

// ResourceUsage is a point-in-time view of one metered resource.
type ResourceUsage struct {
	Resource  Resource `json:"resource"`
	Used      int64    `json:"used"`
	Limit     int64    `json:"limit"`
	Remaining int64    `json:"remaining"`
}

// UsageReport lists every metered resource.
type UsageReport struct {
	Resources []ResourceUsage `json:"resources"`
}

// Get returns the entry for resource, if present.
func (r UsageReport) Get(resource Resource) (ResourceUsage, bool) {
	for _, u := range r.Resources {
		if u.Resource == resource {
			return u, true
		}
	}
	return ResourceUsage{}, false
}
