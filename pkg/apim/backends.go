package apim

import "strings"

// SupportsModelsMarker introduces the model list in a backend description.
const SupportsModelsMarker = "Supports models:"

// BackendKind tags a backend record as standalone or pool.
type BackendKind int

const (
	// BackendKindStandalone is a single backend with a URL.
	BackendKindStandalone BackendKind = iota
	// BackendKindPool is a load-balanced pool of backends.
	BackendKindPool
)

// String returns the display name of the kind.
func (k BackendKind) String() string {
	if k == BackendKindPool {
		return "pool"
	}

	return "standalone"
}

// Backend is a standalone backend.
type Backend struct {
	Name            string   `json:"name"            yaml:"name"`
	URL             string   `json:"url"             yaml:"url"`
	Description     string   `json:"description"     yaml:"description"`
	Type            string   `json:"type,omitempty"  yaml:"type,omitempty"`
	SupportedModels []string `json:"supportedModels" yaml:"supportedModels"`
}

// BackendPool is a named, weighted and prioritized group of backends.
type BackendPool struct {
	Name        string       `json:"name"        yaml:"name"`
	Description string       `json:"description" yaml:"description"`
	Services    []PoolMember `json:"services"    yaml:"services"`
}

// PoolMember references a backend inside a pool.
type PoolMember struct {
	ID       string `json:"id"       yaml:"id"`
	Priority *int   `json:"priority" yaml:"priority"`
	Weight   *int   `json:"weight"   yaml:"weight"`
}

// BackendEntry is a backend record resolved to exactly one kind. Only the
// field matching Kind is set.
type BackendEntry struct {
	Kind       BackendKind
	Standalone *Backend
	Pool       *BackendPool
}

// NewBackendEntry converts a management API record. A record carrying a pool
// object, or typed as Pool, is a pool; everything else is standalone.
func NewBackendEntry(record BackendContract) BackendEntry {
	props := record.Properties

	if props.Pool != nil || strings.EqualFold(props.Type, "Pool") {
		pool := &BackendPool{
			Name:        record.Name,
			Description: props.Description,
			Services:    []PoolMember{},
		}

		if props.Pool != nil {
			for _, svc := range props.Pool.Services {
				pool.Services = append(pool.Services, PoolMember{
					ID:       svc.ID,
					Priority: svc.Priority,
					Weight:   svc.Weight,
				})
			}
		}

		return BackendEntry{Kind: BackendKindPool, Pool: pool}
	}

	return BackendEntry{
		Kind: BackendKindStandalone,
		Standalone: &Backend{
			Name:            record.Name,
			URL:             props.URL,
			Description:     props.Description,
			Type:            props.Type,
			SupportedModels: ParseSupportedModels(props.Description),
		},
	}
}

// ClassifyBackends partitions records into standalone backends and pools,
// preserving the input order within each partition.
func ClassifyBackends(records []BackendContract) ([]Backend, []BackendPool) {
	backends := []Backend{}
	pools := []BackendPool{}

	for _, record := range records {
		entry := NewBackendEntry(record)

		switch entry.Kind {
		case BackendKindPool:
			pools = append(pools, *entry.Pool)
		case BackendKindStandalone:
			backends = append(backends, *entry.Standalone)
		}
	}

	return backends, pools
}

// ParseSupportedModels reads the comma separated list following the last
// "Supports models:" marker of a description. Items are trimmed and kept in
// order; blank items are dropped, so a bare marker or a trailing comma never
// yields an empty model name.
func ParseSupportedModels(description string) []string {
	models := []string{}

	idx := strings.LastIndex(description, SupportsModelsMarker)
	if idx < 0 {
		return models
	}

	for _, item := range strings.Split(description[idx+len(SupportsModelsMarker):], ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			models = append(models, item)
		}
	}

	return models
}
