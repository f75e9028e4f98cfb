package driver

import "slices"

// Capability represents a feature a driver can provide natively.
type Capability string

const (
	// The store evaluates structured metadata filters itself instead of the
	// driver scanning and filtering records in process.
	CapabilityMetadataQuery Capability = "metadata_query"

	// Duplicate identifiers are rejected by an atomic store primitive
	// (unique index, compare-and-set) rather than a racy existence check.
	CapabilityAtomicInsert Capability = "atomic_insert"

	// The store orders and paginates search results itself.
	CapabilityNativePagination Capability = "native_pagination"
)

func AllCapabilities() *Capabilities {
	return &Capabilities{
		Capabilities: []Capability{
			CapabilityMetadataQuery,
			CapabilityAtomicInsert,
			CapabilityNativePagination,
		},
	}
}

// Capabilities describes what a driver supports
type Capabilities struct {
	Capabilities []Capability
}

// Contains checks if a capability is supported
func (c *Capabilities) Contains(cap Capability) bool {
	return slices.Contains(c.Capabilities, cap)
}
