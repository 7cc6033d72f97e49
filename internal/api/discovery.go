package api

import (
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// DefaultDiscoveryLimit is the page size used when a query leaves Limit at zero.
const DefaultDiscoveryLimit = 50

// SortField selects the discovery ordering key.
type SortField string

const (
	SortByName    SortField = "name"
	SortByVersion SortField = "version"
	SortByCreated SortField = "created"
	SortByUpdated SortField = "updated"
)

// SortOrder selects ascending or descending discovery ordering.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// DiscoveryQuery filters, orders and pages registry entries. All filters are
// optional and conjunctive.
type DiscoveryQuery struct {
	// Type restricts results to tools or prompts. Empty or EntryTypeAll matches both.
	Type EntryType `json:"type,omitempty"`

	// Tags matches entries carrying at least one of the listed tags.
	Tags []string `json:"tags,omitempty"`

	// Author matches exactly.
	Author string `json:"author,omitempty"`

	// Deprecated matches the deprecated flag when non-nil.
	Deprecated *bool `json:"deprecated,omitempty"`

	// VersionRange matches via version.SatisfiesRange. Malformed ranges match nothing.
	VersionRange string `json:"versionRange,omitempty"`

	// SearchText is a case-insensitive substring match over name, description and tags.
	SearchText string `json:"searchText,omitempty"`

	// UpdatedSince keeps entries updated at or after the given instant.
	UpdatedSince *time.Time `json:"updatedSince,omitempty"`

	Limit     int       `json:"limit,omitempty"`
	Offset    int       `json:"offset,omitempty"`
	SortBy    SortField `json:"sortBy,omitempty"`
	SortOrder SortOrder `json:"sortOrder,omitempty"`
}

// DiscoveryEntry is the display-safe projection of an Entry.
type DiscoveryEntry struct {
	Name              string               `json:"name"`
	Type              EntryType            `json:"type"`
	Description       string               `json:"description"`
	Version           string               `json:"version"`
	Author            string               `json:"author,omitempty"`
	Tags              []string             `json:"tags"`
	Deprecated        bool                 `json:"deprecated"`
	DeprecationReason string               `json:"deprecationReason,omitempty"`
	InputSchema       *mcp.ToolInputSchema `json:"inputSchema,omitempty"`
	Arguments         []mcp.PromptArgument `json:"arguments,omitempty"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

// Pagination describes the page a DiscoveryResult holds.
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

// DiscoveryMetadata summarizes the whole registry, independent of any query.
type DiscoveryMetadata struct {
	TotalTools   int      `json:"totalTools"`
	TotalPrompts int      `json:"totalPrompts"`
	TotalEntries int      `json:"totalEntries"`
	Tags         []string `json:"tags"`
	MaxVersion   string   `json:"maxVersion"`
	Capabilities []string `json:"capabilities"`
}

// DiscoveryResult is one page of discovery output.
type DiscoveryResult struct {
	Entries    []DiscoveryEntry  `json:"entries"`
	Pagination Pagination        `json:"pagination"`
	Metadata   DiscoveryMetadata `json:"metadata"`
}

// Statistics is the aggregate view returned by GetStatistics.
type Statistics struct {
	TotalEntries   int    `json:"totalEntries"`
	Tools          int    `json:"tools"`
	Prompts        int    `json:"prompts"`
	Deprecated     int    `json:"deprecated"`
	Authors        int    `json:"authors"`
	Tags           int    `json:"tags"`
	AverageVersion string `json:"averageVersion"`
	MaxVersion     string `json:"maxVersion"`
}

// Snapshot returns the display-safe projection of e.
func (e Entry) Snapshot() DiscoveryEntry {
	out := DiscoveryEntry{
		Name:              e.Name,
		Type:              e.Type,
		Description:       e.Description,
		Version:           e.Version.String(),
		Author:            e.Author,
		Tags:              append([]string{}, e.Tags...),
		Deprecated:        e.Deprecated,
		DeprecationReason: e.DeprecationReason,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
	switch e.Type {
	case EntryTypeTool:
		schema := e.ToolDefinition().InputSchema
		out.InputSchema = &schema
	case EntryTypePrompt:
		out.Arguments = e.PromptDefinition().Arguments
	}
	return out
}
