package discovery

import (
	"sort"
	"strings"
	"time"

	"quiver/internal/api"
	"quiver/internal/version"
	"quiver/pkg/logging"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Capabilities is advertised in every DiscoveryMetadata.
var Capabilities = []string{"search", "filter", "sort", "paginate", "version-range", "categories", "statistics"}

// Engine answers discovery queries over an api.EntrySource. It holds no
// registry state of its own.
type Engine struct {
	now  func() time.Time
	lang language.Tag
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the clock used for recency queries.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLanguage sets the collation language used for name ordering.
func WithLanguage(tag language.Tag) Option {
	return func(e *Engine) { e.lang = tag }
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{now: time.Now, lang: language.English}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func all(src api.EntrySource) []api.Entry {
	tools := src.Tools()
	prompts := src.Prompts()
	out := make([]api.Entry, 0, len(tools)+len(prompts))
	out = append(out, tools...)
	return append(out, prompts...)
}

// Discover filters, sorts and pages the entries of src according to q.
func (e *Engine) Discover(src api.EntrySource, q api.DiscoveryQuery) api.DiscoveryResult {
	entries := all(src)

	matched := make([]api.Entry, 0, len(entries))
	for _, entry := range entries {
		if matches(entry, q) {
			matched = append(matched, entry)
		}
	}

	e.sortEntries(matched, q.SortBy, q.SortOrder)

	limit := q.Limit
	if limit <= 0 {
		limit = api.DefaultDiscoveryLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	total := len(matched)
	start := min(offset, total)
	end := start + min(limit, total-start)

	page := make([]api.DiscoveryEntry, 0, end-start)
	for _, entry := range matched[start:end] {
		page = append(page, entry.Snapshot())
	}

	logging.Debug("Discovery", "Query matched %d of %d entries, returning %d", total, len(entries), len(page))

	return api.DiscoveryResult{
		Entries: page,
		Pagination: api.Pagination{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: offset < total && limit < total-offset,
		},
		Metadata: metadata(entries),
	}
}

// Metadata summarizes every entry of src.
func (e *Engine) Metadata(src api.EntrySource) api.DiscoveryMetadata {
	return metadata(all(src))
}

func metadata(entries []api.Entry) api.DiscoveryMetadata {
	md := api.DiscoveryMetadata{
		TotalEntries: len(entries),
		Tags:         distinctTags(entries),
		MaxVersion:   version.Max(versions(entries)...).String(),
		Capabilities: append([]string(nil), Capabilities...),
	}
	for _, entry := range entries {
		switch entry.Type {
		case api.EntryTypeTool:
			md.TotalTools++
		case api.EntryTypePrompt:
			md.TotalPrompts++
		}
	}
	return md
}

func matches(entry api.Entry, q api.DiscoveryQuery) bool {
	if q.Type != "" && q.Type != api.EntryTypeAll && entry.Type != q.Type {
		return false
	}
	if len(q.Tags) > 0 && !hasAnyTag(entry, q.Tags) {
		return false
	}
	if q.Author != "" && entry.Author != q.Author {
		return false
	}
	if q.Deprecated != nil && entry.Deprecated != *q.Deprecated {
		return false
	}
	if q.VersionRange != "" && !version.SatisfiesRange(entry.Version, q.VersionRange) {
		return false
	}
	if q.SearchText != "" && !matchesText(entry, q.SearchText) {
		return false
	}
	if q.UpdatedSince != nil && entry.CreatedAt.Before(*q.UpdatedSince) && entry.UpdatedAt.Before(*q.UpdatedSince) {
		return false
	}
	return true
}

func hasAnyTag(entry api.Entry, tags []string) bool {
	for _, tag := range tags {
		if entry.HasTag(tag) {
			return true
		}
	}
	return false
}

func matchesText(entry api.Entry, text string) bool {
	needle := strings.ToLower(text)
	if strings.Contains(strings.ToLower(entry.Name), needle) ||
		strings.Contains(strings.ToLower(entry.Description), needle) {
		return true
	}
	for _, tag := range entry.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// sortEntries orders entries in place. Ties fall back to name so results
// are deterministic.
func (e *Engine) sortEntries(entries []api.Entry, by api.SortField, order api.SortOrder) {
	col := collate.New(e.lang)
	byName := func(a, b api.Entry) int {
		if c := col.CompareString(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	}

	var key func(a, b api.Entry) int
	switch by {
	case api.SortByVersion:
		key = func(a, b api.Entry) int { return version.Compare(a.Version, b.Version) }
	case api.SortByCreated:
		key = func(a, b api.Entry) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case api.SortByUpdated:
		key = func(a, b api.Entry) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	default:
		key = byName
	}

	sign := 1
	if order == api.SortDesc {
		sign = -1
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if c := key(entries[i], entries[j]) * sign; c != 0 {
			return c < 0
		}
		return byName(entries[i], entries[j]) < 0
	})
}

// Search returns entries whose name, description or tags contain text.
func (e *Engine) Search(src api.EntrySource, text string) api.DiscoveryResult {
	return e.Discover(src, api.DiscoveryQuery{SearchText: text})
}

// ByTags returns entries carrying any of tags.
func (e *Engine) ByTags(src api.EntrySource, tags ...string) api.DiscoveryResult {
	return e.Discover(src, api.DiscoveryQuery{Tags: tags})
}

// ByAuthor returns entries registered by author.
func (e *Engine) ByAuthor(src api.EntrySource, author string) api.DiscoveryResult {
	return e.Discover(src, api.DiscoveryQuery{Author: author})
}

// Recent returns entries created or updated within the last days days,
// most recently updated first.
func (e *Engine) Recent(src api.EntrySource, days int) api.DiscoveryResult {
	since := e.now().Add(-time.Duration(days) * 24 * time.Hour)
	return e.Discover(src, api.DiscoveryQuery{
		UpdatedSince: &since,
		SortBy:       api.SortByUpdated,
		SortOrder:    api.SortDesc,
	})
}

// Deprecated returns every deprecated entry.
func (e *Engine) Deprecated(src api.EntrySource) api.DiscoveryResult {
	deprecated := true
	return e.Discover(src, api.DiscoveryQuery{Deprecated: &deprecated})
}

// Categories returns the sorted set of distinct tags.
func (e *Engine) Categories(src api.EntrySource) []string {
	return distinctTags(all(src))
}

// Statistics aggregates counts and versions over every entry of src.
func (e *Engine) Statistics(src api.EntrySource) api.Statistics {
	entries := all(src)
	authors := make(map[string]struct{})
	st := api.Statistics{TotalEntries: len(entries)}
	for _, entry := range entries {
		switch entry.Type {
		case api.EntryTypeTool:
			st.Tools++
		case api.EntryTypePrompt:
			st.Prompts++
		}
		if entry.Deprecated {
			st.Deprecated++
		}
		if entry.Author != "" {
			authors[entry.Author] = struct{}{}
		}
	}
	st.Authors = len(authors)
	st.Tags = len(distinctTags(entries))

	vs := versions(entries)
	st.AverageVersion = version.Average(vs...).String()
	st.MaxVersion = version.Max(vs...).String()
	return st
}

func distinctTags(entries []api.Entry) []string {
	seen := make(map[string]struct{})
	tags := make([]string, 0)
	for _, entry := range entries {
		for _, tag := range entry.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}

func versions(entries []api.Entry) []version.VersionInfo {
	vs := make([]version.VersionInfo, 0, len(entries))
	for _, entry := range entries {
		vs = append(vs, entry.Version)
	}
	return vs
}
