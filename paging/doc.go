// Package paging turns marker-driven list APIs into lazy sequences.
//
// A [FetchFunc] retrieves one [Page] for a marker; the empty marker asks
// for the first page and a page with an empty Next marker is the last.
// [Iterator] and [All] fetch one page at a time, on demand, and visit
// each item exactly once. Sequences are forward-only: ranging a sequence
// returned by All a second time yields [ErrConsumed]; call All again to
// start over.
//
// Adapters cover the common cursor styles: [Offsets] for numeric
// offset/limit APIs, [NextLinks] for APIs returning a next-page URL, and
// [FanOut] for collections synthesized by fanning a parent key across a
// mapping from another source (regions to zones).
package paging
