// Package acl implements the Anti-Corruption Layer for the external quote
// sources and the text-generation service.
//
// Each adapter owns its external DTOs (unexported) and translates them into
// domain values, so a change in a third-party payload or page layout stays
// inside this package:
//
//   - [ZenClient], [BibleClient]: JSON APIs returning one quote per call
//   - [TagScraper]: paginated Goodreads tag listings, parsed with goquery
//   - [PageScraper]: a single article whose h4 headings hold the quotes
//   - [StaticSource]: a fixed in-memory list
//   - [OpenAIClient]: chat completions for the style rewrite
//
// All downstream failures are translated to [domain.ErrUnavailable] (see
// [MapHTTPError]) or [domain.ErrNoQuotes] when a source answered without a
// usable quote. Adapters never fall back themselves; the application layer
// decides what to serve instead.
package acl
