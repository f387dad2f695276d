// Package check holds the check catalogue for the linux.org.ru front page.
//
// Checks are grouped by page region. Each region names the identifier of its
// root element; the suite resolves the root once and hands it to every check
// of the group in a Scope. A check locates elements (relative to the root,
// or to the document where the page layout requires it) and compares text,
// attribute values or counts with the configured expectations.
//
// A check returns nil when it passes. Failures are either a *LookupError
// (an element was missing) or an *AssertionError (an element was found but
// did not match). Classify maps any returned error to a result status.
package check
