// Package browser provides the page-driving capability the checks consume:
// launching a session, navigating, finding elements by selector kind,
// reading text and attributes, executing script and clicking.
//
// Two sessions implement the same Page and Element interfaces:
//   - ChromeSession drives a real (headless by default) Chrome through the
//     DevTools protocol with chromedp. Lookups honour an implicit wait.
//   - StaticSession fetches HTML over HTTP and queries it with goquery.
//     It has no script engine, so Evaluate and Click return ErrUnsupported.
//
// Element handles are only valid for the page load that produced them.
// Navigating again invalidates every handle obtained before.
package browser
