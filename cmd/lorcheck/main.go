// Package main provides the entry point for the lorcheck CLI.
//
// lorcheck drives a headless browser against the front page of
// www.linux.org.ru and checks that the header, body and footer regions
// still carry the expected structure and text.
//
// Usage:
//
//	lorcheck run
//	lorcheck run --static --region header
//	lorcheck history
//
// See --help for all available options.
package main

// main is the entry point for lorcheck.
func main() {
	Execute()
}
