// Package cmd defines the catalog-scraper command line: serve runs the HTTP
// API, scrape performs a single run, and products prints the stored document.
package cmd
