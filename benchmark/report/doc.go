// Package report renders the results of a benchmark run as human-readable text or as JSON.
package report
