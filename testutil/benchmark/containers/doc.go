// Package containers starts throwaway database containers for integration tests.
package containers
