// Package empty has documentation but no public API.
package empty
