// Package render writes diff results as HTML or as colored terminal text.
package render
