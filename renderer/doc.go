// Package renderer turns page props into HTML. Templates and the stylesheet
// are embedded in the binary; the stylesheet is minified once at load time
// and inlined into the document.
package renderer
