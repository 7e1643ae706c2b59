// Package template defines the data model shared by every stage of project
// generation: the FileTree loaded from an origin, the placeholder
// Specification parsed from the template's document, and the Configuration
// and RenderRequest values passed from loading into rendering.
package template
