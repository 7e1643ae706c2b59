// Package engine renders a template tree with resolved placeholder answers
// and pushes the result to a destination directory.
//
// Rendering is parallel and side-effect free. Writing happens afterwards,
// sequentially in tree order, and only once every target has been checked
// for escapes, collisions, and conflicts with existing files.
package engine
