// Package origin loads template file trees. A Local loader reads a directory
// through an afero filesystem; a Remote loader clones a git branch into a
// private temporary directory and hands it to a Local loader. Both return a
// complete tree or an error, never a partial tree.
package origin
