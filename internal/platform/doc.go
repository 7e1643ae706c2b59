// Package platform smooths over operating system differences in file
// permission handling.
package platform
