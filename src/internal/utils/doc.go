// Package utils provides small filesystem helpers shared by the ipmerge stages:
// path resolution against a base directory, containment checks for extracted
// archive entries, atomic file replacement and quiet removal.
package utils
