// Package lists handles the address lists: downloading and unpacking the source
// archive, merging the extracted files into a deduplicated set, shuffling, and
// writing the result.
package lists
