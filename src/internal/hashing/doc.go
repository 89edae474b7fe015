// Package hashing provides checksum helpers.
//
// ChecksumReaderProxy computes the MD5 of a stream while it is copied, so a
// downloaded archive can be compared with the previous run without a second
// read. GitBlobSHA computes the object id the repository host reports for a
// file, which lets the publisher detect an upload that would not change anything.
package hashing
