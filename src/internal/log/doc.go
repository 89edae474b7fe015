// Package log provides simple leveled logging for ipmerge.
//
// It keeps a small printf-style API over github.com/charmbracelet/log.
// Debug, info and warning messages go to stdout, errors go to stderr.
// Debug messages are only shown in verbose mode.
//
//	log.Infof("Downloading %s", url)
//	log.SetVerbose(true)
//	log.Debugf("Read %d lines from %s", n, path)
package log
