// Package commands implements the ipmerge subcommands.
//
// Each command implements Runner: Init parses its flags and loads the
// configuration (and credentials, where publishing is involved), Run executes it.
//
//   - run: download, build and publish the address list
//   - build: download and build the output file only
//   - publish: upload an output file built earlier
//   - check-config: validate configuration and credentials
//
// Credentials are loaded in Init, so a missing token fails before any request is made.
package commands
