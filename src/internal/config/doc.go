// Package config handles configuration for ipmerge.
//
// Settings come from an optional TOML file layered over DefaultConfig. With no
// file at all the tool downloads the archive, merges every .txt file into
// proxy.txt, drops the Cloudflare edge ranges, and publishes to
// BestProxy/proxy.txt.
//
// Publish credentials are never read from the file. LoadCredentials reads
// GITHUB_TOKEN and GITHUB_REPOSITORY from the environment, after loading a
// .env file if one exists, and returns them as a value the publisher receives
// at construction.
//
//	cfg, err := config.LoadConfig("ipmerge.toml")
//	if err != nil {
//	    log.Fatalf("%v", err)
//	}
//	if err := cfg.ValidateConfig(); err != nil {
//	    log.Fatalf("%v", err)
//	}
package config
