package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"

	ierrors "github.com/ipmerge/ipmerge/src/internal/errors"
	"github.com/ipmerge/ipmerge/src/internal/log"
)

const (
	EnvToken      = "GITHUB_TOKEN"
	EnvRepository = "GITHUB_REPOSITORY"
)

// Credentials authenticate the publisher. They are read from the environment once
// at startup and passed to the publisher explicitly.
type Credentials struct {
	Token      string `env:"GITHUB_TOKEN" validate:"required"`
	Repository string `env:"GITHUB_REPOSITORY" validate:"required,repository"`
}

// LoadCredentials loads envFile (if it exists) into the process environment and then
// reads the credentials. Variables already set in the environment take precedence.
func LoadCredentials(envFile string) (*Credentials, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err == nil {
			log.Debugf("Loaded environment from %s", envFile)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, ierrors.NewConfigError("failed to load "+envFile, err)
		}
	}

	return CredentialsFromEnv(os.Getenv)
}

// CredentialsFromEnv reads and validates credentials using getenv.
func CredentialsFromEnv(getenv func(string) string) (*Credentials, error) {
	creds := &Credentials{
		Token:      strings.TrimSpace(getenv(EnvToken)),
		Repository: strings.TrimSpace(getenv(EnvRepository)),
	}
	if err := creds.Validate(); err != nil {
		return nil, ierrors.NewConfigError("invalid publish credentials", err)
	}
	return creds, nil
}

func (c *Credentials) Validate() error {
	if err := validate.Struct(c); err != nil {
		return convertValidatorErrors(err, "", "env")
	}
	return nil
}

// Owner returns the repository owner.
func (c *Credentials) Owner() string {
	owner, _, _ := strings.Cut(c.Repository, "/")
	return owner
}

// Repo returns the repository name without the owner.
func (c *Credentials) Repo() string {
	_, repo, _ := strings.Cut(c.Repository, "/")
	return repo
}

// String hides the token.
func (c *Credentials) String() string {
	return c.Repository + " (token: ***)"
}
