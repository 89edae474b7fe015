package github

import (
	"context"
	"encoding/base64"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ipmerge/ipmerge/src/internal/errors"
	"github.com/ipmerge/ipmerge/src/internal/log"
)

// FileState tells whether a repository file exists.
type FileState int

const (
	FileAbsent FileState = iota
	FileFound
)

func (s FileState) String() string {
	if s == FileFound {
		return "found"
	}
	return "absent"
}

// FileLookup is the result of GetFile. SHA is the revision token of an existing
// file and is empty when the file is absent.
type FileLookup struct {
	State FileState
	SHA   string
}

// FileUpdate describes a create-or-update commit of a single file.
// SHA must hold the current revision token when replacing an existing file.
type FileUpdate struct {
	Message string
	Content []byte
	SHA     string
	Branch  string
}

// CommitResult is returned by a successful PutFile.
type CommitResult struct {
	Created    bool
	ContentSHA string
	CommitSHA  string
	HTMLURL    string
}

type contentResponse struct {
	Type string `json:"type"`
	Path string `json:"path"`
	SHA  string `json:"sha"`
	Size int64  `json:"size"`
}

type putContentRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

type putContentResponse struct {
	Content struct {
		SHA     string `json:"sha"`
		HTMLURL string `json:"html_url"`
	} `json:"content"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

// GetFile looks up a file in the repository. A 404 yields FileAbsent; every other
// failure is returned as a PUBLISH_ERROR.
func (c *Client) GetFile(ctx context.Context, owner, repo, path, branch string) (FileLookup, error) {
	endpoint := contentsEndpoint(owner, repo, path)
	if branch != "" {
		endpoint += "?ref=" + url.QueryEscape(branch)
	}

	content, _, err := doJSON[contentResponse](ctx, c, http.MethodGet, endpoint, nil, http.StatusOK)
	if err != nil {
		var apiErr *APIError
		if stderrors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			log.Debugf("Remote file %s does not exist yet", path)
			return FileLookup{State: FileAbsent}, nil
		}
		return FileLookup{}, errors.NewPublishError(fmt.Sprintf("failed to look up %s", path), err)
	}

	if content.Type != "" && content.Type != "file" {
		return FileLookup{}, errors.NewPublishError(fmt.Sprintf("%s is a %s, not a file", path, content.Type), nil)
	}
	if content.SHA == "" {
		return FileLookup{}, errors.NewPublishError(fmt.Sprintf("lookup of %s returned no revision", path), nil)
	}

	log.Debugf("Remote file %s found at revision %s", path, content.SHA)
	return FileLookup{State: FileFound, SHA: content.SHA}, nil
}

// PutFile creates or replaces a file. A stale or missing revision token is reported
// as PUBLISH_CONFLICT; any other rejection as PUBLISH_ERROR.
func (c *Client) PutFile(ctx context.Context, owner, repo, path string, update FileUpdate) (*CommitResult, error) {
	endpoint := contentsEndpoint(owner, repo, path)
	payload := putContentRequest{
		Message: update.Message,
		Content: base64.StdEncoding.EncodeToString(update.Content),
		SHA:     update.SHA,
		Branch:  update.Branch,
	}

	resp, status, err := doJSON[putContentResponse](ctx, c, http.MethodPut, endpoint, payload,
		http.StatusOK, http.StatusCreated)
	if err != nil {
		var apiErr *APIError
		if stderrors.As(err, &apiErr) &&
			(apiErr.StatusCode == http.StatusConflict || apiErr.StatusCode == http.StatusUnprocessableEntity) {
			return nil, errors.NewConflictError(fmt.Sprintf("revision of %s is stale", path), err)
		}
		return nil, errors.NewPublishError(fmt.Sprintf("failed to upload %s", path), err)
	}

	return &CommitResult{
		Created:    status == http.StatusCreated,
		ContentSHA: resp.Content.SHA,
		CommitSHA:  resp.Commit.SHA,
		HTMLURL:    resp.Content.HTMLURL,
	}, nil
}
