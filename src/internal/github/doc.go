// Package github is a small client for the GitHub repository contents API.
//
// It supports exactly what publishing a generated file needs: looking up the
// current revision of a file and creating or replacing it with that revision as
// an optimistic-concurrency token.
//
// Example:
//
//	client := github.NewClientWithBaseURL("https://api.github.com", token, nil)
//	lookup, err := client.GetFile(ctx, "owner", "repo", "dir/file.txt", "")
//	if err != nil {
//		return err
//	}
//	_, err = client.PutFile(ctx, "owner", "repo", "dir/file.txt", github.FileUpdate{
//		Message: "update",
//		Content: data,
//		SHA:     lookup.SHA,
//	})
package github
