package pipeline

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/ipmerge/ipmerge/src/internal/config"
	"github.com/ipmerge/ipmerge/src/internal/errors"
	"github.com/ipmerge/ipmerge/src/internal/github"
	"github.com/ipmerge/ipmerge/src/internal/hashing"
	"github.com/ipmerge/ipmerge/src/internal/lists"
)

type fakeFetcher struct {
	files map[string]string
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, urls []string, archivePath string) (*lists.FetchResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	names := make([]string, 0, len(f.files))
	for name := range f.files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(f.files[name])); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	if err := os.WriteFile(archivePath, buf.Bytes(), 0644); err != nil {
		return nil, err
	}
	return &lists.FetchResult{URL: urls[0], Path: archivePath, Size: int64(buf.Len()), Changed: true}, nil
}

type fakePublisher struct {
	lookup    github.FileLookup
	lookupErr error
	putErr    error

	getCalls int
	puts     []github.FileUpdate
}

func (f *fakePublisher) GetFile(_ context.Context, owner, repo, path, branch string) (github.FileLookup, error) {
	f.getCalls++
	return f.lookup, f.lookupErr
}

func (f *fakePublisher) PutFile(_ context.Context, owner, repo, path string, update github.FileUpdate) (*github.CommitResult, error) {
	f.puts = append(f.puts, update)
	if f.putErr != nil {
		return nil, f.putErr
	}
	return &github.CommitResult{Created: update.SHA == "", CommitSHA: "commit-sha"}, nil
}

var sampleFiles = map[string]string{
	"a.txt": "1.1.1.1\n2.2.2.2\n",
	"b.txt": "2.2.2.2\r\n104.16.5.5\r\n\r\n 3.3.3.3 ",
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.General.WorkDir = t.TempDir()
	return cfg
}

func testCredentials() *config.Credentials {
	return &config.Credentials{Token: "token", Repository: "owner/repo"}
}

// identityRand keeps insertion order so the output is predictable.
func identityRand(n int) int { return n - 1 }

func fixedClock() time.Time {
	return time.Date(2024, 1, 2, 0, 4, 5, 0, time.UTC)
}

func newTestPipeline(t *testing.T, cfg *config.Config, creds *config.Credentials, fetcher Fetcher, publisher Publisher) *Pipeline {
	t.Helper()
	p, err := New(cfg, creds,
		WithFetcher(fetcher),
		WithPublisher(publisher),
		WithClock(fixedClock),
		WithRand(identityRand),
	)
	if err != nil {
		t.Fatalf("Failed to create pipeline: %v", err)
	}
	return p
}

func readOutput(t *testing.T, cfg *config.Config) string {
	t.Helper()
	content, err := os.ReadFile(cfg.GetOutputPath())
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	return string(content)
}

func TestRun_FullPipeline(t *testing.T) {
	cfg := testConfig(t)
	// A previous output must not be read back as input.
	if err := os.WriteFile(cfg.GetOutputPath(), []byte("9.9.9.9"), 0644); err != nil {
		t.Fatalf("Failed to seed output: %v", err)
	}

	publisher := &fakePublisher{lookup: github.FileLookup{State: github.FileAbsent}}
	p := newTestPipeline(t, cfg, testCredentials(), &fakeFetcher{files: sampleFiles}, publisher)

	result, err := p.Run(context.Background(), RunOptions{Publish: true})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if got := readOutput(t, cfg); got != "1.1.1.1\n2.2.2.2\n3.3.3.3" {
		t.Errorf("Unexpected output %q", got)
	}
	if result.Build.Collected != 4 || result.Build.Excluded != 1 || result.Build.Written != 3 {
		t.Errorf("Unexpected build counts %+v", result.Build)
	}

	if len(publisher.puts) != 1 {
		t.Fatalf("Expected one upload, got %d", len(publisher.puts))
	}
	put := publisher.puts[0]
	if put.SHA != "" {
		t.Errorf("Expected no revision when creating, got %q", put.SHA)
	}
	if string(put.Content) != "1.1.1.1\n2.2.2.2\n3.3.3.3" {
		t.Errorf("Unexpected uploaded content %q", string(put.Content))
	}
	wantMessage := "Update BestProxy/proxy.txt - 2024-01-02 08:04:05 (Total IPs: 3)"
	if put.Message != wantMessage {
		t.Errorf("Expected message %q, got %q", wantMessage, put.Message)
	}
	if !result.Publish.Created || result.Publish.CommitSHA != "commit-sha" {
		t.Errorf("Unexpected publish result %+v", result.Publish)
	}
}

func TestRun_UpdatesWithRevision(t *testing.T) {
	cfg := testConfig(t)
	publisher := &fakePublisher{lookup: github.FileLookup{State: github.FileFound, SHA: "old-sha"}}
	p := newTestPipeline(t, cfg, testCredentials(), &fakeFetcher{files: sampleFiles}, publisher)

	result, err := p.Run(context.Background(), RunOptions{Publish: true})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(publisher.puts) != 1 || publisher.puts[0].SHA != "old-sha" {
		t.Fatalf("Expected upload with revision old-sha, got %+v", publisher.puts)
	}
	if result.Publish.Created {
		t.Error("Expected an update, not a create")
	}
}

func TestRun_FilterDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Filter.Enabled = false
	p := newTestPipeline(t, cfg, nil, &fakeFetcher{files: sampleFiles}, nil)

	result, err := p.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Build.Written != 4 {
		t.Errorf("Expected 4 addresses without filtering, got %d", result.Build.Written)
	}
	if !strings.Contains(readOutput(t, cfg), "104.16.5.5") {
		t.Error("Expected excluded-range address to be kept when filtering is disabled")
	}
}

func TestRun_DropInvalid(t *testing.T) {
	cfg := testConfig(t)
	cfg.Filter.DropInvalid = true
	files := map[string]string{"a.txt": "1.1.1.1\nnot-an-ip\n8.8.8.8:443"}
	p := newTestPipeline(t, cfg, nil, &fakeFetcher{files: files}, nil)

	result, err := p.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Build.Invalid != 1 || result.Build.Written != 2 {
		t.Errorf("Unexpected counts %+v", result.Build)
	}
	if got := readOutput(t, cfg); got != "1.1.1.1\n8.8.8.8:443" {
		t.Errorf("Unexpected output %q", got)
	}
}

func TestRun_NestedArchiveEntries(t *testing.T) {
	cfg := testConfig(t)
	files := map[string]string{"data/a.txt": "1.1.1.1\n8.8.8.8"}
	publisher := &fakePublisher{}
	p := newTestPipeline(t, cfg, testCredentials(), &fakeFetcher{files: files}, publisher)

	result, err := p.Run(context.Background(), RunOptions{Publish: true})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Build.Written != 2 {
		t.Errorf("Expected 2 addresses from the nested list, got %d", result.Build.Written)
	}
	if got := readOutput(t, cfg); got != "1.1.1.1\n8.8.8.8" {
		t.Errorf("Unexpected output %q", got)
	}
	if len(publisher.puts) != 1 || string(publisher.puts[0].Content) != "1.1.1.1\n8.8.8.8" {
		t.Errorf("Expected nested addresses to be uploaded, got %+v", publisher.puts)
	}
}

func TestRun_LookupErrorAborts(t *testing.T) {
	cfg := testConfig(t)
	publisher := &fakePublisher{lookupErr: errors.NewPublishError("lookup failed", nil)}
	p := newTestPipeline(t, cfg, testCredentials(), &fakeFetcher{files: sampleFiles}, publisher)

	_, err := p.Run(context.Background(), RunOptions{Publish: true})
	if !errors.HasCode(err, errors.ErrCodePublish) {
		t.Fatalf("Expected publish error, got %v", err)
	}
	if len(publisher.puts) != 0 {
		t.Error("Expected no upload after a failed lookup")
	}
}

func TestRun_LookupErrorTolerated(t *testing.T) {
	cfg := testConfig(t)
	cfg.Publish.TolerateLookupErrors = true
	publisher := &fakePublisher{lookupErr: errors.NewPublishError("lookup failed", nil)}
	p := newTestPipeline(t, cfg, testCredentials(), &fakeFetcher{files: sampleFiles}, publisher)

	if _, err := p.Run(context.Background(), RunOptions{Publish: true}); err != nil {
		t.Fatalf("Expected tolerated lookup error, got %v", err)
	}
	if len(publisher.puts) != 1 || publisher.puts[0].SHA != "" {
		t.Errorf("Expected a create without revision, got %+v", publisher.puts)
	}
}

func TestRun_Conflict(t *testing.T) {
	cfg := testConfig(t)
	publisher := &fakePublisher{
		lookup: github.FileLookup{State: github.FileFound, SHA: "stale"},
		putErr: errors.NewConflictError("revision is stale", nil),
	}
	p := newTestPipeline(t, cfg, testCredentials(), &fakeFetcher{files: sampleFiles}, publisher)

	_, err := p.Run(context.Background(), RunOptions{Publish: true})
	if !errors.HasCode(err, errors.ErrCodeConflict) {
		t.Errorf("Expected conflict error, got %v", err)
	}
}

func TestRun_IdenticalContentStillUpdatesByDefault(t *testing.T) {
	cfg := testConfig(t)
	content := []byte("1.1.1.1\n2.2.2.2\n3.3.3.3")
	publisher := &fakePublisher{lookup: github.FileLookup{State: github.FileFound, SHA: hashing.GitBlobSHA(content)}}
	p := newTestPipeline(t, cfg, testCredentials(), &fakeFetcher{files: sampleFiles}, publisher)

	result, err := p.Run(context.Background(), RunOptions{Publish: true})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Publish.Skipped {
		t.Error("Expected no skip with the default configuration")
	}
	if len(publisher.puts) != 1 || publisher.puts[0].SHA != hashing.GitBlobSHA(content) {
		t.Errorf("Expected an update carrying the remote revision, got %+v", publisher.puts)
	}
}

func TestRun_SkipUnchanged(t *testing.T) {
	cfg := testConfig(t)
	cfg.Publish.SkipUnchanged = true
	content := []byte("1.1.1.1\n2.2.2.2\n3.3.3.3")
	publisher := &fakePublisher{lookup: github.FileLookup{State: github.FileFound, SHA: hashing.GitBlobSHA(content)}}
	p := newTestPipeline(t, cfg, testCredentials(), &fakeFetcher{files: sampleFiles}, publisher)

	result, err := p.Run(context.Background(), RunOptions{Publish: true})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !result.Publish.Skipped {
		t.Error("Expected upload to be skipped")
	}
	if len(publisher.puts) != 0 {
		t.Errorf("Expected no upload, got %d", len(publisher.puts))
	}

	cfg.Publish.SkipUnchanged = false
	if _, err := p.Run(context.Background(), RunOptions{Publish: true}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(publisher.puts) != 1 {
		t.Errorf("Expected upload when skipping is disabled, got %d", len(publisher.puts))
	}
}

func TestRun_FetchErrorStopsPipeline(t *testing.T) {
	cfg := testConfig(t)
	publisher := &fakePublisher{}
	fetcher := &fakeFetcher{err: errors.NewFetchError("download failed", stderrors.New("boom"))}
	p := newTestPipeline(t, cfg, testCredentials(), fetcher, publisher)

	_, err := p.Run(context.Background(), RunOptions{Publish: true})
	if !errors.HasCode(err, errors.ErrCodeFetch) {
		t.Fatalf("Expected fetch error, got %v", err)
	}
	if _, statErr := os.Stat(cfg.GetOutputPath()); !os.IsNotExist(statErr) {
		t.Error("Expected no output file after a failed download")
	}
	if publisher.getCalls != 0 || len(publisher.puts) != 0 {
		t.Error("Expected no remote calls after a failed download")
	}
}

func TestPublish_MissingCredentials(t *testing.T) {
	cfg := testConfig(t)
	publisher := &fakePublisher{}
	p := newTestPipeline(t, cfg, nil, &fakeFetcher{files: sampleFiles}, publisher)

	_, err := p.Run(context.Background(), RunOptions{Publish: true})
	if !errors.HasCode(err, errors.ErrCodeConfig) {
		t.Fatalf("Expected config error, got %v", err)
	}
	if publisher.getCalls != 0 {
		t.Error("Expected no remote calls without credentials")
	}
}

func TestRun_SkipBuildPublishesExistingOutput(t *testing.T) {
	cfg := testConfig(t)
	if err := os.WriteFile(cfg.GetOutputPath(), []byte("5.5.5.5\n6.6.6.6"), 0644); err != nil {
		t.Fatalf("Failed to seed output: %v", err)
	}
	fetcher := &fakeFetcher{files: sampleFiles}
	publisher := &fakePublisher{}
	p := newTestPipeline(t, cfg, testCredentials(), fetcher, publisher)

	if _, err := p.Run(context.Background(), RunOptions{SkipBuild: true, Publish: true}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if fetcher.calls != 0 {
		t.Error("Expected no download when skipping the build")
	}
	if len(publisher.puts) != 1 || !strings.HasSuffix(publisher.puts[0].Message, "(Total IPs: 2)") {
		t.Errorf("Expected message counting 2 addresses, got %+v", publisher.puts)
	}
}

func TestRun_SkipFetchUsesWorkDir(t *testing.T) {
	cfg := testConfig(t)
	if err := os.WriteFile(filepath.Join(cfg.GetAbsWorkDir(), "local.txt"), []byte("7.7.7.7"), 0644); err != nil {
		t.Fatalf("Failed to seed list: %v", err)
	}
	fetcher := &fakeFetcher{files: sampleFiles}
	p := newTestPipeline(t, cfg, nil, fetcher, nil)

	if _, err := p.Run(context.Background(), RunOptions{SkipFetch: true}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if fetcher.calls != 0 {
		t.Error("Expected no download")
	}
	if got := readOutput(t, cfg); got != "7.7.7.7" {
		t.Errorf("Unexpected output %q", got)
	}
}

func TestRun_Cleanup(t *testing.T) {
	cfg := testConfig(t)
	cfg.General.Cleanup = true
	p := newTestPipeline(t, cfg, nil, &fakeFetcher{files: sampleFiles}, nil)

	if _, err := p.Run(context.Background(), RunOptions{}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	workDir := cfg.GetAbsWorkDir()
	for _, name := range []string{cfg.General.ArchiveName, "a.txt", "b.txt"} {
		if _, err := os.Stat(filepath.Join(workDir, name)); !os.IsNotExist(err) {
			t.Errorf("Expected %s to be removed", name)
		}
	}
	if _, err := os.Stat(cfg.GetOutputPath()); err != nil {
		t.Errorf("Expected output to be kept: %v", err)
	}
}

func TestRun_NoCleanupByDefault(t *testing.T) {
	cfg := testConfig(t)
	p := newTestPipeline(t, cfg, nil, &fakeFetcher{files: sampleFiles}, nil)

	if _, err := p.Run(context.Background(), RunOptions{}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.GetAbsWorkDir(), "a.txt")); err != nil {
		t.Errorf("Expected extracted files to stay: %v", err)
	}
}

func TestRun_WritesMetricsTextfile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Textfile = filepath.Join(t.TempDir(), "ipmerge.prom")
	p := newTestPipeline(t, cfg, nil, &fakeFetcher{files: sampleFiles}, nil)

	if _, err := p.Run(context.Background(), RunOptions{}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	content, err := os.ReadFile(cfg.Metrics.Textfile)
	if err != nil {
		t.Fatalf("Expected metrics textfile: %v", err)
	}
	for _, line := range []string{"ipmerge_addresses_collected 4", "ipmerge_addresses_excluded 1", "ipmerge_addresses_published 3"} {
		if !strings.Contains(string(content), line) {
			t.Errorf("Expected %q in metrics, got:\n%s", line, content)
		}
	}
}

func TestNew_InvalidRange(t *testing.T) {
	cfg := testConfig(t)
	cfg.Filter.ExcludeCIDRs = []string{"not-a-cidr"}

	_, err := New(cfg, nil, WithFetcher(&fakeFetcher{}))
	if !errors.HasCode(err, errors.ErrCodeFilter) {
		t.Errorf("Expected filter error, got %v", err)
	}
}

func TestRenderMessage(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		t.Fatalf("Failed to load location: %v", err)
	}
	at := fixedClock().In(loc)

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "default",
			template: config.DefaultMessageTemplate,
			want:     "Update dir/proxy.txt - 2024-01-02 08:04:05 (Total IPs: 42)",
		},
		{
			name:     "no tags",
			template: "static message",
			want:     "static message",
		},
		{
			name:     "unknown tag",
			template: "{{count}} {{unknown}}",
			want:     "42 ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderMessage(tt.template, "dir/proxy.txt", at, 42)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRenderMessage_Unterminated(t *testing.T) {
	_, err := RenderMessage("Update {{path", "p", fixedClock(), 1)
	if !errors.HasCode(err, errors.ErrCodeConfig) {
		t.Errorf("Expected config error, got %v", err)
	}
}
