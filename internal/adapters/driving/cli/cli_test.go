package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexsearch-cli/internal/core/domain"
)

// --- Mock implementations ---

type mockIngestService struct {
	report *domain.IngestReport
	err    error
}

func (m *mockIngestService) Ingest(_ context.Context, _, filename string) (*domain.IngestReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.report != nil {
		return m.report, nil
	}
	return &domain.IngestReport{
		Document:   domain.Document{Name: "Test Document", Filename: filename},
		ChunkCount: 3,
	}, nil
}

type mockSearchService struct {
	results []domain.SearchResult
	err     error
}

func (m *mockSearchService) Search(_ context.Context, _ string, _ domain.SearchOptions) ([]domain.SearchResult, error) {
	return m.results, m.err
}

type mockAdminService struct {
	stats     domain.IndexStats
	deleteErr error
}

func (m *mockAdminService) DeleteByDocument(_ context.Context, _ string) error {
	return m.deleteErr
}

func (m *mockAdminService) Stats(_ context.Context) (domain.IndexStats, error) {
	return m.stats, nil
}

// --- Test helpers ---

// setupTestServices injects mock services and returns a cleanup func.
func setupTestServices(search *mockSearchService, admin *mockAdminService) func() {
	ingestService = &mockIngestService{}
	searchService = search
	adminService = admin
	return func() {
		ingestService = nil
		searchService = nil
		adminService = nil
	}
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

// --- Tests ---

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, err := executeCommand(t, "version")

	assert.NoError(t, err)
	assert.Contains(t, out, "lexsearch version test-version-1.0.0")
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	cleanup := setupTestServices(&mockSearchService{}, &mockAdminService{})
	defer cleanup()

	_, err := executeCommand(t, "search")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_Flags(t *testing.T) {
	flag := searchCmd.Flags().Lookup("top-k")
	require.NotNil(t, flag, "top-k flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "5", flag.DefValue)

	assert.NotNil(t, searchCmd.Flags().Lookup("doc-type"))
	assert.NotNil(t, searchCmd.Flags().Lookup("status"))
	assert.NotNil(t, searchCmd.Flags().Lookup("json"))
}

func TestSearchCmd_TableOutput(t *testing.T) {
	results := []domain.SearchResult{
		{
			ID:   "law_art1_c0_p0_1",
			Text: "This Law regulates enterprises.",
			Metadata: domain.ChunkMetadata{
				DocName: "Law on Enterprises",
				Article: "Article 1",
			},
			Distance: 0.12,
		},
		{
			ID:   "law_art7_c1_pa_4",
			Text: "Freedom to conduct business.",
			Metadata: domain.ChunkMetadata{
				DocName: "Law on Enterprises",
				Article: "Article 7",
				Clause:  "1",
				Point:   "a",
			},
			Distance: 0.34,
		},
	}
	cleanup := setupTestServices(&mockSearchService{results: results}, &mockAdminService{})
	defer cleanup()

	out, err := executeCommand(t, "search", "enterprise rights")

	require.NoError(t, err)
	assert.Contains(t, out, "[1] Law on Enterprises, Article 1 (0.1200)")
	assert.Contains(t, out, "[2] Law on Enterprises, Article 7, Clause 1, Point a (0.3400)")
	assert.Contains(t, out, "This Law regulates enterprises.")
}

func TestSearchCmd_NoResults(t *testing.T) {
	cleanup := setupTestServices(&mockSearchService{}, &mockAdminService{})
	defer cleanup()

	out, err := executeCommand(t, "search", "nothing matches")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	results := []domain.SearchResult{
		{ID: "law_art1_c0_p0_1", Text: "Scope.", Distance: 0.5},
	}
	cleanup := setupTestServices(&mockSearchService{results: results}, &mockAdminService{})
	defer cleanup()

	out, err := executeCommand(t, "search", "scope", "--json")
	defer searchCmd.Flags().Set("json", "false") //nolint:errcheck

	require.NoError(t, err)
	assert.Contains(t, out, `"law_art1_c0_p0_1"`)
}

func TestDeleteCmd_Executes(t *testing.T) {
	cleanup := setupTestServices(&mockSearchService{}, &mockAdminService{})
	defer cleanup()

	out, err := executeCommand(t, "delete", "Law on Enterprises")

	require.NoError(t, err)
	assert.Contains(t, out, `Deleted "Law on Enterprises"`)
}

func TestStatsCmd_Executes(t *testing.T) {
	admin := &mockAdminService{
		stats: domain.IndexStats{
			TotalChunks: 42,
			Documents: []domain.Document{
				{Name: "Law on Enterprises", Type: domain.TypeLaw, Status: domain.StatusActive, ChunkCount: 42},
			},
		},
	}
	cleanup := setupTestServices(&mockSearchService{}, admin)
	defer cleanup()

	out, err := executeCommand(t, "stats")

	require.NoError(t, err)
	assert.Contains(t, out, "Total chunks: 42")
	assert.Contains(t, out, "Law on Enterprises")
}

func TestLocationOf(t *testing.T) {
	assert.Equal(t, "preamble", locationOf(domain.ChunkMetadata{}))
	assert.Equal(t, "Article 1", locationOf(domain.ChunkMetadata{Article: "Article 1"}))
	assert.Equal(t, "Article 7, Clause 2, Point b", locationOf(domain.ChunkMetadata{
		Article: "Article 7", Clause: "2", Point: "b",
	}))
}

func TestSnippetOf(t *testing.T) {
	assert.Equal(t, "short text", snippetOf("short \n  text"))

	long := snippetOf("word " + strings.Repeat("x", 500))
	assert.LessOrEqual(t, len([]rune(long)), snippetMaxRunes+3)
	assert.True(t, strings.HasSuffix(long, "..."))
}
