package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/lexicon/internal/models"
	"github.com/starford/lexicon/internal/render"
	"github.com/starford/lexicon/internal/repository"
	"github.com/starford/lexicon/internal/termservice"
	"github.com/starford/lexicon/internal/testutil"
)

func testServer(t *testing.T) (*Server, string) {
	t.Helper()

	root, store := testutil.TestCorpus(t)
	repo := repository.New(store, repository.WithLanguages(models.Language{Code: "es", Name: "Spanish"}))
	svc := termservice.NewService(repo, render.New())
	return New(svc, repo, "test"), root
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_terms":
		result, err = srv.listTerms(ctx, req)
	case "read_term":
		result, err = srv.readTerm(ctx, req)
	case "get_neighbors":
		result, err = srv.getNeighbors(ctx, req)
	case "get_languages":
		result, err = srv.getLanguages(ctx, req)
	case "check_corpus":
		result, err = srv.checkCorpus(ctx, req)
	case "get_term_contract":
		result, err = srv.getTermContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func seed(t *testing.T, root string) {
	t.Helper()
	testutil.WriteDoc(t, root, "", "a.md", testutil.Doc{Slug: "alpha", Title: "Alpha", Date: "2021-01-01", Body: "First **term**."})
	testutil.WriteDoc(t, root, "", "b.md", testutil.Doc{Slug: "beta", Title: "Beta", Date: "2021-03-01", Body: "Second."})
	testutil.WriteDoc(t, root, "es", "a.md", testutil.Doc{Slug: "alpha", Title: "Alfa", Date: "2021-01-01"})
}

func TestListTerms(t *testing.T) {
	srv, root := testServer(t)
	seed(t, root)

	r := callTool(t, srv, "list_terms", map[string]interface{}{"limit": float64(1)})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	var list termservice.TermList
	if err := json.Unmarshal([]byte(resultText(r)), &list); err != nil {
		t.Fatal(err)
	}
	if list.Total != 2 || len(list.Terms) != 1 || list.Terms[0].Slug != "beta" {
		t.Errorf("list = %+v", list)
	}
}

func TestListTermsUnknownLanguage(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "list_terms", map[string]interface{}{"lang": "fr"})
	if !r.IsError {
		t.Fatal("expected error for unknown language")
	}
}

func TestListTermsNegativeLimit(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "list_terms", map[string]interface{}{"limit": float64(-1)})
	if !r.IsError {
		t.Fatal("expected error for negative limit")
	}
}

func TestReadTermMarkdown(t *testing.T) {
	srv, root := testServer(t)
	seed(t, root)

	r := callTool(t, srv, "read_term", map[string]interface{}{"slug": "alpha"})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	var src termSource
	if err := json.Unmarshal([]byte(resultText(r)), &src); err != nil {
		t.Fatal(err)
	}
	if src.Title != "Alpha" || src.Body != "First **term**." || src.Date == nil {
		t.Errorf("source = %+v", src)
	}
}

func TestReadTermHTML(t *testing.T) {
	srv, root := testServer(t)
	seed(t, root)

	r := callTool(t, srv, "read_term", map[string]interface{}{"slug": "alpha", "format": "html"})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	text := resultText(r)
	if !strings.Contains(text, "<strong>term</strong>") {
		t.Errorf("expected rendered html, got %s", text)
	}
}

func TestReadTermTranslation(t *testing.T) {
	srv, root := testServer(t)
	seed(t, root)

	r := callTool(t, srv, "read_term", map[string]interface{}{"slug": "alpha", "lang": "es"})
	if !strings.Contains(resultText(r), "Alfa") {
		t.Errorf("expected translated title, got %s", resultText(r))
	}
}

func TestReadTermMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_term", map[string]interface{}{"slug": "nope"})
	if !r.IsError {
		t.Fatal("expected error for missing term")
	}
}

func TestReadTermRequiresSlug(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_term", map[string]interface{}{})
	if !r.IsError {
		t.Fatal("expected error without slug")
	}
}

func TestReadTermUnknownFormat(t *testing.T) {
	srv, root := testServer(t)
	seed(t, root)
	r := callTool(t, srv, "read_term", map[string]interface{}{"slug": "alpha", "format": "pdf"})
	if !r.IsError {
		t.Fatal("expected error for unknown format")
	}
}

func TestGetNeighbors(t *testing.T) {
	srv, root := testServer(t)
	seed(t, root)

	r := callTool(t, srv, "get_neighbors", map[string]interface{}{"slug": "alpha"})
	var got map[string]*models.NavLink
	if err := json.Unmarshal([]byte(resultText(r)), &got); err != nil {
		t.Fatal(err)
	}
	if got["previous"] != nil || got["next"] == nil || got["next"].Slug != "beta" {
		t.Errorf("neighbors = %v", got)
	}
}

func TestGetLanguages(t *testing.T) {
	srv, root := testServer(t)
	seed(t, root)

	r := callTool(t, srv, "get_languages", map[string]interface{}{"slug": "beta"})
	var got []models.LanguageAvailability
	if err := json.Unmarshal([]byte(resultText(r)), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Code != "es" || got[0].Available {
		t.Errorf("languages = %+v", got)
	}
}

func TestCheckCorpus(t *testing.T) {
	srv, root := testServer(t)
	seed(t, root)

	r := callTool(t, srv, "check_corpus", nil)
	if resultText(r) != "no problems found" {
		t.Errorf("unexpected report: %s", resultText(r))
	}

	testutil.WriteFile(t, root, "broken.md", "no front-matter here")
	r = callTool(t, srv, "check_corpus", nil)
	if !strings.Contains(resultText(r), "broken.md") {
		t.Errorf("expected broken.md in report, got %s", resultText(r))
	}
}

func TestGetTermContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_term_contract", nil)
	text := resultText(r)
	if text == "" {
		t.Fatal("expected non-empty contract")
	}
	for _, want := range []string{"title", "slug", "highlight="} {
		if !strings.Contains(text, want) {
			t.Errorf("contract missing %q", want)
		}
	}
}

func TestTermFormatResource(t *testing.T) {
	srv, _ := testServer(t)
	contents, err := srv.readTermFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != TermFormatURI || tc.Text != TermFormatContract {
		t.Errorf("resource = %+v", contents[0])
	}
}
