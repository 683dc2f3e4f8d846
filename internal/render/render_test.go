package render

import (
	"html"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"
)

func render(t *testing.T, r *Renderer, md string) string {
	t.Helper()
	out, err := r.Render([]byte(md))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return out
}

func assertContains(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestHeadingsGetAnchorLinks(t *testing.T) {
	out := render(t, New(), "## Hello, World!\n")
	assertContains(t, out,
		`<h2>`,
		`href="#hello-world"`,
		`id="hello-world"`,
		`class="header-link"`,
		`>Hello, World!</a></h2>`,
	)
	if strings.Contains(out, "rel=") {
		t.Errorf("heading anchor must not carry rel: %s", out)
	}
}

func TestDuplicateHeadingIDs(t *testing.T) {
	out := render(t, New(), "# Scope\n\n## Scope\n\n### Scope\n")
	assertContains(t, out, `id="scope"`, `id="scope-1"`, `id="scope-2"`)
}

func TestHeadingIDsResetPerDocument(t *testing.T) {
	r := New()
	_ = render(t, r, "# Scope\n")
	out := render(t, r, "# Scope\n")
	if strings.Contains(out, "scope-1") {
		t.Errorf("ids leaked across documents: %s", out)
	}
}

func TestLinksOpenInNewTab(t *testing.T) {
	out := render(t, New(), "See [docs](https://example.com/a \"Docs\").\n")
	assertContains(t, out,
		`href="https://example.com/a"`,
		`target="_blank"`,
		`rel="noopener noreferrer"`,
		`class="underline"`,
		`title="Docs"`,
		`>docs</a>`,
	)
	if strings.Contains(out, "nofollow") {
		t.Errorf("links must not be nofollow: %s", out)
	}
}

func TestFeedVariantOmitsLinkClass(t *testing.T) {
	out := render(t, New(WithLinkClass("")), "[docs](https://example.com)\n")
	assertContains(t, out, `target="_blank"`, `rel="noopener noreferrer"`)
	if strings.Contains(out, "underline") {
		t.Errorf("feed variant must not carry a link class: %s", out)
	}
	if strings.Contains(out, "nofollow") {
		t.Errorf("feed links must not be nofollow: %s", out)
	}
}

func TestAutoLinks(t *testing.T) {
	out := render(t, New(), "Visit https://example.com or <me@example.com>.\n")
	assertContains(t, out,
		`href="https://example.com"`,
		`href="mailto:me@example.com"`,
		`>me@example.com</a>`,
	)
}

func TestDangerousLinkDropped(t *testing.T) {
	out := render(t, New(), "[x](javascript:alert(1))\n")
	if strings.Contains(out, "javascript:") {
		t.Errorf("dangerous URL kept: %s", out)
	}
}

func TestTaskListItems(t *testing.T) {
	out := render(t, New(), "- [x] done\n- [ ] todo\n- plain\n")
	assertContains(t, out,
		`<li class="reset"><span class="check">`,
		`type="checkbox"`,
		`checked`,
		`done</span></li>`,
		`todo</span></li>`,
		`<li>plain</li>`,
	)
	if n := strings.Count(out, "<input"); n != 2 {
		t.Errorf("checkbox count = %d, want 2\n%s", n, out)
	}
	if n := strings.Count(out, "checked"); n != 1 {
		t.Errorf("checked count = %d, want 1\n%s", n, out)
	}
}

func TestCodeBlockLinesAndHighlight(t *testing.T) {
	md := "```go highlight=2\nfunc a() {}\nfunc b() {}\nfunc c() {}\n```\n"
	out := render(t, New(), md)
	assertContains(t, out, `<pre><code class="language-go">`, `</code></pre>`)
	if n := strings.Count(out, `class="token-line`); n != 3 {
		t.Errorf("line divs = %d, want 3\n%s", n, out)
	}
	if n := strings.Count(out, "highlight-line"); n != 1 {
		t.Errorf("highlighted = %d, want 1\n%s", n, out)
	}
}

func TestCodeBlockIsFormatted(t *testing.T) {
	md := "```json\n{\"a\":1}\n```\n"
	out := render(t, New(), md)
	if n := strings.Count(out, `class="token-line`); n != 3 {
		t.Errorf("formatted JSON should span 3 lines, got %d\n%s", n, out)
	}
}

func TestRawCodeBlockSkipsFormatting(t *testing.T) {
	md := "```json raw\n{\"a\":1}\n```\n"
	out := render(t, New(), md)
	if n := strings.Count(out, `class="token-line`); n != 1 {
		t.Errorf("raw block should keep 1 line, got %d\n%s", n, out)
	}
}

var (
	lineDiv = regexp.MustCompile(`(?s)<div class="token-line[^"]*">(.*?)</div>`)
	anyTag  = regexp.MustCompile(`<[^>]+>`)
)

// codeLines returns the text of each rendered code line and whether it is
// highlighted.
func codeLines(out string) ([]string, []bool) {
	var texts []string
	var marked []bool
	for _, m := range lineDiv.FindAllStringSubmatch(out, -1) {
		text := html.UnescapeString(anyTag.ReplaceAllString(m[1], ""))
		if text == "\n" {
			text = ""
		}
		texts = append(texts, text)
		marked = append(marked, strings.Contains(m[0], "highlight-line"))
	}
	return texts, marked
}

func TestRawCodeBlockIsByteIdentical(t *testing.T) {
	code := "const  x = {\"a\":1};\n  if (x) { y(\"<b>\") };\nlet z = 'q'"
	out := render(t, New(), "```js raw\n"+code+"\n```\n")
	lines, _ := codeLines(out)
	if got := strings.Join(lines, "\n"); got != code {
		t.Errorf("raw block changed:\n got %q\nwant %q", got, code)
	}
}

func TestHighlightedLinesSurviveFormatting(t *testing.T) {
	md := "```js highlight=1,3-4\nconst a = \"x\";\nconst b = 2;\nconst c = 3;\nconst d = 4;\nconst e = 5;\n```\n"
	out := render(t, New(), md)
	lines, marked := codeLines(out)
	if len(lines) != 5 {
		t.Fatalf("lines = %d, want 5\n%s", len(lines), out)
	}
	want := []bool{true, false, true, true, false}
	for i := range want {
		if marked[i] != want[i] {
			t.Errorf("line %d highlighted = %t, want %t", i+1, marked[i], want[i])
		}
	}
	if lines[0] != "const a = 'x'" {
		t.Errorf("line 1 = %q, want reformatted", lines[0])
	}
}

type fallbackCounter struct {
	mu    sync.Mutex
	langs []string
}

func (f *fallbackCounter) IncDocument(string, string)          {}
func (f *fallbackCounter) ObserveRenderDuration(time.Duration) {}
func (f *fallbackCounter) IncFeedBuild(string)                 {}
func (f *fallbackCounter) IncFormatFallback(lang string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.langs = append(f.langs, lang)
}

func TestFormatterFailureFallsBack(t *testing.T) {
	rec := &fallbackCounter{}
	md := "```go\nfunc {\n```\n\n```python\nx = 1\n```\n"
	out := render(t, New(WithRecorder(rec)), md)
	assertContains(t, out, `language-go`, `func`, `language-python`)
	if len(rec.langs) != 1 || rec.langs[0] != "go" {
		t.Errorf("fallbacks = %v, want [go]", rec.langs)
	}
}

func TestCodeBlockWithoutLanguage(t *testing.T) {
	out := render(t, New(), "```\n<b>x</b>\n```\n")
	assertContains(t, out, "<pre><code>", "&lt;b&gt;x&lt;/b&gt;")
	if strings.Contains(out, "token-line") {
		t.Errorf("plain block must not be tokenized: %s", out)
	}
}

func TestRawHTMLIsStripped(t *testing.T) {
	out := render(t, New(), "hi <script>alert(1)</script>\n\n<div onclick=\"x()\">y</div>\n")
	if strings.Contains(out, "<script") || strings.Contains(out, "onclick") {
		t.Errorf("unsafe markup survived: %s", out)
	}
}

func TestTablesAndStrikethrough(t *testing.T) {
	out := render(t, New(), "| a | b |\n|:--|--:|\n| 1 | 2 |\n\n~~gone~~\n")
	assertContains(t, out, "<table>", "<th", "<td", "<del>gone</del>")
}

func TestHardLineBreaks(t *testing.T) {
	out := render(t, New(), "one\ntwo\n")
	if !strings.Contains(out, "<br") {
		t.Errorf("expected hard break: %s", out)
	}
}

func TestRenderConcurrent(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := r.Render([]byte("# Title\n\n```js\nconst a = \"b\";\n```\n"))
			if err != nil || !strings.Contains(out, `id="title"`) {
				t.Errorf("concurrent render: %v %s", err, out)
			}
		}()
	}
	wg.Wait()
}
