package extract

import (
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mwiater/mdextract/internal/layout"
	"github.com/mwiater/mdextract/internal/logging"
	"github.com/spf13/afero"
)

const scraperDoc = "# Jewelry scraper rewrite\n\n" +
	"Some requirements prose.\n\n" +
	"# scraper/spiders/rings.py\n\n" +
	"```python\n" +
	"import scrapy\n\n" +
	"class RingsSpider(scrapy.Spider):\n" +
	"    name = \"rings\"\n" +
	"```\n\n" +
	"## `settings.yaml`\n\n" +
	"```yaml\n" +
	"concurrency: 4\n" +
	"```\n\n" +
	"Closing notes, then an unnamed block:\n\n" +
	"````markdown\n" +
	"```js\n" +
	"console.log('nested')\n" +
	"```\n" +
	"````\n"

func newTestExtractor(t *testing.T, fs afero.Fs, opts Options) *Extractor {
	t.Helper()
	logging.SetOutput(&strings.Builder{})
	t.Cleanup(func() { logging.SetOutput(nil) })

	router, err := layout.NewRouter(layout.DefaultPatterns(), false)
	if err != nil {
		t.Fatalf("NewRouter error: %v", err)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "scraper"
	}
	return New(fs, router, opts)
}

func writeFiles(t *testing.T, fs afero.Fs, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := fs.MkdirAll(filepath.Dir(name), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", name, err)
		}
		if err := afero.WriteFile(fs, name, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestRunWritesEveryBlockVerbatim(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{"docs/rewrite.md": scraperDoc})
	ex := newTestExtractor(t, fs, Options{})

	plan, report, err := ex.Run([]string{"docs"})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	want := map[string]string{
		filepath.Join("scraper", "backend", "scraper", "spiders", "rings.py"): "import scrapy\n\nclass RingsSpider(scrapy.Spider):\n    name = \"rings\"\n",
		filepath.Join("scraper", "config", "settings.yaml"):                  "concurrency: 4\n",
		filepath.Join("scraper", "docs", "rewrite-003.md"):                   "```js\nconsole.log('nested')\n```\n",
	}
	if len(plan.Items) != len(want) || len(report.Written) != len(want) {
		t.Fatalf("expected %d blocks written, got plan=%d written=%d", len(want), len(plan.Items), len(report.Written))
	}
	for path, content := range want {
		got, err := afero.ReadFile(fs, path)
		if err != nil {
			t.Fatalf("expected %s to exist: %v", path, err)
		}
		if string(got) != content {
			t.Fatalf("%s content mismatch:\nwant %q\ngot  %q", path, content, got)
		}
	}
}

func TestRunIsIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{"rewrite.md": scraperDoc})
	ex := newTestExtractor(t, fs, Options{})

	_, first, err := ex.Run([]string{"rewrite.md"})
	if err != nil {
		t.Fatalf("first Run error: %v", err)
	}
	snapshot := readAll(t, fs, first.Written)

	_, second, err := ex.Run([]string{"rewrite.md"})
	if err != nil {
		t.Fatalf("second Run error: %v", err)
	}
	if len(second.Written) != 0 {
		t.Fatalf("expected no rewrites on second run, got %v", second.Written)
	}
	if diff := cmp.Diff(first.Written, second.Unchanged); diff != "" {
		t.Fatalf("second run should report every file unchanged (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(snapshot, readAll(t, fs, second.Unchanged)); diff != "" {
		t.Fatalf("outputs changed between runs (-first +second):\n%s", diff)
	}

	forced := newTestExtractor(t, fs, Options{Force: true})
	_, third, err := forced.Run([]string{"rewrite.md"})
	if err != nil {
		t.Fatalf("forced Run error: %v", err)
	}
	if len(third.Written) != len(first.Written) {
		t.Fatalf("expected force to rewrite %d files, got %d", len(first.Written), len(third.Written))
	}
}

func readAll(t *testing.T, fs afero.Fs, paths []string) map[string]string {
	t.Helper()
	out := make(map[string]string, len(paths))
	for _, p := range paths {
		data, err := afero.ReadFile(fs, p)
		if err != nil {
			t.Fatalf("read %s: %v", p, err)
		}
		out[p] = string(data)
	}
	return out
}

func TestRunWithoutBlocksWritesNothing(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{"notes.md": "# Notes\n\nNo code here.\n"})
	ex := newTestExtractor(t, fs, Options{})

	plan, report, err := ex.Run([]string{"notes.md"})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if plan.Documents != 1 || len(plan.Items) != 0 || len(report.Written) != 0 {
		t.Fatalf("expected no output, got plan=%+v report=%+v", plan, report)
	}
	if exists, _ := afero.DirExists(fs, "scraper"); exists {
		t.Fatalf("output directory should not be created when there is nothing to write")
	}
}

func TestRunMissingInput(t *testing.T) {
	ex := newTestExtractor(t, afero.NewMemMapFs(), Options{})
	if _, _, err := ex.Run([]string{"missing.md"}); err == nil {
		t.Fatal("expected error for missing input")
	}
}

func TestRunInvalidUTF8(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{"bad.md": "```\n\xff\n```\n"})
	ex := newTestExtractor(t, fs, Options{})
	if _, _, err := ex.Run([]string{"bad.md"}); err == nil {
		t.Fatal("expected error for invalid UTF-8 input")
	}
}

func TestRunSkipsMalformedFence(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{"doc.md": "```go\npackage a\n```\n\n```python\nprint('never closed')\n"})
	ex := newTestExtractor(t, fs, Options{})

	plan, report, err := ex.Run([]string{"doc.md"})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(report.Written) != 1 || report.Malformed != 1 {
		t.Fatalf("expected 1 written and 1 malformed, got %+v", report)
	}
	if plan.Malformed[0].Line != 5 {
		t.Fatalf("expected malformed fence on line 5, got %+v", plan.Malformed[0])
	}
}

func TestPlanAfterUnclosedFenceUsesGeneratedName(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{"doc.md": "````python\nx\n# app.py\n```go\npackage a\n```\n"})
	ex := newTestExtractor(t, fs, Options{})

	plan, err := ex.Plan([]string{"doc.md"})
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if len(plan.Items) != 1 || len(plan.Malformed) != 1 {
		t.Fatalf("expected 1 block and 1 malformed fence, got %d and %d", len(plan.Items), len(plan.Malformed))
	}
	if got := plan.Items[0].Target.Path; got != "backend/doc-001.go" {
		t.Fatalf("expected generated name, got %s", got)
	}
}

func TestPlanFrontMatter(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"in/a.md": "---\noutput: spiders\n---\n# rings.py\n```python\nx = 1\n```\n",
		"in/b.md": "---\nextract: false\n---\n```python\ny = 2\n```\n",
	})
	ex := newTestExtractor(t, fs, Options{})

	plan, err := ex.Plan([]string{"in"})
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if len(plan.Items) != 1 || len(plan.Skipped) != 1 {
		t.Fatalf("expected 1 item and 1 skipped doc, got %+v", plan)
	}
	item := plan.Items[0]
	if item.Target.Path != "spiders/backend/rings.py" {
		t.Fatalf("expected front matter output prefix, got %s", item.Target.Path)
	}
	if item.Block.StartLine != 5 || item.Block.EndLine != 7 {
		t.Fatalf("expected source lines 5-7, got %d-%d", item.Block.StartLine, item.Block.EndLine)
	}
}

func TestPlanResolvesNameCollisions(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"a.md": "# main.py\n```python\na\n```\n",
		"b.md": "# main.py\n```python\nb\n```\n# MAIN.py\n```python\nc\n```\n",
	})
	ex := newTestExtractor(t, fs, Options{})

	plan, err := ex.Plan([]string{"a.md", "b.md"})
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	var got []string
	for _, item := range plan.Items {
		got = append(got, item.Target.Path)
	}
	want := []string{"backend/main.py", "backend/main-2.py", "backend/MAIN-3.py"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("collision handling mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanHeadingOnlyAppliesToNextBlock(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{"doc.md": "# app.py\n```python\none\n```\n```python\ntwo\n```\n"})
	ex := newTestExtractor(t, fs, Options{})

	plan, err := ex.Plan([]string{"doc.md"})
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if plan.Items[0].Target.Path != "backend/app.py" || plan.Items[1].Target.Path != "backend/doc-002.py" {
		t.Fatalf("unexpected targets: %s, %s", plan.Items[0].Target.Path, plan.Items[1].Target.Path)
	}
}

func TestDiscover(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"repo/README.md":             "x",
		"repo/docs/guide.markdown":   "x",
		"repo/docs/image.png":        "x",
		"repo/.github/template.md":   "x",
		"repo/scraper/docs/again.md": "x",
		"repo/drafts/wip.md":         "x",
		"repo/notes.txt":             "x",
	})
	ex := newTestExtractor(t, fs, Options{OutputDir: filepath.Join("repo", "scraper"), Exclude: []string{"drafts"}})

	got, err := ex.Discover([]string{"repo", "repo/notes.txt", "repo/README.md"})
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	sort.Strings(got)
	want := []string{
		filepath.Join("repo", "README.md"),
		filepath.Join("repo", "docs", "guide.markdown"),
		filepath.Join("repo", "notes.txt"),
	}
	sort.Strings(want)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Discover mismatch (-want +got):\n%s", diff)
	}
}

func TestPlannedPathsReserve(t *testing.T) {
	used := newPlannedPaths()
	for _, want := range []string{"a/x.go", "a/x-2.go", "a/x-3.go"} {
		if got := used.reserve("a/x.go"); got != want {
			t.Fatalf("reserve=%q want %q", got, want)
		}
	}
	if got := used.reserve("Makefile"); got != "Makefile" {
		t.Fatalf("reserve without extension=%q", got)
	}

	// A file may not be used as a directory, nor a directory as a file.
	if got := used.reserve("a/x.go/y.go"); got != "a/x-4.go/y.go" {
		t.Fatalf("reserve under planned file=%q", got)
	}
	if got := used.reserve("A"); got != "A-2" {
		t.Fatalf("reserve over planned directory=%q", got)
	}
}

func TestRunFileAndDirectoryNamesDoNotClash(t *testing.T) {
	dir := t.TempDir()
	fs := afero.NewBasePathFs(afero.NewOsFs(), dir)
	writeFiles(t, fs, map[string]string{
		"doc.md": "# a.py\n```python\none\n```\n# a.py/b.py\n```python\ntwo\n```\n",
	})
	ex := newTestExtractor(t, fs, Options{})

	_, rep, err := ex.Run([]string{"doc.md"})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	want := []string{
		filepath.Join("scraper", "backend", "a.py"),
		filepath.Join("scraper", "backend", "a-2.py", "b.py"),
	}
	if diff := cmp.Diff(want, rep.Written); diff != "" {
		t.Fatalf("written mismatch (-want +got):\n%s", diff)
	}
}
