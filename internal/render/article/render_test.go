package article

import (
	"strings"
	"testing"
)

func TestContentLines_ParagraphsAndBreaks(t *testing.T) {
	lines := ContentLines("<p>first block</p><p>second<br>third</p>", 80)
	want := []string{"first block", "", "second", "third"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %v", len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestContentLines_WrapsToWidth(t *testing.T) {
	lines := ContentLines("<p>one two three four five six</p>", 10)
	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %v", lines)
	}
	for _, line := range lines {
		if len(line) > 10 {
			t.Fatalf("line %q exceeds width", line)
		}
	}
}

func TestContentLines_HardSplitsLongWords(t *testing.T) {
	long := strings.Repeat("x", 25)
	lines := ContentLines("<p>"+long+"</p>", 10)
	if len(lines) != 3 {
		t.Fatalf("expected 3 chunks, got %v", lines)
	}
	if lines[0] != strings.Repeat("x", 10) || lines[2] != strings.Repeat("x", 5) {
		t.Fatalf("bad split: %v", lines)
	}
}

func TestContentLines_ListsAndCode(t *testing.T) {
	lines := ContentLines("<ul><li>alpha</li><li>beta</li></ul><p>run <code>go vet</code></p>", 80)
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "- alpha") || !strings.Contains(joined, "- beta") {
		t.Fatalf("list items missing: %v", lines)
	}
	if !strings.Contains(joined, "[go vet]") {
		t.Fatalf("inline code missing: %v", lines)
	}
}

func TestContentLines_SkipsScriptKeepsImageAlt(t *testing.T) {
	lines := ContentLines(`<p>before</p><script>alert(1)</script><img src="x.png" alt="chart">`, 80)
	joined := strings.Join(lines, "\n")
	if strings.Contains(joined, "alert") {
		t.Fatalf("script leaked into output: %v", lines)
	}
	if !strings.Contains(joined, "[image: chart]") {
		t.Fatalf("image alt missing: %v", lines)
	}
}

func TestContentLines_CollapsesBlankRuns(t *testing.T) {
	lines := ContentLines("<p>a</p><p></p><p></p><p>b</p>", 80)
	for i := 1; i < len(lines); i++ {
		if lines[i] == "" && lines[i-1] == "" {
			t.Fatalf("consecutive blank lines: %v", lines)
		}
	}
	if len(lines) == 0 || lines[len(lines)-1] == "" {
		t.Fatalf("trailing blank line: %v", lines)
	}
}

func TestContentLines_PlainTextPassesThrough(t *testing.T) {
	lines := ContentLines("no markup here", 80)
	if len(lines) != 1 || lines[0] != "no markup here" {
		t.Fatalf("expected passthrough, got %v", lines)
	}
}

func TestContentLines_Empty(t *testing.T) {
	if lines := ContentLines("   ", 80); lines != nil {
		t.Fatalf("expected nil for blank input, got %v", lines)
	}
}

func TestText_JoinsUnwrapped(t *testing.T) {
	got := Text("<p>hello world</p>")
	if got != "hello world" {
		t.Fatalf("expected %q, got %q", "hello world", got)
	}
}

func TestExtractLinks_AnchorsImagesAndBareURLs(t *testing.T) {
	raw := `<p><a href="https://example.com/page">link</a>
<img src="https://example.com/pic.png" alt="">
see https://example.com/bare for more</p>`

	links := ExtractLinks(raw)
	if len(links) != 3 {
		t.Fatalf("expected 3 links, got %v", links)
	}
	if links[0].URL != "https://example.com/page" || links[0].Kind != LinkURL {
		t.Fatalf("anchor first: %v", links)
	}
	if links[1].URL != "https://example.com/pic.png" || links[1].Kind != LinkImage {
		t.Fatalf("image second: %v", links)
	}
	if links[2].URL != "https://example.com/bare" || links[2].Kind != LinkURL {
		t.Fatalf("bare url third: %v", links)
	}
}

func TestExtractLinks_Deduplicates(t *testing.T) {
	raw := `<a href="https://example.com/x">one</a> <a href="https://example.com/x">two</a> https://example.com/x`
	links := ExtractLinks(raw)
	if len(links) != 1 {
		t.Fatalf("expected 1 deduplicated link, got %v", links)
	}
}

func TestExtractLinks_SkipsNonHTTPBareURLs(t *testing.T) {
	links := ExtractLinks("<p>mail me at mailto:a@example.com or ftp://example.com/f</p>")
	if len(links) != 0 {
		t.Fatalf("expected no links, got %v", links)
	}
}

func TestLinkKindString(t *testing.T) {
	if LinkURL.String() != "u" || LinkImage.String() != "i" {
		t.Fatal("unexpected kind labels")
	}
}
