package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mediacredit "github.com/goliatone/go-media-credit"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(strings.NewReader(stdin), &out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestUpdateFromFile(t *testing.T) {
	out, err := run(t, "", "update",
		"--attachment-id", "88",
		"--attachment-url", "https://cdn.example.com/uploads/2023/05/pier.jpg",
		"--author-id", "6",
		"--link", "https://photos.example.com",
		"--nofollow",
		"testdata/post.html",
	)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	want := `[media-credit id=6 align="alignleft" width="640" link="https://photos.example.com" nofollow="1"]`
	if !strings.Contains(out, want) {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if !strings.HasPrefix(out, "<p>Before</p>") || !strings.HasSuffix(out, "<p>After</p>") {
		t.Fatalf("surrounding content changed:\n%s", out)
	}
}

func TestUpdateFromStdinLeavesOtherImagesAlone(t *testing.T) {
	raw, err := os.ReadFile("testdata/post.html")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	out, err := run(t, string(raw), "update",
		"--attachment-id", "89",
		"--attachment-url", "https://cdn.example.com/uploads/2023/05/pier.jpg",
		"--freeform", "Nobody",
		"-",
	)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if out != string(raw) {
		t.Fatalf("content should be unchanged for a different attachment:\n%s", out)
	}
}

func TestUpdateRequiresCredit(t *testing.T) {
	_, err := run(t, "x", "update", "--attachment-id", "88", "--attachment-url", "https://cdn.example.com/a.jpg")
	if err == nil || !strings.Contains(err.Error(), "--author-id or --freeform") {
		t.Fatalf("expected missing credit error, got %v", err)
	}
}

func TestUpdateRejectsBadLink(t *testing.T) {
	_, err := run(t, "x", "update", "--attachment-id", "88", "--attachment-url", "https://cdn.example.com/a.jpg",
		"--freeform", "A", "--link", "javascript:alert(1)")
	if err == nil {
		t.Fatal("expected link scheme error")
	}
}

func TestUpdateFlagsMutuallyExclusive(t *testing.T) {
	_, err := run(t, "x", "update", "--attachment-id", "88", "--attachment-url", "https://cdn.example.com/a.jpg",
		"--freeform", "A", "--author-id", "2")
	if err == nil {
		t.Fatal("expected mutually exclusive flag error")
	}
}

func TestRenderWithAuthorsAndConfig(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "media-credit.toml")
	if err := os.WriteFile(config, []byte("[credits]\norganization = \"Harbor Times\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	content := `[media-credit id=6 align="alignleft"]<img src="/pier.jpg" class="wp-image-88">[/media-credit]`
	out, err := run(t, content, "render", "--config", config, "--author", "6=Mara Lind|https://mara.example.com")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `<span class="media-credit"><a href="https://mara.example.com">Mara Lind</a> | Harbor Times</span>`
	if !strings.Contains(out, want) {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if !strings.HasPrefix(out, `<figure class="media-credit-container alignleft">`) {
		t.Fatalf("expected credit figure, got:\n%s", out)
	}
}

func TestRenderRejectsMalformedAuthor(t *testing.T) {
	_, err := run(t, "x", "render", "--author", "mara")
	if err == nil {
		t.Fatal("expected author parse error")
	}
}

func TestRenderFailsWhenDisabled(t *testing.T) {
	original := moduleBuilder
	defer func() { moduleBuilder = original }()
	moduleBuilder = func(string) (*mediacredit.Module, error) {
		cfg := mediacredit.DefaultConfig()
		cfg.Features.Rendering = false
		return mediacredit.New(cfg)
	}

	if _, err := run(t, "x", "render"); err == nil {
		t.Fatal("expected disabled rendering error")
	}
}

func TestParseAuthor(t *testing.T) {
	input, err := parseAuthor(" 12 = Ada Lane | https://ada.example.com ")
	if err != nil {
		t.Fatalf("parseAuthor: %v", err)
	}
	if input.AuthorID != 12 || input.DisplayName != "Ada Lane" || input.URL != "https://ada.example.com" {
		t.Fatalf("unexpected input: %+v", input)
	}
	if _, err := parseAuthor("0=Nobody"); err == nil {
		t.Fatal("expected error for zero id")
	}
}
