package shortcode

import (
	"testing"
)

const creditName = "media-credit"

func TestLocateSingle(t *testing.T) {
	content := `<p>intro</p>[media-credit id=4711 align="alignleft" width="300"]<img src="/a.jpg" class="wp-image-9" />[/media-credit]<p>after</p>`

	matches := Locate(content, creditName)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	match := matches[0]
	if match.RawAttributes != ` id=4711 align="alignleft" width="300"` {
		t.Fatalf("unexpected raw attributes: %q", match.RawAttributes)
	}
	if match.Inner != `<img src="/a.jpg" class="wp-image-9" />` {
		t.Fatalf("unexpected inner: %q", match.Inner)
	}
	if content[match.Start:match.End] != match.Full {
		t.Fatalf("offsets do not cover Full")
	}
	if content[match.InnerStart:match.InnerEnd] != match.Inner {
		t.Fatalf("inner offsets do not cover Inner")
	}
}

func TestLocateOrderAndCount(t *testing.T) {
	content := `[media-credit id=1]<img class="wp-image-1">[/media-credit] text [media-credit name="B"]<img class="wp-image-2">[/media-credit]`

	matches := Locate(content, creditName)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].RawAttributes != " id=1" || matches[1].RawAttributes != ` name="B"` {
		t.Fatalf("unexpected order: %q / %q", matches[0].RawAttributes, matches[1].RawAttributes)
	}
	if matches[0].End > matches[1].Start {
		t.Fatalf("matches overlap")
	}
}

func TestLocateInsideCaption(t *testing.T) {
	content := `[caption id="attachment_9" align="alignnone" width="300"][media-credit id=2]<img class="wp-image-9">[/media-credit] Caption text[/caption]`

	credits := Locate(content, creditName)
	if len(credits) != 1 || credits[0].RawAttributes != " id=2" {
		t.Fatalf("unexpected credit matches: %#v", credits)
	}

	captions := Locate(content, "caption")
	if len(captions) != 1 {
		t.Fatalf("expected caption match, got %d", len(captions))
	}
	nested := Locate(captions[0].Inner, creditName)
	if len(nested) != 1 || nested[0].Full != credits[0].Full {
		t.Fatalf("caption inner should contain the credit")
	}
}

func TestLocateBalancesNestedSameName(t *testing.T) {
	content := `[media-credit name="outer"][media-credit name="inner"]<img>[/media-credit][/media-credit]`

	matches := Locate(content, creditName)
	if len(matches) != 1 {
		t.Fatalf("expected 1 outer match, got %d", len(matches))
	}
	if matches[0].Full != content {
		t.Fatalf("outer match should span the whole content: %q", matches[0].Full)
	}
	if matches[0].Inner != `[media-credit name="inner"]<img>[/media-credit]` {
		t.Fatalf("unexpected inner: %q", matches[0].Inner)
	}
}

func TestLocateSkips(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    int
	}{
		{
			name:    "longer tag name",
			content: `[media-credit-extra id=1]<img>[/media-credit-extra]`,
			want:    0,
		},
		{
			name:    "escaped shortcode",
			content: `[[media-credit id=1]<img>[/media-credit]] [media-credit id=2]<img>[/media-credit]`,
			want:    1,
		},
		{
			name:    "unterminated opening",
			content: `[media-credit id=1]<img> no closing tag`,
			want:    0,
		},
		{
			name:    "self closing",
			content: `[media-credit id=1 /] then [media-credit id=2]<img>[/media-credit]`,
			want:    1,
		},
		{
			name:    "quoted bracket in attribute",
			content: `[media-credit name="A ] B"]<img>[/media-credit]`,
			want:    1,
		},
		{
			name:    "apostrophe in unquoted value",
			content: `[media-credit name=O'Brien]<img>[/media-credit]`,
			want:    1,
		},
		{
			name:    "empty name",
			content: `[media-credit]x[/media-credit]`,
			want:    1,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Locate(tc.content, creditName); len(got) != tc.want {
				t.Fatalf("Locate() returned %d matches, want %d: %#v", len(got), tc.want, got)
			}
		})
	}
}

func TestLocateQuotedBracketAttributes(t *testing.T) {
	matches := Locate(`[media-credit name="A ] B"]<img>[/media-credit]`, creditName)
	if len(matches) != 1 {
		t.Fatalf("expected match")
	}
	if attrs := ParseAttributes(matches[0].RawAttributes); attrs.String() != `name="A ] B"` {
		t.Fatalf("unexpected attributes: %s", attrs.String())
	}
}

func TestMatchesStopsEarly(t *testing.T) {
	content := `[media-credit id=1]a[/media-credit][media-credit id=2]b[/media-credit]`
	seen := 0
	for range Matches(content, creditName) {
		seen++
		break
	}
	if seen != 1 {
		t.Fatalf("expected iteration to stop after first match, saw %d", seen)
	}
	if Locate(content, "") != nil {
		t.Fatalf("empty name should yield nothing")
	}
}
