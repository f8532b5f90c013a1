// ABOUTME: Tests for YAML frontmatter parser: basic, CRLF, missing, unterminated, empty
// ABOUTME: Parses into ProfileFile so binding lists in frontmatter are covered too

package config

import "testing"

func TestParseFrontmatter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		input        string
		wantName     string
		wantBindings int
		wantBody     string
	}{
		{
			name:     "standard frontmatter",
			input:    "---\nname: custom\n---\nbody content",
			wantName: "custom",
			wantBody: "body content",
		},
		{
			name:     "crlf",
			input:    "---\r\nname: custom\r\n---\r\nbody here",
			wantName: "custom",
			wantBody: "body here",
		},
		{
			name:         "bindings list",
			input:        "---\nname: rxvt\nbindings:\n  - seq: \"\\e[25~\"\n    key: shift+f3\n  - seq: \"\\e[26~\"\n    key: shift+f4\n---\nrxvt notes",
			wantName:     "rxvt",
			wantBindings: 2,
			wantBody:     "rxvt notes",
		},
		{
			name:     "empty frontmatter",
			input:    "---\n---\nbody here",
			wantBody: "body here",
		},
		{
			name:     "plain markdown",
			input:    "# Notes\n\nSome content here.",
			wantBody: "# Notes\n\nSome content here.",
		},
		{
			name:     "four dashes are not a delimiter",
			input:    "----\nname: x\n----\nbody",
			wantBody: "----\nname: x\n----\nbody",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, body, err := ParseFrontmatter[ProfileFile](tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", got.Name, tt.wantName)
			}
			if len(got.Bindings) != tt.wantBindings {
				t.Errorf("len(Bindings) = %d, want %d", len(got.Bindings), tt.wantBindings)
			}
			if body != tt.wantBody {
				t.Errorf("Body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestParseFrontmatter_EscapesInSeq(t *testing.T) {
	t.Parallel()

	got, _, err := ParseFrontmatter[ProfileFile]("---\nbindings:\n  - seq: \"\\e[25~\"\n    key: shift+f3\n---\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Bindings[0].Seq != "\x1b[25~" {
		t.Errorf("Seq = %q, want ESC [ 2 5 ~", got.Bindings[0].Seq)
	}
}

func TestParseFrontmatter_Unterminated(t *testing.T) {
	t.Parallel()

	if _, _, err := ParseFrontmatter[ProfileFile]("---\nname: test\nbody without closing"); err == nil {
		t.Fatal("expected error for unterminated frontmatter, got nil")
	}
}

func TestParseFrontmatter_BadYAML(t *testing.T) {
	t.Parallel()

	if _, _, err := ParseFrontmatter[ProfileFile]("---\nbindings: [\n---\nbody"); err == nil {
		t.Fatal("expected YAML error, got nil")
	}
}
