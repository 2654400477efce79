package typgen

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/broady/typ"
	"golang.org/x/tools/txtar"
)

var discard = slog.New(slog.DiscardHandler)

// TestGolden runs every testdata/*.txtar archive. Top-level .rs files are
// inputs, want/<name> files are the expected outputs and an optional
// "errors" file lists substrings that must each appear in the error.
func TestGolden(t *testing.T) {
	archives, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	if err != nil {
		t.Fatal(err)
	}
	if len(archives) == 0 {
		t.Fatal("no golden archives")
	}
	for _, path := range archives {
		t.Run(strings.TrimSuffix(filepath.Base(path), ".txtar"), func(t *testing.T) {
			ar, err := txtar.ParseFile(path)
			if err != nil {
				t.Fatal(err)
			}

			g := (&Generator{}).WithLogger(discard)
			want := make(map[string]string)
			var wantErrs []string
			for _, f := range ar.Files {
				switch {
				case f.Name == "errors":
					wantErrs = strings.Split(strings.TrimSpace(string(f.Data)), "\n")
				case strings.HasPrefix(f.Name, "want/"):
					want[strings.TrimPrefix(f.Name, "want/")] = string(f.Data)
				default:
					g.Source(f.Name, string(f.Data))
				}
			}

			result, err := g.Generate()
			if len(wantErrs) == 0 && err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			for _, w := range wantErrs {
				if err == nil || !strings.Contains(err.Error(), w) {
					t.Errorf("error = %v, want it to contain %q", err, w)
				}
			}
			if result == nil {
				t.Fatal("Generate() returned no result")
			}

			for name, content := range want {
				got, ok := result.Content[name]
				if !ok {
					t.Errorf("missing output %s", name)
					continue
				}
				if string(got) != content {
					t.Errorf("%s =\n%s\nwant\n%s", name, got, content)
				}
			}
			for name := range result.Content {
				if _, ok := want[name]; !ok {
					t.Errorf("unexpected output %s", name)
				}
			}
		})
	}
}

const natSource = `pub enum Nat { Zero, Succ(Nat) }
`

func TestGenerator_ToDir(t *testing.T) {
	in := filepath.Join(t.TempDir(), "nat.rs")
	if err := os.WriteFile(in, []byte(natSource), 0o644); err != nil {
		t.Fatal(err)
	}
	out := t.TempDir()

	result, err := FromFiles(in).WithLogger(discard).ToDir(out)
	if err != nil {
		t.Fatalf("ToDir() error = %v", err)
	}
	if len(result.Files) != 1 || result.Files[0].Path != "nat.rs" {
		t.Fatalf("Files = %+v", result.Files)
	}
	if result.DeclsGenerated != 5 {
		t.Errorf("DeclsGenerated = %d, want 5", result.DeclsGenerated)
	}
	got, err := os.ReadFile(filepath.Join(out, "nat.rs"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(got), DefaultHeader+"\n\npub trait Nat {}\n") {
		t.Errorf("nat.rs =\n%s", got)
	}

	// Overwrite defaults to true.
	if _, err := FromFiles(in).WithLogger(discard).ToDir(out); err != nil {
		t.Errorf("second ToDir() error = %v", err)
	}
	no := false
	_, err = FromFiles(in).WithConfig(&Config{Overwrite: &no, Logger: discard}).ToDir(out)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("ToDir() without overwrite error = %v, want already exists", err)
	}
}

func TestGenerator_ToDirRequiresDir(t *testing.T) {
	if _, err := FromSource("nat.rs", natSource).ToDir(""); err == nil {
		t.Error("ToDir(\"\") succeeded without OutDir")
	}
}

func TestGenerator_ToWriter(t *testing.T) {
	var buf bytes.Buffer
	_, err := FromSource("nat.rs", natSource).
		WithLogger(discard).
		Header("").
		Indent("tab", 0).
		ToWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "pub trait Nat {}") {
		t.Errorf("single input output should have no banner or header:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "where\n\tT0: Nat,\n") {
		t.Errorf("output not tab-indented:\n%s", buf.String())
	}

	buf.Reset()
	_, err = FromSource("nat.rs", natSource).
		Source("bit.rs", "enum Bit { B0, B1 }").
		WithLogger(discard).
		ToWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"// nat.rs\n", "// bit.rs\n"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing banner %q", want)
		}
	}
}

func TestGenerator_Options(t *testing.T) {
	src := `fn id(a: Nat) -> Nat { a }`
	tests := []struct {
		name    string
		gen     func() *Generator
		want    []string
		notWant []string
	}{
		{
			name: "defaults",
			gen:  func() *Generator { return FromSource("id.rs", src) },
			want: []string{"trait Compute_id {", "type id<a> = <a as Compute_id>::Output;"},
		},
		{
			name:    "no aliases",
			gen:     func() *Generator { return FromSource("id.rs", src).NoAliases() },
			notWant: []string{"type id<a>"},
		},
		{
			name: "config prefix",
			gen: func() *Generator {
				return FromSource("id.rs", src).WithConfig(&Config{ComputePrefix: "Run"})
			},
			want: []string{"trait Runid {"},
		},
		{
			name: "attribute overrides config",
			gen: func() *Generator {
				return FromSource("id.rs", "#![typ(compute_prefix = \"Eval\")]\n"+src).WithConfig(&Config{ComputePrefix: "Run"})
			},
			want:    []string{"trait Evalid {"},
			notWant: []string{"Runid"},
		},
		{
			name: "comments",
			gen:  func() *Generator { return FromSource("id.rs", src).Comments() },
			want: []string{"// id.rs:1:1\ntrait Compute_id"},
		},
		{
			name: "crlf",
			gen:  func() *Generator { return FromSource("id.rs", src).LineEnding("crlf") },
			want: []string{"trait Compute_id {\r\n"},
		},
		{
			name: "custom header",
			gen:  func() *Generator { return FromSource("id.rs", src).Header("// hand-tuned") },
			want: []string{"// hand-tuned\n\n"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.gen().WithLogger(discard).Generate()
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			got := string(result.Content["id.rs"])
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("output missing %q\ngot:\n%s", w, got)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(got, nw) {
					t.Errorf("output should not contain %q\ngot:\n%s", nw, got)
				}
			}
		})
	}
}

func TestGenerator_Check(t *testing.T) {
	result, err := FromSource("nat.rs", natSource).WithLogger(discard).Check()
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Files) != 0 {
		t.Errorf("Check() wrote files: %+v", result.Files)
	}
	if len(result.Modules) != 1 || result.Modules[0].Name != "nat" {
		t.Errorf("Modules = %+v", result.Modules)
	}

	_, err = FromSource("bad.rs", "fn f(a: Nat) -> Nat { if a { a } }").WithLogger(discard).Check()
	if typ.CodeOf(err) != typ.CodeMissingElseBranch {
		t.Errorf("Check() error = %v, want %s", err, typ.CodeMissingElseBranch)
	}
}

func TestGenerator_Errors(t *testing.T) {
	tests := []struct {
		name string
		gen  *Generator
		want string
	}{
		{"no inputs", &Generator{}, "no inputs"},
		{"missing file", FromFiles(filepath.Join(t.TempDir(), "missing.rs")), "failed to read input"},
		{"syntax", FromSource("s.rs", "enum {"), "s.rs:1:6: syntax_error"},
		{"bad indent style", FromSource("nat.rs", natSource).Indent("wide", 2), "IndentStyle: must be one of: space tab"},
		{"bad attribute", FromSource("a.rs", "#![typ(prefix = \"1x\")]\nenum A { B }"), "invalid_options"},
		{
			name: "duplicate output",
			gen:  FromSource("a/nat.rs", natSource).Source("b/nat.rs", "enum Bit { B0 }"),
			want: "output nat.rs already generated from a/nat.rs",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.gen.WithLogger(discard).Generate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestGenerator_Warnings(t *testing.T) {
	result, err := FromSource("s.rs", "struct Wrap<T>(T);").WithLogger(discard).Generate()
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Warnings) != 1 || result.Warnings[0].Code != "ignored_generics" {
		t.Errorf("Warnings = %+v", result.Warnings)
	}
}

func TestGenerator_Debug(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	if _, err := FromSource("nat.rs", natSource).WithLogger(logger).Debug().Check(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(logs.String(), "msg=expansion") || !strings.Contains(logs.String(), "pub trait Nat {}") {
		t.Errorf("debug log missing expansion:\n%s", logs.String())
	}

	logs.Reset()
	if _, err := FromSource("nat.rs", natSource).WithLogger(logger).Check(); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(logs.String(), "expansion") {
		t.Errorf("expansion logged without debug:\n%s", logs.String())
	}
}
