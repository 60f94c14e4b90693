package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runCLI runs the CLI without any user or project config files.
func runCLI(t *testing.T, in string, args ...string) (int, string, string) {
	t.Helper()
	var out bytes.Buffer
	var errOut bytes.Buffer
	code, err := Run(append([]string{"visualdiff"}, args...), &RunOptions{
		In:            strings.NewReader(in),
		Out:           &out,
		Err:           &errOut,
		configSources: &configSources{},
	})
	if (code == 0) != (err == nil) {
		t.Fatalf("exit code %d inconsistent with err %v", code, err)
	}
	return code, out.String(), errOut.String()
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestRun_Help(t *testing.T) {
	code, out, errOut := runCLI(t, "", "-h")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(out, "visualdiff [flags] OLD NEW") {
		t.Fatalf("expected usage on stdout, got %q", out)
	}
	if errOut != "" {
		t.Fatalf("expected empty stderr, got: %q", errOut)
	}
}

func TestRun_MissingArg_IsUsageError(t *testing.T) {
	code, _, errOut := runCLI(t, "", "only-one.html")
	if code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
	if errOut == "" {
		t.Fatalf("expected stderr output for usage error")
	}
}

func TestRun_UnknownFlag_IsUsageError(t *testing.T) {
	code, _, _ := runCLI(t, "", "--bogus", "a", "b")
	if code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
}

func TestRun_InvalidFlagValue_IsUsageError(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "a.html"), "a")
	for _, args := range [][]string{
		{"--granularity", "lines", a, a},
		{"--format", "pdf", a, a},
		{"--color", "sometimes", a, a},
		{"--max-table-depth", "0", a, a},
		{"-", "-"},
	} {
		code, _, _ := runCLI(t, "", args...)
		if code != 2 {
			t.Fatalf("%v: expected exit code 2, got %d", args, code)
		}
	}
}

func TestRun_DiffFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "a.html"), "<p>Prefix Old Suffix</p>")
	b := writeFile(t, filepath.Join(dir, "b.html"), "<p>Prefix New Suffix</p>")

	code, out, errOut := runCLI(t, "", a, b)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr=%q)", code, errOut)
	}
	want := `<p>Prefix <del class="vdd-removed">Old</del><ins class="vdd-added">New</ins> Suffix</p>` + "\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}

	code, out, _ = runCLI(t, "", "--added-class", "plus", "--removed-class", "minus", a, b)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	want = `<p>Prefix <del class="minus">Old</del><ins class="plus">New</ins> Suffix</p>` + "\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestRun_Stdin(t *testing.T) {
	dir := t.TempDir()
	b := writeFile(t, filepath.Join(dir, "b.html"), "one two")

	code, out, errOut := runCLI(t, "one", "-", b)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr=%q)", code, errOut)
	}
	want := `one<ins class="vdd-added"> two</ins>` + "\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestRun_Latin1Input(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "a.html"), "<p>caf\xe9 au lait</p>")
	b := writeFile(t, filepath.Join(dir, "b.html"), "<p>caf\xe8 au lait</p>")

	code, out, errOut := runCLI(t, "", "--format", "html", a, b)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr=%q)", code, errOut)
	}
	want := "<p>caf<del class=\"vdd-removed\">\xe9</del><ins class=\"vdd-added\">\xe8</ins> au lait</p>\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestRun_MissingFile_IsRuntimeError(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "a.html"), "a")
	code, _, errOut := runCLI(t, "", a, filepath.Join(dir, "missing.html"))
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(errOut, "missing.html") {
		t.Fatalf("expected error to name the file, got %q", errOut)
	}
}

func TestRun_TermFormat(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "a.md"), "Prefix Old Suffix\n\n- item\n")
	b := writeFile(t, filepath.Join(dir, "b.md"), "Prefix New Suffix\n\n- item\n")

	code, out, errOut := runCLI(t, "", "--format", "term", "--color", "never", a, b)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr=%q)", code, errOut)
	}
	if want := "Prefix OldNew Suffix\n- item\n"; out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestRun_WordGranularity(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "a.html"), "one two")
	b := writeFile(t, filepath.Join(dir, "b.html"), "one three")

	code, out, _ := runCLI(t, "", "--granularity", "words", a, b)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	want := `one <del class="vdd-removed">two</del><ins class="vdd-added">three</ins>` + "\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestRun_OutputFile(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "a.html"), "same")
	outPath := filepath.Join(dir, "out.html")

	code, out, _ := runCLI(t, "", "-o", outPath, a, a)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if out != "" {
		t.Fatalf("expected nothing on stdout, got %q", out)
	}
	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != "same\n" {
		t.Fatalf("got %q", got)
	}
}

func TestRun_Version(t *testing.T) {
	code, out, _ := runCLI(t, "", "version")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if out != "visualdiff "+Version+"\n" {
		t.Fatalf("got %q", out)
	}
}

func TestRun_Dir(t *testing.T) {
	root := t.TempDir()
	oldDir := filepath.Join(root, "old")
	newDir := filepath.Join(root, "new")
	outDir := filepath.Join(root, "out")
	writeFile(t, filepath.Join(oldDir, "a.html"), "<p>a</p>")
	writeFile(t, filepath.Join(newDir, "a.html"), "<p>b</p>")
	writeFile(t, filepath.Join(oldDir, "sub", "b.md"), "hello\n")
	writeFile(t, filepath.Join(newDir, "sub", "b.md"), "hello world\n")
	writeFile(t, filepath.Join(oldDir, "only-old.html"), "x")
	writeFile(t, filepath.Join(newDir, "notes.txt"), "ignored")

	code, out, errOut := runCLI(t, "", "dir", "-j", "2", oldDir, newDir, outDir)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr=%q)", code, errOut)
	}
	wantOut := filepath.Join(outDir, "a.html") + "\n" + filepath.Join(outDir, "sub", "b.html") + "\n"
	if out != wantOut {
		t.Fatalf("got %q, want %q", out, wantOut)
	}

	for path, want := range map[string]string{
		filepath.Join(outDir, "a.html"):        `<p><del class="vdd-removed">a</del><ins class="vdd-added">b</ins></p>` + "\n",
		filepath.Join(outDir, "sub", "b.html"): `<p>hello<ins class="vdd-added"> world</ins></p>` + "\n",
	} {
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if string(got) != want {
			t.Fatalf("%s: got %q, want %q", path, got, want)
		}
	}
	if _, err := os.Stat(filepath.Join(outDir, "only-old.html")); !os.IsNotExist(err) {
		t.Fatalf("expected no output for a document missing from NEW_DIR")
	}
}
