package cli

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"codeberg.org/snonux/grunwald/internal/storage"
	"codeberg.org/snonux/grunwald/internal/testutil"
)

type cliEnv struct {
	wiki   *testutil.FakeWiki
	dbPath string
}

func setupCLI(t *testing.T) *cliEnv {
	t.Helper()
	t.Cleanup(viper.Reset)

	wiki := testutil.NewFakeWiki(t)
	wiki.AddWord("Hund", testutil.HundExtract)
	wiki.AddWord("laufen", testutil.LaufenExtract)
	wiki.AddImage("Hund", testutil.PNG(t, 40, 30), 40, 30)

	return &cliEnv{wiki: wiki, dbPath: filepath.Join(t.TempDir(), "grunwald.sqlite")}
}

// run executes one grunwald invocation and returns its standard output
func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	viper.Reset()
	cmd := CreateRootCommand(NewFlags())
	viper.Set("dictionary.base_url", e.wiki.URL())
	viper.Set("dictionary.probe_url", e.wiki.ProbeURL())
	viper.Set("log.level", "error")

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--db", e.dbPath}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("grunwald %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func assertContains(t *testing.T, out string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if !strings.Contains(out, p) {
			t.Errorf("output %q does not contain %q", out, p)
		}
	}
}

func TestSearchWithoutSave(t *testing.T) {
	env := setupCLI(t)

	out := env.mustRun(t, "search", "Hund")
	assertContains(t, out, "Hund (Noun)", "Translation:", "dog", "Not stored in database")
	if strings.Contains(out, "<li>") {
		t.Errorf("markup leaked into output: %q", out)
	}

	out = env.mustRun(t, "list")
	assertContains(t, out, "No words stored yet")
}

func TestSearchSaveThenServeFromDatabase(t *testing.T) {
	env := setupCLI(t)

	out := env.mustRun(t, "search", "--save", "Hund")
	assertContains(t, out, "Not stored in database", "Stored in database")

	out = env.mustRun(t, "search", "Hund")
	assertContains(t, out, "Hund (Noun)", "Stored in database")
	if got := env.wiki.Hits(testutil.EndpointContent); got != 1 {
		t.Errorf("content hits = %d, the second search must come from the database", got)
	}

	env.mustRun(t, "search", "-s", "laufen")
	out = env.mustRun(t, "list")
	assertContains(t, out, "Hund\tNoun", "laufen\tVerb")
}

func TestSearchUnknownWord(t *testing.T) {
	env := setupCLI(t)

	if _, err := env.run(t, "search", "Xyz"); err == nil {
		t.Error("expected error for a word the dictionary does not know")
	}
}

func TestRemove(t *testing.T) {
	env := setupCLI(t)
	env.mustRun(t, "search", "--save", "Hund")

	out := env.mustRun(t, "remove", "Hund")
	assertContains(t, out, "Removed Hund")

	out = env.mustRun(t, "list")
	assertContains(t, out, "No words stored yet")

	_, err := env.run(t, "remove", "Hund")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("remove of a missing word = %v, want ErrNotFound", err)
	}
}

func TestImageStoresFetchedBytes(t *testing.T) {
	env := setupCLI(t)
	env.mustRun(t, "search", "--save", "Hund")

	path := filepath.Join(t.TempDir(), "hund.png")
	out := env.mustRun(t, "image", "Hund", "-o", path, "--width", "10", "--height", "8")
	assertContains(t, out, "Image written to "+path)
	assertPNGSize(t, path, 10, 8)

	env.mustRun(t, "image", "Hund", "-o", path)
	if got := env.wiki.Hits(testutil.EndpointMedia); got != 1 {
		t.Errorf("media hits = %d, the stored image must be reused", got)
	}
	// Bounded by the 40x30 original
	assertPNGSize(t, path, 40, 30)
}

func TestImagePlaceholderForVerb(t *testing.T) {
	env := setupCLI(t)

	path := filepath.Join(t.TempDir(), "laufen.png")
	env.mustRun(t, "image", "laufen", "-o", path)

	assertPNGSize(t, path, 250, 250)
	if got := env.wiki.Hits(testutil.EndpointImage); got != 0 {
		t.Errorf("image hits = %d, verbs have no image", got)
	}
}

func TestImport(t *testing.T) {
	env := setupCLI(t)
	list := filepath.Join(t.TempDir(), "words.txt")
	testutil.CreateTestFile(t, list, []byte("# nouns\nHund\n\nlaufen\nXyz\nHund\n"))

	out, err := env.run(t, "import", list)
	if err == nil || !strings.Contains(err.Error(), "1 of 3 words failed") {
		t.Errorf("import error = %v", err)
	}
	assertContains(t, out, "[1/3] Hund: saved", "[2/3] laufen: saved", "[3/3] Xyz: failed",
		"2 saved, 0 already stored, 1 failed")

	out = env.mustRun(t, "list")
	assertContains(t, out, "Hund", "laufen")
}

func TestImportMissingFile(t *testing.T) {
	env := setupCLI(t)

	if _, err := env.run(t, "import", filepath.Join(t.TempDir(), "none.txt")); err == nil {
		t.Error("expected error for a missing word list")
	}
	testutil.AssertFileNotExists(t, env.dbPath)
}

func TestReset(t *testing.T) {
	env := setupCLI(t)
	env.mustRun(t, "search", "--save", "Hund")

	out := env.mustRun(t, "reset")
	assertContains(t, out, "Database reset")

	out = env.mustRun(t, "list")
	assertContains(t, out, "No words stored yet")
}

func TestArchive(t *testing.T) {
	env := setupCLI(t)
	env.mustRun(t, "search", "--save", "Hund")

	out := env.mustRun(t, "archive")
	assertContains(t, out, "Database archived to: "+filepath.Join(filepath.Dir(env.dbPath), "archive"))
	testutil.AssertFileNotExists(t, env.dbPath)

	if _, err := env.run(t, "archive"); err == nil {
		t.Error("expected error when there is no database to archive")
	}
}

func TestExport(t *testing.T) {
	env := setupCLI(t)

	if _, err := env.run(t, "export", "-o", filepath.Join(t.TempDir(), "empty.csv")); !errors.Is(err, storage.ErrNoWords) {
		t.Errorf("export of an empty database = %v, want ErrNoWords", err)
	}

	env.mustRun(t, "search", "--save", "Hund")
	env.mustRun(t, "search", "--save", "laufen")
	env.mustRun(t, "image", "Hund", "-o", filepath.Join(t.TempDir(), "hund.png"))

	csvPath := filepath.Join(t.TempDir(), "words.csv")
	out := env.mustRun(t, "export", "-o", csvPath)
	assertContains(t, out, "Exported 2 cards (1 with pictures)")

	testutil.AssertFileContains(t, csvPath, "laufen,Verb")
	testutil.AssertFileContains(t, csvPath, `<img src=""Hund.png"">`)
	testutil.AssertFileExists(t, filepath.Join(strings.TrimSuffix(csvPath, ".csv")+"_media", "Hund.png"))
}

func TestInvalidConfiguration(t *testing.T) {
	env := setupCLI(t)

	_, err := env.run(t, "--language", " ", "list")
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("error = %v, want invalid configuration", err)
	}
}

func assertPNGSize(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	if img.Bounds().Dx() != w || img.Bounds().Dy() != h {
		t.Errorf("%s is %v, want %dx%d", path, img.Bounds(), w, h)
	}
}
