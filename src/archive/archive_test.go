package archive

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeka/zip"
)

type entry struct {
	Name, Contents, Password string
}

func makeZip(t *testing.T, entries ...entry) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		var f io.Writer
		var err error
		if e.Password != "" {
			f, err = w.Encrypt(e.Name, e.Password, zip.AES256Encryption)
		} else {
			f, err = w.Create(e.Name)
		}
		require.NoError(t, err)
		_, err = f.Write([]byte(e.Contents))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.zip")
	require.NoError(t, os.WriteFile(path, makeZip(t,
		entry{Name: "b.txt", Contents: "bbb"},
		entry{Name: "a.txt", Contents: "a"},
	), 0644))
	a, err := Open(path, "")
	require.NoError(t, err)
	defer a.Close()
	assert.Equal(t, []string{"b.txt", "a.txt"}, a.Names())
	b, err := a.ReadFile("b.txt")
	assert.NoError(t, err)
	assert.Equal(t, "bbb", string(b))
	assert.EqualValues(t, 3, a.Size("b.txt"))
	assert.EqualValues(t, 0, a.Size("c.txt"))
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.zip"), "")
	assert.Error(t, err)
}

func TestFromBytesInvalid(t *testing.T) {
	_, err := FromBytes([]byte("this is not a zip file"), "")
	assert.Error(t, err)
}

func TestReadFileMissing(t *testing.T) {
	a, err := FromBytes(makeZip(t, entry{Name: "a.txt"}), "")
	require.NoError(t, err)
	_, err = a.ReadFile("b.txt")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	a, err := FromBytes(makeZip(t, entry{Name: "abc123", Contents: "essay"}), "")
	require.NoError(t, err)
	out, err := a.ExtractFile("abc123", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "abc123"), out)
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "essay", string(b))

	_, err = a.ExtractFile("xyz789", dir)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExtractAll(t *testing.T) {
	dir := t.TempDir()
	a, err := FromBytes(makeZip(t,
		entry{Name: "src/"},
		entry{Name: "src/Main.java", Contents: "class Main {}"},
		entry{Name: "empty/"},
		entry{Name: "README.md", Contents: "# hi"},
	), "")
	require.NoError(t, err)
	require.NoError(t, a.ExtractAll(dir))
	b, err := os.ReadFile(filepath.Join(dir, "src", "Main.java"))
	require.NoError(t, err)
	assert.Equal(t, "class Main {}", string(b))
	info, err := os.Stat(filepath.Join(dir, "empty"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.FileExists(t, filepath.Join(dir, "README.md"))
}

func TestExtractAllSanitisesNames(t *testing.T) {
	var tests = []struct {
		name     string
		expected string
	}{
		{"../evil.txt", "evil.txt"},
		{"a/../../evil.txt", "a/evil.txt"},
		{"/etc/evil.txt", "etc/evil.txt"},
		{"./a/./b.txt", "a/b.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "out")
			a, err := FromBytes(makeZip(t, entry{Name: tt.name, Contents: "evil"}), "")
			require.NoError(t, err)
			require.NoError(t, a.ExtractAll(dir))
			b, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(tt.expected)))
			require.NoError(t, err)
			assert.Equal(t, "evil", string(b))
			assert.NoFileExists(t, filepath.Join(filepath.Dir(dir), "evil.txt"))
		})
	}
}

func TestExtractAllSkipsUnnamedEntries(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	a, err := FromBytes(makeZip(t,
		entry{Name: "../", Contents: ""},
		entry{Name: "ok.txt", Contents: "ok"},
	), "")
	require.NoError(t, err)
	require.NoError(t, a.ExtractAll(dir))
	assert.FileExists(t, filepath.Join(dir, "ok.txt"))
}

func TestSanitise(t *testing.T) {
	assert.Equal(t, "src/Main.java", sanitise("src/Main.java"))
	assert.Equal(t, "src", sanitise("src/"))
	assert.Equal(t, "notes.txt", sanitise("../notes.txt"))
	assert.Equal(t, "abs.txt", sanitise("/abs.txt"))
	assert.Equal(t, "", sanitise("../.."))
}

func TestEncrypted(t *testing.T) {
	b := makeZip(t, entry{Name: "secret.txt", Contents: "hunter2", Password: "letmein"})

	a, err := FromBytes(b, "letmein")
	require.NoError(t, err)
	contents, err := a.ReadFile("secret.txt")
	assert.NoError(t, err)
	assert.Equal(t, "hunter2", string(contents))

	a, err = FromBytes(b, "")
	require.NoError(t, err)
	_, err = a.ReadFile("secret.txt")
	assert.Error(t, err)

	a, err = FromBytes(b, "wrong")
	require.NoError(t, err)
	_, err = a.ReadFile("secret.txt")
	assert.Error(t, err)
}

func TestEncryptedPrompt(t *testing.T) {
	a, err := FromBytes(makeZip(t,
		entry{Name: "one.txt", Contents: "1", Password: "letmein"},
		entry{Name: "two.txt", Contents: "2", Password: "letmein"},
	), "")
	require.NoError(t, err)
	prompts := 0
	a.Prompt = func(entry string) (string, error) {
		prompts++
		assert.Equal(t, "one.txt", entry)
		return "letmein", nil
	}
	for _, name := range []string{"one.txt", "two.txt"} {
		_, err := a.ReadFile(name)
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, prompts)
}

func TestNested(t *testing.T) {
	inner := makeZip(t, entry{Name: "secret.txt", Contents: "hunter2", Password: "letmein"})
	a, err := FromBytes(makeZip(t, entry{Name: "abc123", Contents: string(inner)}), "letmein")
	require.NoError(t, err)
	nested, err := a.Nested("abc123")
	require.NoError(t, err)
	defer nested.Close()
	b, err := nested.ReadFile("secret.txt")
	assert.NoError(t, err)
	assert.Equal(t, "hunter2", string(b))
}

func TestNestedInvalid(t *testing.T) {
	a, err := FromBytes(makeZip(t, entry{Name: "abc123", Contents: "nope"}), "")
	require.NoError(t, err)
	_, err = a.Nested("abc123")
	assert.Error(t, err)
}

func TestMissingEntrySuggestion(t *testing.T) {
	a, err := FromBytes(makeZip(t, entry{Name: "Essay_q1234567_poging_2023-01-31-23-59-59_essay.docx"}), "")
	require.NoError(t, err)
	_, err = a.ExtractFile("Essay_q1234567_poging_2023-01-31-23-59-59_esay.docx", t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "maybe you meant Essay_q1234567_poging_2023-01-31-23-59-59_essay.docx")
}
