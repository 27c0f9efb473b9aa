package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/bakkerme/feedboard/internal/application"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testApp(out *bytes.Buffer) *cli.App {
	a := app()
	a.Writer = out
	a.ErrWriter = out
	a.ExitErrHandler = func(*cli.Context, error) {}
	return a
}

func TestValidateCommand(t *testing.T) {
	valid := writeTemp(t, "presse.json", `[{"title":"t","url":"https://e.org","source":"s","date":"2026-01-01","image":"","excerpt":""}]`)

	var out bytes.Buffer
	require.NoError(t, testApp(&out).Run([]string{"feedboard", "validate", valid}))
	assert.Equal(t, "OK: 1 Einträge geprüft\n", out.String())

	invalid := writeTemp(t, "presse.json", `[{"title":"t"}]`)
	err := testApp(&out).Run([]string{"feedboard", "validate", invalid})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Eintrag #1")
}

func TestReadForm(t *testing.T) {
	path := writeTemp(t, "form.yaml", `
parent:
  first: Anna
  last: Muster
  street: Bahnhofstraße
  house_no: "3"
  zip: "15711"
  city: Königs Wusterhausen
children:
  - first: Ben
    last: Muster
    institution: Kita Sonnenschein
  - first: Clara
    last: Muster
    institution: Grundschule
`)
	form, err := readForm(path, application.DefaultTemplate())
	require.NoError(t, err)

	assert.True(t, form.Valid())
	assert.Len(t, form.Children(), 2)
	body := form.Body()
	assert.Contains(t, body, "• Ben Muster | Kita Sonnenschein\r\n")
	assert.True(t, strings.HasSuffix(body, "Anna Muster"))
}

func TestReadFormWithoutChildrenKeepsOneRow(t *testing.T) {
	path := writeTemp(t, "form.yaml", "parent:\n  first: Anna\n")
	form, err := readForm(path, application.DefaultTemplate())
	require.NoError(t, err)
	assert.Len(t, form.Children(), 1)
	assert.False(t, form.Valid())
}
