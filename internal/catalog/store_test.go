package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"lodgeportal/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "data", "catalogo.csv")
}

func writeCatalog(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestLoadMissingFileWritesTemplate(t *testing.T) {
	path := catalogPath(t)

	rows, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, rows)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id,titulo,autor,genero,descricao,grau_minimo,arquivo,capa\n", string(data))
}

func TestLoadZeroByteFile(t *testing.T) {
	path := catalogPath(t)
	writeCatalog(t, path, nil)

	rows, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, rows)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id,titulo,autor,genero,descricao,grau_minimo,arquivo,capa\n", string(data))
}

func TestLoadSynthesizesMissingColumns(t *testing.T) {
	path := catalogPath(t)
	writeCatalog(t, path, []byte("titulo,autor\nSimbolos,Carlos\n"))

	rows, err := Load(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Simbolos", rows[0].Titulo)
	assert.Equal(t, "Carlos", rows[0].Autor)
	assert.Equal(t, "", rows[0].ID)
	assert.Equal(t, "", rows[0].GrauMinimo)
	assert.Equal(t, "", rows[0].Capa)
}

func TestLoadDiscardsExtraColumns(t *testing.T) {
	path := catalogPath(t)
	writeCatalog(t, path, []byte("id,titulo,extra,autor\n1,Simbolos,IGNORED,Carlos\n"))

	rows, err := Load(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "1", rows[0].ID)
	assert.Equal(t, "Carlos", rows[0].Autor)
}

func TestLoadSemicolonDelimiter(t *testing.T) {
	path := catalogPath(t)
	writeCatalog(t, path, []byte("id;titulo;autor;genero;descricao;grau_minimo;arquivo;capa\n1;Simbolos;Carlos;Simbolismo;intro;Aprendiz;a.pdf;c.png\n"))

	rows, err := Load(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Simbolos", rows[0].Titulo)
	assert.Equal(t, "c.png", rows[0].Capa)
}

func TestLoadTabDelimiter(t *testing.T) {
	path := catalogPath(t)
	writeCatalog(t, path, []byte("id\ttitulo\tautor\n1\tSimbolos\tCarlos\n"))

	rows, err := Load(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Simbolos", rows[0].Titulo)
}

func TestLoadLatin1(t *testing.T) {
	path := catalogPath(t)
	// "Elevação" with latin-1 bytes for ç (0xE7) and ã (0xE3); invalid as utf-8
	data := []byte("id,titulo,autor\n1,Eleva\xe7\xe3o,Andr\xe9\n")
	writeCatalog(t, path, data)

	rows, err := Load(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Elevação", rows[0].Titulo)
	assert.Equal(t, "André", rows[0].Autor)
}

func TestLoadUTF8WithBOM(t *testing.T) {
	path := catalogPath(t)
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("id,titulo\n1,Simbolos\n")...)
	writeCatalog(t, path, data)

	rows, err := Load(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	// the BOM must not bleed into the first column name
	assert.Equal(t, "1", rows[0].ID)
}

func TestLoadMalformedNeverTouchesSource(t *testing.T) {
	path := catalogPath(t)
	malformed := []byte("id,titulo\n\"unterminated quote\n")
	writeCatalog(t, path, malformed)

	rows, err := Load(path)
	assert.ErrorIs(t, err, ErrMalformedCatalog)
	assert.Empty(t, rows)

	after, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, malformed, after, "malformed source must survive untouched")
}

func TestNextID(t *testing.T) {
	assert.Equal(t, 1, NextID(nil))
	assert.Equal(t, 4, NextID([]entity.Work{{ID: "1"}, {ID: "3"}, {ID: "bad"}}))
	assert.Equal(t, 1, NextID([]entity.Work{{ID: "zero"}, {ID: ""}}))
	assert.Equal(t, 8, NextID([]entity.Work{{ID: " 7 "}}))
}

func TestAppend(t *testing.T) {
	t.Run("empty table starts at 1", func(t *testing.T) {
		rows, stored := Append(nil, entity.Work{Titulo: "Primeiro"})
		require.Len(t, rows, 1)
		assert.Equal(t, "1", stored.ID)
	})

	t.Run("non-numeric ids are ignored for the max", func(t *testing.T) {
		existing := []entity.Work{{ID: "1"}, {ID: "3"}, {ID: "bad"}}
		rows, stored := Append(existing, entity.Work{Titulo: "Quarto"})
		require.Len(t, rows, 4)
		assert.Equal(t, "4", stored.ID)
	})

	t.Run("input slice is not mutated", func(t *testing.T) {
		existing := []entity.Work{{ID: "1"}}
		Append(existing, entity.Work{Titulo: "Novo"})
		assert.Len(t, existing, 1)
	})
}

func TestPersistRoundTrip(t *testing.T) {
	path := catalogPath(t)
	rows := []entity.Work{
		{ID: "1", Titulo: "Simbolos, vol. 1", Autor: "Carlos", Genero: "Simbolismo", Descricao: "com virgula, e \"aspas\"", GrauMinimo: "Aprendiz", Arquivo: "conteudo/aprendiz/s.pdf", Capa: "assets/s.png"},
		{ID: "2", Titulo: "Ritual", Autor: "Andre", Genero: "Ritualistica", Descricao: "", GrauMinimo: "Mestre", Arquivo: "conteudo/mestre/r.pdf", Capa: ""},
	}

	require.NoError(t, Persist(rows, path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestPersistCreatesParentsAndLeavesNoTemp(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "deep", "nested", "catalogo.csv")

	require.NoError(t, Persist(nil, path))

	_, err := os.Stat(path)
	require.NoError(t, err)
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
