package docx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReport(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.docx")

	analysis := `# Análise

**Narrativa Principal:** uma palestra sobre Go.

- primeiro ponto
- segundo ponto

1. passo um
`
	err := WriteReport("Relatório de Análise", analysis, "linha um\n\nlinha dois", out)
	require.NoError(t, err)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestHeadingSize(t *testing.T) {
	assert.Equal(t, uint64(16), headingSize(1))
	assert.Equal(t, uint64(15), headingSize(2))
	assert.Equal(t, uint64(14), headingSize(3))
	assert.Equal(t, uint64(fontSize), headingSize(4))
}

func TestStripInline(t *testing.T) {
	assert.Equal(t, "bold and code", stripInline("**bold** and `code`"))
}
