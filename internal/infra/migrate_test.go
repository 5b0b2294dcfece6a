package infra

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindMigrationDirFrom(t *testing.T) {
	root := t.TempDir()
	migrations := filepath.Join(root, "db", "migrations")
	require.NoError(t, os.MkdirAll(migrations, 0o755))
	nested := filepath.Join(root, "cmd", "api")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	assert.Equal(t, migrations, findMigrationDirFrom(nested))
	assert.Equal(t, migrations, findMigrationDirFrom(root))
}

func TestFindMigrationDirFrom_NotFound(t *testing.T) {
	assert.Equal(t, migrationSubdir, findMigrationDirFrom(t.TempDir()))
}
