package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whisphaven.db")
	gdb, err := Init("sqlite://"+path, nil)
	require.NoError(t, err)
	defer Close(gdb)

	var one int
	require.NoError(t, gdb.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}

func TestInitRejectsUnknownScheme(t *testing.T) {
	_, err := Init("mysql://localhost/db", nil)
	assert.Error(t, err)
}
