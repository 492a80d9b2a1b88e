package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFiles_EveryUpHasDown(t *testing.T) {
	names, err := fs.Glob(Files, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	for _, name := range names {
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		down := strings.TrimSuffix(name, ".up.sql") + ".down.sql"
		_, err := fs.Stat(Files, down)
		require.NoError(t, err, "missing %s", down)
	}
}

func TestFiles_CreatePartitionedParents(t *testing.T) {
	data, err := fs.ReadFile(Files, "000001_create_audit_tables.up.sql")
	require.NoError(t, err)

	sql := string(data)
	for _, want := range []string{
		"CREATE SEQUENCE IF NOT EXISTS global_presigned_url_id_seq",
		"CREATE SEQUENCE IF NOT EXISTS global_login_id_seq",
		"CREATE TABLE IF NOT EXISTS presigned_url",
		"CREATE TABLE IF NOT EXISTS login",
	} {
		require.Contains(t, sql, want)
	}
	require.Equal(t, 2, strings.Count(sql, `PARTITION BY RANGE ("timestamp")`))
}
