package migration

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "Add Accounts Table")
	require.NoError(t, err)

	assert.Len(t, mf.Version, 14)
	assert.Contains(t, mf.UpPath, "add_accounts_table.up.sql")
	assert.Contains(t, mf.DownPath, "add_accounts_table.down.sql")

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "Add Accounts Table")

	_, err = os.Stat(mf.DownPath)
	assert.NoError(t, err)
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(dir+"/002_later.up.sql", nil, 0644))
	require.NoError(t, os.WriteFile(dir+"/001_first.up.sql", nil, 0644))
	require.NoError(t, os.WriteFile(dir+"/001_first.down.sql", nil, 0644))

	names, err := ListMigrations(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"001_first.up.sql", "002_later.up.sql"}, names)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "add_chat_messages", sanitizeName("Add Chat Messages"))
	assert.Equal(t, "rate_limit_entries", sanitizeName("rate-limit entries!"))
	assert.Equal(t, "v2", sanitizeName("  v2  "))
}
