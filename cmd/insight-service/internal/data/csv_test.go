package data

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVSourceLoad(t *testing.T) {
	path := writeTempCSV(t, `week,pick_time,pack_time,dispatch_delay,error_count
1,15.0,10.0,8.0,1
2,17.5,12.0,10.2,3
`)

	table, err := NewCSVSource(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, table, 2)

	assert.Equal(t, 1, table[0].Week)
	assert.Equal(t, 15.0, table[0].PickTime)
	assert.Equal(t, 10.0, table[0].PackTime)
	assert.Equal(t, 8.0, table[0].DispatchDelay)
	assert.Equal(t, 1, table[0].ErrorCount)
	assert.Equal(t, 3, table[1].ErrorCount)
}

func TestCSVSourceColumnOrderIndependent(t *testing.T) {
	path := writeTempCSV(t, `error_count,week,dispatch_delay,pick_time,pack_time
2,3,9.5,16.1,11.8
`)

	table, err := NewCSVSource(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.Equal(t, 3, table[0].Week)
	assert.Equal(t, 16.1, table[0].PickTime)
	assert.Equal(t, 2, table[0].ErrorCount)
}

func TestCSVSourceMissingColumn(t *testing.T) {
	path := writeTempCSV(t, `week,pick_time,pack_time,error_count
1,15.0,10.0,1
`)

	_, err := NewCSVSource(path).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dispatch_delay")
}

func TestCSVSourceInvalidValueReportsLine(t *testing.T) {
	path := writeTempCSV(t, `week,pick_time,pack_time,dispatch_delay,error_count
1,15.0,10.0,8.0,1
2,not-a-number,12.0,10.2,3
`)

	_, err := NewCSVSource(path).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
	assert.Contains(t, err.Error(), "pick_time")
}

func TestCSVSourceMissingFile(t *testing.T) {
	_, err := NewCSVSource(filepath.Join(t.TempDir(), "nope.csv")).Load(context.Background())
	assert.Error(t, err)
}
