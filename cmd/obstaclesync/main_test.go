package main

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/obstacle-data-etl/internal/adapter/filestore"
	"github.com/couchcryptid/obstacle-data-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dofLine(id, agl string) string {
	b := []byte(strings.Repeat(" ", 120))
	for at, text := range map[int]string{
		0:   id,
		15:  "NC",
		18:  "RALEIGH",
		35:  "35 47 36.00N",
		48:  "078 52 12.00W",
		62:  "TOWER",
		83:  agl,
		107: "2020123",
	} {
		copy(b[at:], text)
	}
	return strings.TrimRight(string(b), " ")
}

var testDOF = strings.Join([]string{
	"  CURRENCY DATE = 10/12/2025",
	"OAS#      V CO ST CITY             LATITUDE     LONGITUDE     OBSTACLE",
	dofLine("37-012345", "01200"),
	dofLine("37-012346", "00150"),
}, "\n") + "\n"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeSnapshot(t *testing.T, md domain.Metadata) string {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	store, err := filestore.New(dir)
	require.NoError(t, err)
	require.NoError(t, store.ReplaceObstacles(ctx, []domain.Obstacle{
		{ID: "37-012345", State: "NC", City: "RALEIGH", Lat: 35.793333, Lon: -78.87, AGL: 1200},
	}))
	require.NoError(t, store.ReplaceAirports(ctx, map[string]domain.Airport{
		"RDU": {Name: "RALEIGH-DURHAM INTL", Lat: 35.877639, Lon: -78.787472},
	}))
	require.NoError(t, store.ReplaceOutages(ctx, []domain.Outage{
		{Lat: 35.793333, Lon: -78.87, AGL: domain.Unknown, Text: "TOWER LGT OUT"},
	}))
	require.NoError(t, store.WriteMetadata(ctx, md))
	return dir
}

func TestParseDOF_TextFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "DOF.DAT")
	require.NoError(t, os.WriteFile(src, []byte(testDOF), 0o644))
	outDir := filepath.Join(dir, "out")

	out, err := execute(t, "parse-dof", src, "--out", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "with 1 obstacles")
	assert.Contains(t, out, "currency date 10/12/2025")

	data, err := os.ReadFile(filepath.Join(outDir, filestore.ObstaclesFile))
	require.NoError(t, err)
	var got []domain.Obstacle
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "37-012345", got[0].ID)
	assert.Equal(t, 1200, got[0].AGL)
}

func TestParseDOF_MinAGL(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "DOF.DAT")
	require.NoError(t, os.WriteFile(src, []byte(testDOF), 0o644))

	out, err := execute(t, "parse-dof", src, "--out", dir, "--min-agl", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "with 2 obstacles")
}

func TestParseDOF_ZipFile(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("DOF.DAT")
	require.NoError(t, err)
	_, err = w.Write([]byte(testDOF))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	dir := t.TempDir()
	src := filepath.Join(dir, "DAILY_DOF_DAT.ZIP")
	require.NoError(t, os.WriteFile(src, buf.Bytes(), 0o644))

	out, err := execute(t, "parse-dof", src, "--out", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "with 1 obstacles")
}

func TestParseDOF_MissingFile(t *testing.T) {
	_, err := execute(t, "parse-dof", filepath.Join(t.TempDir(), "nope.dat"))
	require.Error(t, err)
}

func TestValidate_Passes(t *testing.T) {
	dir := writeSnapshot(t, domain.Metadata{DOFDate: "10/12/2025", APTDate: "2025-10-02", APTCount: 1, OBSCount: 1})

	out, err := execute(t, "validate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "All validations passed.")
	assert.Contains(t, out, "Records: 1 obstacles, 1 airports, 1 outages")
}

func TestValidate_CountMismatch(t *testing.T) {
	dir := writeSnapshot(t, domain.Metadata{DOFDate: domain.Unknown, APTCount: 1, OBSCount: 5})

	out, err := execute(t, "validate", dir)
	require.ErrorIs(t, err, errValidationFailed)
	assert.Contains(t, out, "obs_count=5 but obstacles.json has 1 records")
	assert.Contains(t, out, "Validation FAILED.")
}

func TestValidate_MissingMetadata(t *testing.T) {
	_, err := execute(t, "validate", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metadata.json")
}

func TestValidateObstacles(t *testing.T) {
	p := validateObstacles([]domain.Obstacle{
		{ID: "A", Lat: 35, Lon: -78, AGL: 300},
		{ID: "B", Lat: 95, Lon: -78, AGL: 300},
		{ID: "C", Lat: 35, Lon: -200, AGL: 0},
	})
	require.Len(t, p.errors, 3)
	assert.True(t, strings.HasPrefix(p.errors[0], "obstacle B: lat"))
}

func TestValidateOutages(t *testing.T) {
	p := validateOutages([]domain.Outage{
		{Lat: 35, Lon: -78, AGL: "1200", Text: "TWR LGT OUT"},
		{Lat: 35, Lon: -78, AGL: "tall", Text: "TWR LGT OUT"},
	})
	require.Len(t, p.errors, 1)
	assert.Contains(t, p.errors[0], "outage 1")
}
