package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridinterp/internal/logging"
	"gridinterp/pkg/config"
	"gridinterp/pkg/interpolation"
	"gridinterp/pkg/records"
)

const oneSample = `# x,y,z,vx,vy,vz,t,q,bx,by,bz
# sensor run 1
1.0,0.0,0.0,0,0,0,0,0,4.5,5.5,6.5
`

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	args = append([]string{"-config", filepath.Join(t.TempDir(), "none.yaml")}, args...)
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRunSinglePlane(t *testing.T) {
	out, _, err := runCLI(t, oneSample)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 61*61)

	resolved := 0
	for _, l := range lines {
		if !strings.HasSuffix(l, ",*,*,*") {
			resolved++
		}
	}
	assert.Equal(t, 1, resolved)

	// z = 0 row, x = 0 and x = 1.
	assert.Equal(t, "0.0,0.0,0.0,*,*,*", lines[30*61+30])
	assert.Equal(t, "1.0,0.0,0.0,4.5,5.5,6.5", lines[30*61+40])
}

// The golden files hold the expected CSV for the default plane, byte for
// byte.
func TestRunGolden(t *testing.T) {
	for _, name := range []string{"single", "survey"} {
		t.Run(name, func(t *testing.T) {
			input := filepath.Join("testdata", name+".csv")
			want, err := os.ReadFile(filepath.Join("testdata", name+".golden"))
			require.NoError(t, err)

			out, _, err := runCLI(t, "", input)
			require.NoError(t, err)

			wantLines := strings.Split(string(want), "\n")
			gotLines := strings.Split(out, "\n")
			require.Len(t, gotLines, len(wantLines))
			for i := range wantLines {
				if wantLines[i] != gotLines[i] {
					t.Fatalf("line %d: got %q, want %q", i+1, gotLines[i], wantLines[i])
				}
			}
		})
	}
}

// A data set much smaller than the scan step puts most plane points in cells
// too far away to have a key; they are reported as unresolved.
func TestRunTinyExtent(t *testing.T) {
	out, _, err := runCLI(t, "1e-9,0,0,0,0,0,0,0,1,2,3\n")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 61*61)
	for _, l := range lines {
		require.True(t, strings.HasSuffix(l, ",*,*,*"), l)
	}
	assert.Equal(t, "3.0,0.0,0.0,*,*,*", lines[30*61+60])
}

func TestRunReadsFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	require.NoError(t, os.WriteFile(a, []byte(oneSample), 0644))
	require.NoError(t, os.WriteFile(b, []byte("-1,0,0,0,0,0,0,0,1,1,1\n"), 0644))

	out, stderr, err := runCLI(t, "", "-workers", "2", "-validate", a, b)
	require.NoError(t, err)
	assert.Contains(t, stderr, "cross validation")

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Equal(t, "1.0,0.0,0.0,4.5,5.5,6.5", lines[30*61+40])
	assert.Equal(t, "-1.0,0.0,0.0,1.0,1.0,1.0", lines[30*61+20])
}

type trackedInput struct {
	io.Reader
	name string
	open map[string]bool
}

func (f *trackedInput) Close() error {
	delete(f.open, f.name)
	return nil
}

func TestLoadClosesEachInput(t *testing.T) {
	open := make(map[string]bool)
	prev := openInput
	openInput = func(name string) (io.ReadCloser, error) {
		require.Empty(t, open, "%s opened while another input is still open", name)
		open[name] = true
		return &trackedInput{Reader: strings.NewReader(oneSample), name: name, open: open}, nil
	}
	t.Cleanup(func() { openInput = prev })

	ds := interpolation.New()
	require.NoError(t, load(ds, []string{"a.csv", "b.csv", "c.csv"}, nil, records.DefaultColumns(), logging.Noop()))
	assert.Empty(t, open)
	assert.Equal(t, 3, ds.Len())
}

func TestRunErrors(t *testing.T) {
	_, _, err := runCLI(t, "")
	assert.ErrorContains(t, err, "failed to build index")

	_, _, err = runCLI(t, "1,2\n")
	assert.ErrorContains(t, err, "stdin:1")

	_, _, err = runCLI(t, oneSample, filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorContains(t, err, "failed to open input")

	_, _, err = runCLI(t, oneSample, "-division", "-1", "-workers", "0")
	require.NoError(t, err)
}

func TestRunImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plane.png")
	_, _, err := runCLI(t, oneSample, "-image", path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRunWriteConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	_, _, err := runCLI(t, "", "-division", "7", "-write-config", path)
	require.NoError(t, err)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Index.Division)
}
