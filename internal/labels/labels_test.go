package labels

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     Header
		wantBody string
	}{
		{
			name: "full header",
			input: `# Name: readmission
# Source: https://example.com/cohort
# Kind: truth

1 1 0`,
			want: Header{
				Name:   "readmission",
				Source: "https://example.com/cohort",
				Kind:   "truth",
			},
			wantBody: "1 1 0",
		},
		{
			name:     "no header",
			input:    "1,0,1\n0,1\n",
			wantBody: "1,0,1\n0,1",
		},
		{
			name:  "header only",
			input: "# Kind: pred\n",
			want:  Header{Kind: "pred"},
		},
		{
			name:     "unknown keys ignored",
			input:    "# Owner: ml-team\n#Kind:scores\n0.5",
			want:     Header{Kind: "scores"},
			wantBody: "0.5",
		},
		{
			name:  "crlf header directly before body",
			input: "# Name: readmission\r\n# Source: cohort\r\n# Kind: truth\r\n1 0 1\r\n",
			want: Header{
				Name:   "readmission",
				Source: "cohort",
				Kind:   "truth",
			},
			wantBody: "1 0 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, body, err := ParseHeader(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestLoadFile_CRLF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "y_true.txt")
	content := "# Name: readmission\r\n# Kind: truth\r\n1 0\r\n1*2\r\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	seq, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "readmission", seq.Name)
	assert.Equal(t, []int{1, 0, 1, 1}, seq.Labels)
}

func TestParseLabels(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{name: "spaces", input: "1 0 1", want: []int{1, 0, 1}},
		{name: "commas and newlines", input: "1,0,\n1,1", want: []int{1, 0, 1, 1}},
		{name: "runs", input: "1*3 0*2", want: []int{1, 1, 1, 0, 0}},
		{name: "list notation", input: "[1]*2 + [0]*1", want: []int{1, 1, 0}},
		{name: "empty run", input: "1*0 0", want: []int{0}},
		{name: "out of range kept", input: "2 -1", want: []int{2, -1}},
		{name: "not a number", input: "1 x 0", wantErr: true},
		{name: "bad count", input: "1*y", wantErr: true},
		{name: "negative count", input: "1*-2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLabels(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseScores(t *testing.T) {
	got, err := ParseScores("0.1, 0.9\n0.5 1e-3")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0.1, 0.9, 0.5, 0.001}, got, 1e-6)

	_, err = ParseScores("0.1 high")
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "y_true.txt")
	content := `# Name: readmission
# Kind: truth

1*2
0*3`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	seq, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "y_true", seq.ID)
	assert.Equal(t, "readmission", seq.Name)
	assert.Equal(t, "truth", seq.Kind)
	assert.Equal(t, []int{1, 1, 0, 0, 0}, seq.Labels)
}

func TestLoadFile_Sample(t *testing.T) {
	yTrue, yPred := Sample()

	truth, err := LoadFile("../../testdata/sample/y_true.txt")
	require.NoError(t, err)
	pred, err := LoadFile("../../testdata/sample/y_pred.txt")
	require.NoError(t, err)

	assert.Equal(t, yTrue, truth.Labels)
	assert.Equal(t, yPred, pred.Labels)
}

func TestLoadFile_NotFound(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"a.txt", "b.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("1 0"), 0o644))
	}
	// Non-txt files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Readme"), 0o644))

	seqs, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Len(t, seqs, 2)
}

func TestLoadScores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.txt")
	require.NoError(t, os.WriteFile(path, []byte("# Kind: scores\n0.2\n0.8\n"), 0o644))

	scores, err := LoadScores(path)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0.2, 0.8}, scores, 1e-6)
}

func TestLoadFeatures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    [][]float32
		wantErr bool
	}{
		{
			name:    "with header",
			content: "age,bmi\n61,27.5\n45,31\n",
			want:    [][]float32{{61, 27.5}, {45, 31}},
		},
		{
			name:    "without header",
			content: "1,2,3\n4,5,6\n",
			want:    [][]float32{{1, 2, 3}, {4, 5, 6}},
		},
		{
			name:    "comments skipped",
			content: "# exported 2026-10-01\n1, 2\n",
			want:    [][]float32{{1, 2}},
		},
		{
			name:    "bad value after first row",
			content: "1,2\n3,x\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "features.csv")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			got, err := LoadFeatures(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSample(t *testing.T) {
	yTrue, yPred := Sample()

	require.Len(t, yTrue, 1000)
	require.Len(t, yPred, 1000)

	var tp, fp, fn, tn int
	for i := range yTrue {
		switch {
		case yTrue[i] == 1 && yPred[i] == 1:
			tp++
		case yTrue[i] == 0 && yPred[i] == 1:
			fp++
		case yTrue[i] == 1:
			fn++
		default:
			tn++
		}
	}
	assert.Equal(t, [4]int{150, 50, 50, 750}, [4]int{tp, fp, fn, tn})
}

func TestConcat(t *testing.T) {
	assert.Equal(t, []int{1, 1, 0}, Concat(Repeat(1, 2), Repeat(0, 1)))
	assert.Empty(t, Concat())
}
