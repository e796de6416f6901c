package salary

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/salary-panel/internal/dataset"
	"github.com/stitts-dev/salary-panel/pkg/utils"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		cell     string
		divisor  string
		expected float64
		wantErr  bool
	}{
		{name: "hoopshype thousands", cell: "$1,234,567", divisor: "hoopshype", expected: 1234.567},
		{name: "espn hundred thousands", cell: "$19,610,000", divisor: "espn", expected: 196.1},
		{name: "no currency symbol", cell: "845,000", divisor: "hoopshype", expected: 845},
		{name: "surrounding whitespace", cell: " $1,000 ", divisor: "hoopshype", expected: 1},
		{name: "zero salary", cell: "$0", divisor: "hoopshype", expected: 0},
		{name: "text", cell: "N/A", divisor: "hoopshype", wantErr: true},
		{name: "bare symbol", cell: "$", divisor: "espn", wantErr: true},
		{name: "negative", cell: "-$5,000", divisor: "espn", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			divisor := HoopshypeDivisor
			if tt.divisor == "espn" {
				divisor = ESPNDivisor
			}
			got, err := ParseAmount(tt.cell, divisor)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestHoopshypeSalaryColumn(t *testing.T) {
	h := Hoopshype{}
	assert.Equal(t, "2014/15(*)", h.SalaryColumn(2014))
	assert.Equal(t, "2000/01(*)", h.SalaryColumn(2000))
	assert.Equal(t, "2009/10(*)", h.SalaryColumn(2009))
	assert.Equal(t, "2023/24", h.SalaryColumn(2023))
}

func TestHoopshypeNormalize(t *testing.T) {
	raw := `,Player,2014/15,2014/15(*)
1,Kobe Bryant,"$23,500,000","$29,533,920"
2,Amar'e Stoudemire,"$23,410,988","$29,421,609"
3,Unsigned Guy,,
4,Kobe Bryant,"$1,000","$1,000"
`
	table, err := dataset.ReadCSV(strings.NewReader(raw), 2014)
	require.NoError(t, err)

	records, err := Hoopshype{}.Normalize(table)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Kobe Bryant", records[0].Name)
	assert.Equal(t, "", records[0].Position)
	assert.Equal(t, 2014, records[0].Season)
	assert.Equal(t, 29533.92, records[0].Salary)
	assert.Equal(t, "Amar'e Stoudemire", records[1].Name)
}

func TestHoopshypeNormalizeMalformedFails(t *testing.T) {
	raw := ",Player,2010/11(*)\n1,Somebody,\"$12,x00\"\n"
	table, err := dataset.ReadCSV(strings.NewReader(raw), 2010)
	require.NoError(t, err)

	_, err = Hoopshype{}.Normalize(table)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrMalformedSalary))
	assert.Contains(t, err.Error(), "Somebody")
	assert.Contains(t, err.Error(), "season 2010")
}

func TestHoopshypeNormalizeMissingColumn(t *testing.T) {
	raw := ",Player,2010/11\n1,Somebody,\"$12,000\"\n"
	table, err := dataset.ReadCSV(strings.NewReader(raw), 2010)
	require.NoError(t, err)

	_, err = Hoopshype{}.Normalize(table)
	assert.True(t, errors.Is(err, utils.ErrMissingColumn))
}

func TestESPNLoadAndNormalize(t *testing.T) {
	raw := `0,1,2,3
RK,NAME,TEAM,SALARY
1,"Kevin Garnett, PF",Minnesota Timberwolves,"$19,610,000"
2,"Shaquille O'Neal, C",Los Angeles Lakers,"$17,142,000"
RK,NAME,TEAM,SALARY
3,Mystery Player,Boston Celtics,"$500,000"
`
	dir := t.TempDir()
	path := dataset.SalaryPath(dir, "espn", 2000)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	src, err := NewSource("espn")
	require.NoError(t, err)

	table, err := src.Load(dir, 2000)
	require.NoError(t, err)

	records, err := src.Normalize(table)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "Kevin Garnett", records[0].Name)
	assert.Equal(t, "PF", records[0].Position)
	assert.Equal(t, 196.1, records[0].Salary)
	assert.Equal(t, "Shaquille O'Neal", records[1].Name)
	assert.Equal(t, "C", records[1].Position)
	assert.Equal(t, "Mystery Player", records[2].Name)
	assert.Equal(t, "", records[2].Position)
	assert.Equal(t, 5.0, records[2].Salary)
}

func TestSplitNamePosition(t *testing.T) {
	name, pos := SplitNamePosition("LeBron James, SF")
	assert.Equal(t, "LeBron James", name)
	assert.Equal(t, "SF", pos)

	name, pos = SplitNamePosition("Nene")
	assert.Equal(t, "Nene", name)
	assert.Equal(t, "", pos)
}

func TestNewSourceRejectsUnknown(t *testing.T) {
	_, err := NewSource("spotrac")
	assert.Error(t, err)
}
