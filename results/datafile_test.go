package results

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

var testRows = []Row{
	{Run: 0, ArrivalRate: 0.1, ServiceRate: 1, SimulationTime: 1e6, ReturnTime: 2.5, HasReturned: true},
	{Run: 1, ArrivalRate: 0.1, ServiceRate: 1, SimulationTime: 1e6, ReturnTime: 1e6, HasReturned: false},
}

func TestWriteDataFile(t *testing.T) {
	c := qt.New(t)

	// nested directories are created on demand
	path := filepath.Join(c.TempDir(), "mm1q", "out", "1.dat")
	c.Assert(WriteDataFile(path, testRows), qt.IsNil)

	data, err := os.ReadFile(path)
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, strings.Join([]string{
		"#run\tlambda\tmu\tsimulationTime\treturnTime\thasReturned",
		"0\t0.100000\t1.000000\t1000000.000000\t2.500000\t1",
		"1\t0.100000\t1.000000\t1000000.000000\t1000000.000000\t0",
		"",
	}, "\n"))

	// rewriting into an existing directory truncates the file
	c.Assert(WriteDataFile(path, testRows[:1]), qt.IsNil)
	rows, err := ReadDataFile(path)
	c.Assert(err, qt.IsNil)
	c.Assert(rows, qt.DeepEquals, testRows[:1])
}

func TestReadDataFile(t *testing.T) {
	c := qt.New(t)
	dir := c.TempDir()

	path := filepath.Join(dir, "2.dat")
	c.Assert(WriteDataFile(path, testRows), qt.IsNil)
	rows, err := ReadDataFile(path)
	c.Assert(err, qt.IsNil)
	c.Assert(rows, qt.DeepEquals, testRows)

	testCases := []struct {
		name string
		body string
		want string
	}{
		{name: "columns", body: "0\t1\t2\n", want: `.*:1: expected 6 columns, got 3`},
		{name: "run", body: Header + "\nx\t1\t1\t1\t1\t0\n", want: `.*:2: run: .*`},
		{name: "float", body: "0\t1\tmu\t1\t1\t0\n", want: `.*:1: column 3: .*`},
		{name: "flag", body: "0\t1\t1\t1\t1\t2\n", want: `.*:1: hasReturned: unexpected value "2"`},
	}
	for _, tc := range testCases {
		c.Run(tc.name, func(c *qt.C) {
			p := filepath.Join(dir, tc.name+".dat")
			c.Assert(os.WriteFile(p, []byte(tc.body), 0o644), qt.IsNil)
			_, err := ReadDataFile(p)
			c.Assert(err, qt.ErrorMatches, tc.want)
		})
	}
}

func TestFileSink(t *testing.T) {
	c := qt.New(t)

	path := filepath.Join(c.TempDir(), "3.dat")
	r := &Report{Rows: testRows}
	c.Assert(FileSink{Path: path}.Write(context.Background(), r), qt.IsNil)
	c.Assert(r.Returned(), qt.Equals, 1)

	rows, err := ReadDataFile(path)
	c.Assert(err, qt.IsNil)
	c.Assert(rows, qt.HasLen, 2)
}
