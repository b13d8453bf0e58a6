package main

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/funny-falcon/runlen/runlen"
)

type LoadStats struct {
	Files     int
	Sequences int
	Values    int
	Runs      int
	Sum       uint64
}

// Load counts every sequence of every member of a zip archive. Members are
// documents of the form {"sequences": [[1, 2], [3]]}. If dump is not nil,
// the counts of each sequence are written to it one JSON array per line.
func Load(path string, counter runlen.Counter, dump io.Writer) (LoadStats, error) {
	var st LoadStats
	rdr, err := zip.OpenReader(path)
	if err != nil {
		return st, err
	}
	defer rdr.Close()

	var out *jsoniter.Stream
	if dump != nil {
		out = jsoniter.NewStream(jsonConfig, dump, 128*1024)
	}
	for _, f := range rdr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if err := loadFile(f, counter, out, &st); err != nil {
			return st, fmt.Errorf("load %s: %w", f.Name, err)
		}
		logf("loaded %s: %d sequences so far", f.Name, st.Sequences)
	}
	if out != nil {
		if err := out.Flush(); err != nil {
			return st, fmt.Errorf("dump: %w", err)
		}
	}
	return st, nil
}

func loadFile(f *zip.File, counter runlen.Counter, out *jsoniter.Stream, st *LoadStats) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return loadSequences(rc, counter, out, st)
}

func loadSequences(r io.Reader, counter runlen.Counter, out *jsoniter.Stream, st *LoadStats) error {
	iter := jsoniter.Parse(jsonConfig, r, 256*1024)
	found := false
	for attr := iter.ReadObject(); attr != ""; attr = iter.ReadObject() {
		switch attr {
		case "sequences":
			found = true
			if err := readSequences(iter, counter, out, st); err != nil {
				return err
			}
		default:
			iter.Skip()
		}
	}
	if iter.Error != nil && iter.Error != io.EOF {
		return iter.Error
	}
	if !found {
		return errors.New("no sequences")
	}
	st.Files++
	return nil
}

func readSequences(iter *jsoniter.Iterator, counter runlen.Counter, out *jsoniter.Stream, st *LoadStats) error {
	var seq []uint32
	for iter.ReadArray() {
		seq = seq[:0]
		for iter.ReadArray() {
			seq = append(seq, iter.ReadUint32())
		}
		if iter.Error != nil {
			return iter.Error
		}
		counts := counter.Count(seq)
		st.Sequences++
		st.Values += len(seq)
		st.Runs += len(counts)
		st.Sum += counts.Sum()
		if out != nil {
			writeCounts(out, counts)
			out.WriteRaw("\n")
			if out.Error != nil {
				return fmt.Errorf("dump: %w", out.Error)
			}
		}
	}
	return iter.Error
}
