package store

import (
	"encoding/binary"
	"io"
	"testing"
)

func TestFileTreeCollectionRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c, err := Create(KindFileTree, dir)
	if err != nil {
		t.Fatal(err)
	}
	g := c.Group("dsk")
	col, err := g.CreateCollection("solid", 10)
	if err != nil {
		t.Fatal(err)
	}
	col.Metadata().SetInt("kmer_size", 4)
	for i := 0; i < 5; i++ {
		rec := make([]byte, 10)
		binary.LittleEndian.PutUint64(rec, uint64(i))
		if err := col.Append(rec); err != nil {
			t.Fatal(err)
		}
	}
	if err := col.Seal(); err != nil {
		t.Fatal(err)
	}

	r, err := g.OpenCollection("solid")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if k, ok := r.Metadata().Int("kmer_size"); !ok || k != 4 {
		t.Fatalf("kmer_size = %v,%v, want 4,true", k, ok)
	}
	count := 0
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		if got := binary.LittleEndian.Uint64(rec); got != uint64(count) {
			t.Fatalf("record %d = %d, want %d", count, got, count)
		}
		count++
	}
	if count != 5 {
		t.Fatalf("read %d records, want 5", count)
	}
}

func TestFileTreeVariableLengthRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c, err := Create(KindFileTree, dir)
	if err != nil {
		t.Fatal(err)
	}
	g := c.Group("bcalm")
	col, err := g.CreateCollection("unitigs", 0)
	if err != nil {
		t.Fatal(err)
	}
	records := [][]byte{[]byte("AATGC"), []byte("A"), []byte("AGGCGCTAGGGTAGAGGATGATGA")}
	for _, r := range records {
		if err := col.Append(r); err != nil {
			t.Fatal(err)
		}
	}
	if err := col.Seal(); err != nil {
		t.Fatal(err)
	}
	r, err := g.OpenCollection("unitigs")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	for i, want := range records {
		got, err := r.Next()
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != string(want) {
			t.Fatalf("record %d = %q, want %q", i, got, want)
		}
	}
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestHDF5LikeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/container.db"
	c, err := Create(KindHDF5Like, path)
	if err != nil {
		t.Fatal(err)
	}
	g := c.Group("dsk")
	col, err := g.CreateCollection("solid", 4)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		rec := make([]byte, 4)
		binary.LittleEndian.PutUint32(rec, uint32(i*7))
		if err := col.Append(rec); err != nil {
			t.Fatal(err)
		}
	}
	if err := col.Seal(); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	c2, err := Open(KindHDF5Like, path)
	if err != nil {
		t.Fatal(err)
	}
	r, err := c2.Group("dsk").OpenCollection("solid")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	for i := 0; i < 3; i++ {
		rec, err := r.Next()
		if err != nil {
			t.Fatal(err)
		}
		if got := binary.LittleEndian.Uint32(rec); got != uint32(i*7) {
			t.Fatalf("record %d = %d, want %d", i, got, i*7)
		}
	}
}

func TestPartitionedSortedMerge(t *testing.T) {
	dir := t.TempDir()
	c, err := Create(KindFileTree, dir)
	if err != nil {
		t.Fatal(err)
	}
	g := c.Group("dsk")
	pt, err := g.CreatePartitioned("solid", 2, 8)
	if err != nil {
		t.Fatal(err)
	}
	data := [][]uint64{{1, 4, 9}, {2, 3, 10}}
	for p, vals := range data {
		for _, v := range vals {
			rec := make([]byte, 8)
			binary.LittleEndian.PutUint64(rec, v)
			if err := pt.Writer(p).Append(rec); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := pt.SealAll(); err != nil {
		t.Fatal(err)
	}
	readers, err := g.OpenPartitioned("solid", 2)
	if err != nil {
		t.Fatal(err)
	}
	merged, err := SortedMerge(readers, func(a, b []byte) bool {
		return binary.LittleEndian.Uint64(a) < binary.LittleEndian.Uint64(b)
	})
	if err != nil {
		t.Fatal(err)
	}
	var got []uint64
	for {
		rec, _, err := merged.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, binary.LittleEndian.Uint64(rec))
	}
	want := []uint64{1, 2, 3, 4, 9, 10}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestSchemaMismatch(t *testing.T) {
	dir := t.TempDir()
	c, err := Create(KindFileTree, dir)
	if err != nil {
		t.Fatal(err)
	}
	col, err := c.Group("g").CreateCollection("x", 8)
	if err != nil {
		t.Fatal(err)
	}
	if err := col.Append([]byte("short")); err == nil {
		t.Fatal("expected ErrSchemaMismatch for wrong record size")
	}
}
