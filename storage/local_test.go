package storage_test

import (
	"context"
	"io"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"regportal-go/storage"
)

func TestLocal_PutOpenRemove(t *testing.T) {
	c := qt.New(t)

	store, err := storage.NewLocal(t.TempDir(), 0)
	c.Assert(err, qt.IsNil)

	obj, err := store.Put(context.Background(), "Monthly Return.XLSX", strings.NewReader("hello"))
	c.Assert(err, qt.IsNil)
	c.Assert(obj.Size, qt.Equals, int64(5))
	c.Assert(obj.Path, qt.Matches, `\d{4}/\d{2}/[0-9a-f-]{36}\.xlsx`)
	c.Assert(obj.Checksum, qt.HasLen, 64)

	rc, err := store.Open(obj.Path)
	c.Assert(err, qt.IsNil)
	data, err := io.ReadAll(rc)
	c.Assert(err, qt.IsNil)
	c.Assert(rc.Close(), qt.IsNil)
	c.Assert(string(data), qt.Equals, "hello")

	c.Assert(store.Remove(obj.Path), qt.IsNil)
	_, err = store.Open(obj.Path)
	c.Assert(err, qt.IsNotNil)
	c.Assert(store.Remove(obj.Path), qt.IsNil)
}

func TestLocal_SameContentSameChecksum(t *testing.T) {
	c := qt.New(t)

	store, err := storage.NewLocal(t.TempDir(), 0)
	c.Assert(err, qt.IsNil)

	a, err := store.Put(context.Background(), "a.csv", strings.NewReader("x,y"))
	c.Assert(err, qt.IsNil)
	b, err := store.Put(context.Background(), "b.csv", strings.NewReader("x,y"))
	c.Assert(err, qt.IsNil)
	c.Assert(a.Checksum, qt.Equals, b.Checksum)
	c.Assert(a.Path, qt.Not(qt.Equals), b.Path)
}

func TestLocal_SizeCap(t *testing.T) {
	c := qt.New(t)

	store, err := storage.NewLocal(t.TempDir(), 4)
	c.Assert(err, qt.IsNil)

	_, err = store.Put(context.Background(), "big.xlsx", strings.NewReader("12345"))
	c.Assert(err, qt.ErrorIs, storage.ErrTooLarge)

	obj, err := store.Put(context.Background(), "ok.xlsx", strings.NewReader("1234"))
	c.Assert(err, qt.IsNil)
	c.Assert(obj.Size, qt.Equals, int64(4))
}

func TestLocal_RejectsEscapingPaths(t *testing.T) {
	c := qt.New(t)

	store, err := storage.NewLocal(t.TempDir(), 0)
	c.Assert(err, qt.IsNil)

	_, err = store.Open("../../etc/passwd")
	c.Assert(err, qt.ErrorMatches, "invalid storage path.*")
	c.Assert(store.Remove("/etc/passwd"), qt.ErrorMatches, "invalid storage path.*")
}
