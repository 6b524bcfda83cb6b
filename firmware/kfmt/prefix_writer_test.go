package kfmt

import (
	"bytes"
	"errors"
	"testing"
)

func TestPrefixWriter(t *testing.T) {
	specs := []struct {
		input string
		exp   string
	}{
		{
			"",
			"",
		},
		{
			"\n",
			"[fw] \n",
		},
		{
			"no line break anywhere",
			"[fw] no line break anywhere",
		},
		{
			"line feed at the end\n",
			"[fw] line feed at the end\n",
		},
		{
			"\nreserved high table\nwrote table\nentries=2\nbytes=108",
			"[fw] \n[fw] reserved high table\n[fw] wrote table\n[fw] entries=2\n[fw] bytes=108",
		},
	}

	var buf bytes.Buffer

	for specIndex, spec := range specs {
		buf.Reset()
		w := PrefixWriter{
			Sink:   &buf,
			Prefix: []byte("[fw] "),
		}

		wrote, err := w.Write([]byte(spec.input))
		if err != nil {
			t.Errorf("[spec %d] unexpected error: %v", specIndex, err)
		}

		if expLen := len(spec.input); expLen != wrote {
			t.Errorf("[spec %d] expected writer to write %d bytes; wrote %d", specIndex, expLen, wrote)
		}

		if got := buf.String(); got != spec.exp {
			t.Errorf("[spec %d] expected output:\n%q\ngot:\n%q", specIndex, spec.exp, got)
		}
	}
}

func TestPrefixWriterAcrossWrites(t *testing.T) {
	var buf bytes.Buffer
	w := PrefixWriter{Sink: &buf, Prefix: []byte("> ")}

	for _, chunk := range []string{"abc", "def\ngh", "i\n", "j"} {
		if _, err := w.Write([]byte(chunk)); err != nil {
			t.Fatal(err)
		}
	}

	if exp, got := "> abcdef\n> ghi\n> j", buf.String(); got != exp {
		t.Fatalf("expected output %q; got %q", exp, got)
	}
}

func TestPrefixWriterErrors(t *testing.T) {
	expErr := errors.New("write failed")

	specs := []struct {
		failAt int
		input  string
		expN   int
	}{
		// the prefix write fails
		{0, "hello\n", 0},
		// the first line write fails
		{1, "hello\n", 0},
		// the second prefix write fails
		{2, "hello\nworld", 6},
	}

	for specIndex, spec := range specs {
		w := PrefixWriter{
			Sink:   &failingWriter{failAt: spec.failAt, err: expErr},
			Prefix: []byte("prefix: "),
		}

		n, err := w.Write([]byte(spec.input))
		if err != expErr {
			t.Errorf("[spec %d] expected error %v; got %v", specIndex, expErr, err)
		}

		if n != spec.expN {
			t.Errorf("[spec %d] expected %d bytes written; got %d", specIndex, spec.expN, n)
		}
	}
}

type failingWriter struct {
	calls  int
	failAt int
	err    error
}

func (w *failingWriter) Write(p []byte) (int, error) {
	defer func() { w.calls++ }()
	if w.calls == w.failAt {
		return 0, w.err
	}
	return len(p), nil
}
