package flagship

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// snapshotObject builds a snapshot JSON object with header fields (like the
// schema version) written before the fields of the State. The first error
// sticks and is returned by bytes.
type snapshotObject struct {
	buf bytes.Buffer
	n   int // fields written
	err error
}

func (o *snapshotObject) sep() {
	if o.n > 0 {
		o.buf.WriteByte(',')
	}
	o.n++
}

// set writes one field.
func (o *snapshotObject) set(key string, value any) {
	if o.err != nil {
		return
	}
	b, err := json.Marshal(value)
	if err != nil {
		o.err = fmt.Errorf("cannot encode %q: %w", key, err)
		return
	}
	o.sep()
	o.buf.WriteString(strconv.Quote(key))
	o.buf.WriteByte(':')
	o.buf.Write(b)
}

// merge writes every field of v, which must encode as a JSON object.
func (o *snapshotObject) merge(v any) {
	if o.err != nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		o.err = fmt.Errorf("cannot encode snapshot body: %w", err)
		return
	}
	b = bytes.TrimSpace(b)
	if len(b) < 2 || b[0] != '{' || b[len(b)-1] != '}' {
		o.err = fmt.Errorf("snapshot body is not an object: %.20s", b)
		return
	}
	if fields := bytes.TrimSpace(b[1 : len(b)-1]); len(fields) > 0 {
		o.sep()
		o.buf.Write(fields)
	}
}

func (o *snapshotObject) bytes() ([]byte, error) {
	if o.err != nil {
		return nil, o.err
	}
	out := make([]byte, 0, o.buf.Len()+2)
	out = append(out, '{')
	out = append(out, o.buf.Bytes()...)
	return append(out, '}'), nil
}
