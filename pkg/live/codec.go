package live

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/recera/knowledgemap/pkg/vango/vdom"
)

// maxLength bounds every decoded length so a corrupt frame cannot force a
// huge allocation
const maxLength = 1 << 24

var errTooLong = errors.New("length exceeds frame limit")

// Encoder handles encoding of live protocol messages
type Encoder struct {
	w   io.Writer
	err error
}

// NewEncoder creates a new encoder
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Err returns the first write error
func (e *Encoder) Err() error { return e.err }

// WriteUvarint writes an unsigned varint
func (e *Encoder) WriteUvarint(v uint64) error {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], v)
	return e.WriteBytes(buf[:n])
}

// WriteString writes a length-prefixed string
func (e *Encoder) WriteString(s string) error {
	if err := e.WriteUvarint(uint64(len(s))); err != nil {
		return err
	}
	return e.WriteBytes([]byte(s))
}

// WriteBytes writes raw bytes
func (e *Encoder) WriteBytes(b []byte) error {
	if e.err != nil {
		return e.err
	}
	_, e.err = e.w.Write(b)
	return e.err
}

// Decoder handles decoding of live protocol messages
type Decoder struct {
	r io.Reader
}

// NewDecoder creates a new decoder
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// ReadUvarint reads an unsigned varint
func (d *Decoder) ReadUvarint() (uint64, error) {
	return binary.ReadUvarint(d)
}

// ReadByte implements io.ByteReader
func (d *Decoder) ReadByte() (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadLength reads a uvarint used as a count or size
func (d *Decoder) ReadLength() (int, error) {
	n, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if n > maxLength {
		return 0, errTooLong
	}
	return int(n), nil
}

// ReadString reads a length-prefixed string
func (d *Decoder) ReadString() (string, error) {
	length, err := d.ReadLength()
	if err != nil {
		return "", err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// EncodeControl encodes a control frame: the message name followed by
// uvarint arguments
func EncodeControl(name string, args ...uint64) []byte {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	enc.WriteBytes([]byte{byte(FrameControl)})
	enc.WriteString(name)
	for _, a := range args {
		enc.WriteUvarint(a)
	}
	return buf.Bytes()
}

// DecodeControl decodes a control frame into its name and arguments
func DecodeControl(data []byte) (string, []uint64, error) {
	if len(data) == 0 || MessageType(data[0]) != FrameControl {
		return "", nil, errors.New("not a control frame")
	}
	dec := NewDecoder(bytes.NewReader(data[1:]))
	name, err := dec.ReadString()
	if err != nil {
		return "", nil, fmt.Errorf("control name: %w", err)
	}
	var args []uint64
	for {
		v, err := dec.ReadUvarint()
		if err == io.EOF {
			return name, args, nil
		}
		if err != nil {
			return "", nil, fmt.Errorf("control argument: %w", err)
		}
		args = append(args, v)
	}
}

// EncodePatches encodes patches to binary format.
//
// Frame layout: frame type, uvarint patch count, then per patch the opcode,
// the path (uvarint length and indices) and the operands of the opcode.
func EncodePatches(patches []vdom.Patch) ([]byte, error) {
	var buf bytes.Buffer
	encoder := NewEncoder(&buf)

	// Write frame type
	encoder.WriteBytes([]byte{byte(FramePatches)})

	// Write patch count
	encoder.WriteUvarint(uint64(len(patches)))

	for _, patch := range patches {
		encoder.WriteBytes([]byte{byte(patch.Op)})
		encoder.WriteUvarint(uint64(len(patch.Path)))
		for _, i := range patch.Path {
			encoder.WriteUvarint(uint64(i))
		}

		switch patch.Op {
		case vdom.OpReplaceText:
			encoder.WriteString(patch.Value)

		case vdom.OpSetAttribute:
			encoder.WriteString(patch.Key)
			encoder.WriteString(patch.Value)

		case vdom.OpRemoveAttribute:
			encoder.WriteString(patch.Key)

		case vdom.OpRemoveNode:

		case vdom.OpInsertNode, vdom.OpReplaceNode:
			if patch.Node == nil {
				return nil, fmt.Errorf("%s without node", patch)
			}
			encodeNode(encoder, patch.Node)

		default:
			return nil, fmt.Errorf("unknown patch op %d", patch.Op)
		}
	}

	if err := encoder.Err(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeNode writes a tree with fragments flattened into their parents.
// Elements carry their attributes in name order.
func encodeNode(e *Encoder, n *vdom.VNode) {
	e.WriteBytes([]byte{byte(n.Kind)})
	switch n.Kind {
	case vdom.KindText:
		e.WriteString(n.Text)
		return
	case vdom.KindElement:
		e.WriteString(n.Tag)
		keys := n.Props.Keys()
		attrs := keys[:0:0]
		for _, k := range keys {
			if k == "ref" {
				continue
			}
			attrs = append(attrs, k)
		}
		e.WriteUvarint(uint64(len(attrs)))
		for _, k := range attrs {
			v, _ := n.Attr(k)
			e.WriteString(k)
			e.WriteString(v)
		}
	}

	kids := vdom.Flatten(n.Kids)
	e.WriteUvarint(uint64(len(kids)))
	for i := range kids {
		encodeNode(e, &kids[i])
	}
}

// DecodePatches decodes a patch frame
func DecodePatches(data []byte) ([]vdom.Patch, error) {
	if len(data) == 0 || MessageType(data[0]) != FramePatches {
		return nil, errors.New("not a patch frame")
	}
	dec := NewDecoder(bytes.NewReader(data[1:]))

	count, err := dec.ReadLength()
	if err != nil {
		return nil, fmt.Errorf("patch count: %w", err)
	}

	patches := make([]vdom.Patch, 0, count)
	for i := 0; i < count; i++ {
		p, err := decodePatch(dec)
		if err != nil {
			return nil, fmt.Errorf("patch %d: %w", i, err)
		}
		patches = append(patches, p)
	}
	return patches, nil
}

func decodePatch(dec *Decoder) (vdom.Patch, error) {
	op, err := dec.ReadByte()
	if err != nil {
		return vdom.Patch{}, err
	}
	p := vdom.Patch{Op: vdom.PatchOp(op)}

	depth, err := dec.ReadLength()
	if err != nil {
		return p, err
	}
	p.Path = make([]int, depth)
	for i := range p.Path {
		if p.Path[i], err = dec.ReadLength(); err != nil {
			return p, err
		}
	}

	switch p.Op {
	case vdom.OpReplaceText:
		p.Value, err = dec.ReadString()
	case vdom.OpSetAttribute:
		if p.Key, err = dec.ReadString(); err == nil {
			p.Value, err = dec.ReadString()
		}
	case vdom.OpRemoveAttribute:
		p.Key, err = dec.ReadString()
	case vdom.OpRemoveNode:
	case vdom.OpInsertNode, vdom.OpReplaceNode:
		p.Node, err = decodeNode(dec)
	default:
		err = fmt.Errorf("unknown patch op %d", op)
	}
	return p, err
}

func decodeNode(dec *Decoder) (*vdom.VNode, error) {
	kind, err := dec.ReadByte()
	if err != nil {
		return nil, err
	}

	switch vdom.VKind(kind) {
	case vdom.KindText:
		text, err := dec.ReadString()
		if err != nil {
			return nil, err
		}
		return vdom.NewText(text), nil

	case vdom.KindElement:
		tag, err := dec.ReadString()
		if err != nil {
			return nil, err
		}
		n, err := dec.ReadLength()
		if err != nil {
			return nil, err
		}
		props := make(vdom.Props, n)
		for i := 0; i < n; i++ {
			k, err := dec.ReadString()
			if err != nil {
				return nil, err
			}
			v, err := dec.ReadString()
			if err != nil {
				return nil, err
			}
			props[k] = v
		}
		kids, err := decodeKids(dec)
		if err != nil {
			return nil, err
		}
		return vdom.NewElement(tag, props, kids...), nil

	case vdom.KindFragment:
		kids, err := decodeKids(dec)
		if err != nil {
			return nil, err
		}
		return vdom.NewFragment(kids...), nil
	}
	return nil, fmt.Errorf("unknown node kind %d", kind)
}

func decodeKids(dec *Decoder) ([]*vdom.VNode, error) {
	n, err := dec.ReadLength()
	if err != nil {
		return nil, err
	}
	kids := make([]*vdom.VNode, 0, n)
	for i := 0; i < n; i++ {
		kid, err := decodeNode(dec)
		if err != nil {
			return nil, err
		}
		kids = append(kids, kid)
	}
	return kids, nil
}
