package seisio

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/copyleftdev/TREMOR/internal/errors"
)

// WriteFloats encodes data as little-endian IEEE-754 float32.
func WriteFloats(w io.Writer, data []float64) error {
	bw := bufio.NewWriter(w)
	var buf [4]byte
	for _, v := range data {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(float32(v)))
		if _, err := bw.Write(buf[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadFloats decodes len(dst) little-endian float32 values into dst.
func ReadFloats(r io.Reader, dst []float64) error {
	br := bufio.NewReader(r)
	var buf [4]byte
	for i := range dst {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			return err
		}
		dst[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[:])))
	}
	return nil
}

// ReadVelocity loads a velocity dataset. The header must carry the grid
// shape (n1 = nz, n2 = nx) and spacing (d1, d2); the payload is nz*nx
// float32 values with z fast, in m/s.
func ReadVelocity(path string) (data []float64, hdr Header, err error) {
	hdr, err = ReadHeader(path)
	if err != nil {
		return nil, nil, err
	}
	nz, err := hdr.Int("n1")
	if err != nil {
		return nil, nil, err
	}
	nx, err := hdr.Int("n2")
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open velocity %s", path)
	}
	defer f.Close()

	data = make([]float64, nz*nx)
	if err := ReadFloats(f, data); err != nil {
		return nil, nil, errors.Wrapf(err, "read velocity %s", path)
	}
	return data, hdr, nil
}

// ReadShotData loads an observed shot-gather dataset. The header carries
// the acquisition geometry; the payload is ns*nt*ng float32 values in
// (shot, time, receiver) order.
func ReadShotData(path string) (dobs []float64, hdr Header, err error) {
	hdr, err = ReadHeader(path)
	if err != nil {
		return nil, nil, err
	}
	nt, err := hdr.Int("n1")
	if err != nil {
		return nil, nil, err
	}
	ng, err := hdr.Int("n2")
	if err != nil {
		return nil, nil, err
	}
	ns, err := hdr.Int("n3")
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open shots %s", path)
	}
	defer f.Close()

	dobs = make([]float64, ns*nt*ng)
	if err := ReadFloats(f, dobs); err != nil {
		return nil, nil, errors.Wrapf(err, "read shots %s", path)
	}
	return dobs, hdr, nil
}

// VelocityWriter appends one velocity frame per outer iteration to an
// output dataset. The header, carrying the frame shape and the frame
// count, is written on Close.
type VelocityWriter struct {
	path   string
	hdr    Header
	file   *os.File
	frames int
}

// NewVelocityWriter truncates path and prepares it for appended frames of
// shape nz*nx with spacing dz, dx.
func NewVelocityWriter(path string, nz, nx int, dz, dx float64) (*VelocityWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "create %s", path)
	}
	hdr := Header{"unit": "m/s", "label1": "Depth", "label2": "Lateral"}
	hdr.PutInt("n1", nz)
	hdr.PutInt("n2", nx)
	hdr.PutFloat("d1", dz)
	hdr.PutFloat("d2", dx)
	return &VelocityWriter{path: path, hdr: hdr, file: f}, nil
}

// Append writes one frame (nz*nx values, z fast, m/s).
func (w *VelocityWriter) Append(frame []float64) error {
	if err := WriteFloats(w.file, frame); err != nil {
		return errors.Wrapf(err, "append frame to %s", w.path)
	}
	w.frames++
	return nil
}

// Close finalizes the payload and stamps the header with the frame count.
func (w *VelocityWriter) Close() error {
	w.hdr.PutInt("n3", w.frames)
	if err := WriteHeader(w.path, w.hdr); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
