// Package archive reads and writes the FASTA-like archive file format:
// a magic comment line, then one `>block_id:shard_index:byte_len` record
// per oligo, each followed by its base sequence.
package archive

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"helix/trellis"

	"github.com/pkg/errors"
)

// magicFormat is the format of the archive's first line, carrying the
// erasure shape and block size so a reader can configure its codecs before
// seeing any record.
const magicFormat = ">HELIX v1 N=%d K=%d BS=%d"

// MagicLine renders the archive's first line.
func MagicLine(dataShards, parityShards, blockSize int) string {
	return fmt.Sprintf(magicFormat, dataShards, parityShards, blockSize)
}

// ParseMagic parses the archive's first line back into its erasure shape.
func ParseMagic(line string) (dataShards, parityShards, blockSize int, err error) {
	var n, k, bs int
	if _, scanErr := fmt.Sscanf(line, magicFormat, &n, &k, &bs); scanErr != nil {
		return 0, 0, 0, errors.Wrap(scanErr, "archive: malformed magic line")
	}
	return n, k, bs, nil
}

// Record is one `>block_id:shard_index:byte_len` entry: a single oligo's
// base sequence and its address coordinates as carried in the header line
// (the address is also recoverable from the sequence itself, but the
// header copy lets tools like `search` filter without running the trellis
// codec). byte_len is the CRC-framed payload length in bytes; ordinary
// data shards can derive it from the magic line, but the distinguished
// metadata record's length varies with its contents, so every record
// carries it explicitly rather than special-casing one record's header.
type Record struct {
	BlockID    uint64
	ShardIndex int
	ByteLen    int
	Bases      trellis.Sequence
}

// Writer emits archive records to an underlying io.Writer in FASTA-like
// text form. It does not hold whole blocks: records go through a bufio
// buffer that spills to the underlying writer as it fills, and Flush
// pushes out whatever remains.
type Writer struct {
	w   *bufio.Writer
	err error
}

// NewWriter wraps w and immediately emits the magic line.
func NewWriter(w io.Writer, dataShards, parityShards, blockSize int) (*Writer, error) {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(MagicLine(dataShards, parityShards, blockSize) + "\n"); err != nil {
		return nil, errors.Wrap(err, "archive: write magic line")
	}
	return &Writer{w: bw}, nil
}

// WriteRecord appends one record. Data records may arrive in any order;
// the distinguished block_id=0,shard_index=0 metadata record must be the
// first record written, since pipeline.Decode reads it as the first record
// after the magic line.
func (w *Writer) WriteRecord(r Record) error {
	if w.err != nil {
		return w.err
	}
	if _, err := fmt.Fprintf(w.w, ">%d:%d:%d\n", r.BlockID, r.ShardIndex, r.ByteLen); err != nil {
		w.err = errors.Wrap(err, "archive: write record header")
		return w.err
	}
	if _, err := w.w.WriteString(r.Bases.String() + "\n"); err != nil {
		w.err = errors.Wrap(err, "archive: write record body")
		return w.err
	}
	return nil
}

// Flush pushes any buffered bytes to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	return errors.Wrap(w.w.Flush(), "archive: flush")
}

// Reader streams archive records one at a time without materializing the
// whole file, mirroring the decoder's unordered-strand-set model.
type Reader struct {
	sc                                  *bufio.Scanner
	DataShards, ParityShards, BlockSize int
}

// NewReader wraps r, parses the magic line, and positions the scanner at
// the first record header.
func NewReader(r io.Reader) (*Reader, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	if !sc.Scan() {
		return nil, errors.New("archive: empty archive, missing magic line")
	}
	n, k, bs, err := ParseMagic(sc.Text())
	if err != nil {
		return nil, err
	}
	return &Reader{sc: sc, DataShards: n, ParityShards: k, BlockSize: bs}, nil
}

// Next returns the next record, or io.EOF once the archive is exhausted.
func (r *Reader) Next() (Record, error) {
	var header string
	if r.sc.Scan() {
		header = r.sc.Text()
	} else {
		if err := r.sc.Err(); err != nil {
			return Record{}, errors.Wrap(err, "archive: scan record header")
		}
		return Record{}, io.EOF
	}

	if !strings.HasPrefix(header, ">") {
		return Record{}, errors.Errorf("archive: expected record header, got %q", header)
	}
	blockID, shardIndex, byteLen, err := parseHeader(header)
	if err != nil {
		return Record{}, err
	}

	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return Record{}, errors.Wrap(err, "archive: scan record body")
		}
		return Record{}, errors.Errorf("archive: record %s missing body", header)
	}
	bases, err := trellis.ParseSequence(r.sc.Text())
	if err != nil {
		return Record{}, errors.Wrapf(err, "archive: record %s", header)
	}

	return Record{BlockID: blockID, ShardIndex: shardIndex, ByteLen: byteLen, Bases: bases}, nil
}

func parseHeader(line string) (blockID uint64, shardIndex int, byteLen int, err error) {
	body := strings.TrimPrefix(line, ">")
	parts := strings.SplitN(body, ":", 3)
	if len(parts) != 3 {
		return 0, 0, 0, errors.Errorf("archive: malformed record header %q", line)
	}
	id, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0, 0, 0, errors.Wrapf(err, "archive: block id in %q", line)
	}
	idx, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, errors.Wrapf(err, "archive: shard index in %q", line)
	}
	byteLen, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, errors.Wrapf(err, "archive: byte length in %q", line)
	}
	return id, idx, byteLen, nil
}
