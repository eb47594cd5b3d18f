package pipeline

import (
	"context"
	"crypto/rand"
	"io"
	"sync"

	"helix"
	"helix/archive"
	"helix/block"
	"helix/compress"
	"helix/crypto"
	"helix/internal/diag"
	"helix/internal/queue"
	"helix/internal/workerpool"
	"helix/oligo"
	"helix/rs"
	"helix/stability"

	"github.com/pkg/errors"
)

const globalSaltLen = 16
const blockSaltLen = 16

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, errors.Wrap(err, "crypto/rand: draw random bytes")
	}
	return b, nil
}

// Encode reads plaintext from in, encrypts and erasure-codes it in
// BlockSize blocks under passphrase, and writes the resulting FASTA-like
// archive to out. Block 0 carries the bootstrap metadata (global salt,
// primers, stability windows) that Decode needs before it can process
// anything else.
func Encode(ctx context.Context, in io.Reader, out io.Writer, passphrase string, cfg Config) (*helix.Stats, error) {
	if err := cfg.validate(); err != nil {
		return nil, helix.Tag(helix.ErrStructural, err)
	}

	globalSalt, err := randomBytes(globalSaltLen)
	if err != nil {
		return nil, helix.Tag(helix.ErrKDF, err)
	}
	masterKey := crypto.MasterKey(passphrase, globalSalt, cfg.KDFParams)

	rsCodec, err := rs.NewCodec(cfg.rsConfig())
	if err != nil {
		return nil, helix.Tag(helix.ErrStructural, err)
	}
	shardBases := shardBudget(cfg.BlockSize, cfg.DataShards)

	aw, err := archive.NewWriter(out, cfg.DataShards, cfg.ParityShards, cfg.BlockSize)
	if err != nil {
		return nil, helix.Tag(helix.ErrOutputIO, err)
	}

	meta := block.Meta{
		GlobalSalt:     globalSalt,
		PrimerFwd:      cfg.FwdPrimer.String(),
		PrimerRev:      cfg.RevPrimer.String(),
		GCMin:          cfg.Stability.GCWindow.Min,
		GCMax:          cfg.Stability.GCWindow.Max,
		TmMin:          cfg.Stability.TmWindow.Min,
		TmMax:          cfg.Stability.TmWindow.Max,
		TmFormula:      stability.TmFormula,
		MaxRetries:     cfg.Stability.MaxRetries,
		DataShards:     cfg.DataShards,
		ParityShards:   cfg.ParityShards,
		BlockSize:      cfg.BlockSize,
		AddressBases:   oligo.AddressBases,
		Packing:        "v1-bigint-base3",
		Compression:    compress.Name,
		KDFTimeCost:    cfg.KDFParams.TimeCost,
		KDFMemoryKiB:   cfg.KDFParams.MemoryKiB,
		KDFParallelism: cfg.KDFParams.Parallelism,
	}
	metaPlain, err := meta.Marshal()
	if err != nil {
		return nil, helix.Tag(helix.ErrStructural, err)
	}
	metaBases, err := block.EncodeMetaRecord(meta)
	if err != nil {
		return nil, helix.Tag(helix.ErrStructural, err)
	}
	if err := aw.WriteRecord(archive.Record{BlockID: 0, ShardIndex: 0, ByteLen: len(metaPlain) + 4, Bases: metaBases}); err != nil {
		return nil, helix.Tag(helix.ErrOutputIO, err)
	}

	stats := helix.NewStats()
	history := &diag.History{}

	inflight := queue.NewInflightQueue(cfg.MaxInflightBytes)
	pool := workerpool.New(cfg.Workers)
	defer pool.Close()

	results := make(chan blockEncodeResult, cfg.Workers*2)
	var inflightWG sync.WaitGroup

	readErrCh := make(chan error, 1)
	go func() {
		defer inflight.Close()
		readErrCh <- readBlocks(ctx, in, cfg.BlockSize, inflight)
	}()

	dispatchDone := make(chan struct{})
	go func() {
		defer close(dispatchDone)
		var blockID uint64
		for {
			blockID++
			chunk, ok := inflight.Pop(ctx)
			if !ok {
				break
			}
			inflight.Release(len(chunk.Bytes))
			plaintext := chunk.Bytes
			id := blockID

			inflightWG.Add(1)
			pool.Submit(func() {
				defer inflightWG.Done()
				shards, err := encodeBlock(id, plaintext, cfg, rsCodec, masterKey, shardBases, history, stats)
				results <- blockEncodeResult{blockID: id, shards: shards, err: err}
			})
		}
	}()

	go func() {
		inflightWG.Wait()
		close(results)
	}()

	var firstErr error
	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		for _, s := range res.shards {
			if err := aw.WriteRecord(archive.Record{
				BlockID:    res.blockID,
				ShardIndex: s.Index,
				ByteLen:    s.ByteLen,
				Bases:      s.Oligo.Sequence(),
			}); err != nil && firstErr == nil {
				firstErr = helix.Tag(helix.ErrOutputIO, err)
			}
		}
		stats.IncBlocksEncoded()
	}
	<-dispatchDone

	if err := <-readErrCh; err != nil && firstErr == nil {
		firstErr = helix.Tag(helix.ErrIO, err)
	}
	if firstErr != nil {
		return stats, firstErr
	}
	if err := aw.Flush(); err != nil {
		return stats, helix.Tag(helix.ErrOutputIO, err)
	}
	return stats, nil
}

// shardOligo pairs an assembled oligo with the shard coordinates it encodes,
// so the archive writer never has to re-derive them from the sequence.
type shardOligo struct {
	Index   int
	ByteLen int
	Oligo   oligo.Oligo
}

type blockEncodeResult struct {
	blockID uint64
	shards  []shardOligo
	err     error
}

func readBlocks(ctx context.Context, in io.Reader, blockSize int, q *queue.InflightQueue) error {
	buf := make([]byte, blockSize)
	for {
		n, err := io.ReadFull(in, buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			if pushErr := q.Push(ctx, queue.Chunk{Bytes: chunk}); pushErr != nil {
				return pushErr
			}
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func encodeBlock(blockID uint64, plaintext []byte, cfg Config, rsCodec *rs.Codec, masterKey []byte, shardBases int, history *diag.History, stats *helix.Stats) ([]shardOligo, error) {
	compressed, err := compress.Compress(plaintext)
	if err != nil {
		return nil, helix.Tag(helix.ErrStructural, err)
	}
	origLen := uint64(len(plaintext))
	shardWidth := cfg.shardWidth()

	build := func(attempt int) ([]shardOligo, error) {
		blockSalt, err := randomBytes(blockSaltLen)
		if err != nil {
			return nil, helix.Tag(helix.ErrKDF, err)
		}
		nonce, err := crypto.NewNonce()
		if err != nil {
			return nil, helix.Tag(helix.ErrKDF, err)
		}
		sessionKey, err := crypto.SessionKey(masterKey, blockSalt, blockID)
		if err != nil {
			return nil, helix.Tag(helix.ErrKDF, err)
		}
		ciphertext, err := crypto.Seal(sessionKey, nonce, compressed)
		if err != nil {
			return nil, helix.Tag(helix.ErrStructural, err)
		}

		var hdr block.Header
		hdr.OrigLen = origLen
		hdr.EncLen = uint64(len(ciphertext))
		hdr.BlockID = blockID
		copy(hdr.BlockSalt[:], blockSalt)
		copy(hdr.Nonce[:], nonce)
		framed := hdr.Encode(ciphertext)

		shards, err := rsCodec.Split(blockID, framed)
		if err != nil {
			return nil, helix.Tag(helix.ErrStructural, err)
		}

		out := make([]shardOligo, len(shards))
		for i, sh := range shards {
			o, err := oligo.Assemble(cfg.FwdPrimer, cfg.RevPrimer, blockID, sh.Index, shardWidth, sh.Bytes, shardBases)
			if err != nil {
				return nil, errors.Wrap(stability.ErrAttemptRejected, err.Error())
			}
			out[i] = shardOligo{Index: sh.Index, ByteLen: len(sh.Bytes), Oligo: o}
		}
		return out, nil
	}

	shards, retries, err := stability.Run(blockID, cfg.Stability, history, build, func(s shardOligo) oligo.Oligo { return s.Oligo })
	stats.AddStabilityRetries(uint64(retries))
	if err != nil {
		if errors.Is(err, stability.ErrExhausted) {
			stats.IncStabilityFailures()
			return nil, helix.Tag(helix.ErrStabilityFailure, err)
		}
		return nil, err
	}
	stats.AddShardsEncoded(uint64(len(shards)))
	return shards, nil
}
