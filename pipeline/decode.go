package pipeline

import (
	"context"
	"io"
	"sync"

	"helix"
	"helix/archive"
	"helix/block"
	"helix/compress"
	"helix/crypto"
	"helix/internal/workerpool"
	"helix/oligo"
	"helix/rs"
	"helix/trellis"

	"github.com/pkg/errors"
)

// Decode reads a FASTA-like archive from in, reconstructs each block under
// passphrase, and writes the recovered plaintext to out in block order.
// cfg.Workers bounds decode concurrency (cfg.DataShards, cfg.ParityShards,
// and the primer fields are ignored: Decode recovers the archive's true
// shape from the magic line and the bootstrap metadata record,
// block_id=0/shard_index=0, rather than trusting a caller-supplied guess).
func Decode(ctx context.Context, in io.Reader, out io.Writer, passphrase string, cfg Config) (*helix.Stats, error) {
	ar, err := archive.NewReader(in)
	if err != nil {
		return nil, helix.Tag(helix.ErrStructural, err)
	}

	metaRecord, err := ar.Next()
	if err != nil {
		return nil, helix.Tag(helix.ErrStructural, err)
	}
	if metaRecord.BlockID != 0 || metaRecord.ShardIndex != 0 {
		return nil, helix.Tag(helix.ErrStructural, errors.New("archive: first record is not the metadata record"))
	}
	meta, err := block.DecodeMetaRecord(metaRecord.Bases, metaRecord.ByteLen)
	if err != nil {
		return nil, helix.Tag(helix.ErrStructural, err)
	}
	if meta.DataShards != ar.DataShards || meta.ParityShards != ar.ParityShards || meta.BlockSize != ar.BlockSize {
		return nil, helix.Tag(helix.ErrStructural, errors.New("archive: magic line erasure shape disagrees with metadata record"))
	}

	fwdPrimer, err := trellis.ParseSequence(meta.PrimerFwd)
	if err != nil {
		return nil, helix.Tag(helix.ErrStructural, err)
	}
	revPrimer, err := trellis.ParseSequence(meta.PrimerRev)
	if err != nil {
		return nil, helix.Tag(helix.ErrStructural, err)
	}
	if meta.Packing != "v1-bigint-base3" {
		return nil, helix.Tag(helix.ErrStructural, errors.Errorf("block: unsupported packing %q", meta.Packing))
	}
	if meta.TmFormula != "" && meta.TmFormula != stabilityTmFormula {
		return nil, helix.Tag(helix.ErrStructural, errors.Errorf("block: unsupported Tm formula %q", meta.TmFormula))
	}
	if meta.Compression != "" && meta.Compression != compress.Name {
		return nil, helix.Tag(helix.ErrStructural, errors.Errorf("block: unsupported compression %q", meta.Compression))
	}

	kdfParams := crypto.KDFParams{TimeCost: meta.KDFTimeCost, MemoryKiB: meta.KDFMemoryKiB, Parallelism: meta.KDFParallelism}
	masterKey := crypto.MasterKey(passphrase, meta.GlobalSalt, kdfParams)

	rsCodec, err := rs.NewCodec(rs.Config{DataShards: meta.DataShards, ParityShards: meta.ParityShards})
	if err != nil {
		return nil, helix.Tag(helix.ErrStructural, err)
	}
	shardWidth := meta.DataShards + meta.ParityShards
	shardByteLen := shardBudgetBytes(meta.BlockSize, meta.DataShards)

	demux := oligo.NewDemultiplexer(oligo.DemuxParams{
		FwdPrimer:    fwdPrimer,
		RevPrimer:    revPrimer,
		Tau:          oligo.DefaultTau,
		ShardWidth:   shardWidth,
		DataShards:   meta.DataShards,
		PayloadBases: trellis.TritsNeeded(shardByteLen),
		ShardByteLen: shardByteLen,
	})

	stats := helix.NewStats()
	pool := workerpool.New(cfg.Workers)

	var (
		mu          sync.Mutex
		wg          sync.WaitGroup
		blocks      = make(map[uint64][]byte)
		reconciled  = make(map[uint64]bool)
		firstErr    error
	)
	recordErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}
	hasErr := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}

	attemptReconstruct := func(blockID uint64) {
		mu.Lock()
		if reconciled[blockID] {
			mu.Unlock()
			return
		}
		shards := demux.Shards(blockID)
		if len(shards) < meta.DataShards {
			mu.Unlock()
			return
		}
		reconciled[blockID] = true
		mu.Unlock()
		demux.Forget(blockID)

		shardCopy := make(map[int][]byte, len(shards))
		for i, b := range shards {
			shardCopy[i] = b
		}
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			plaintext, err := decodeBlock(shardCopy, shardWidth, meta.DataShards, rsCodec, masterKey)
			if err != nil {
				recordErr(err)
				return
			}
			mu.Lock()
			blocks[blockID] = plaintext
			mu.Unlock()
			stats.IncBlocksDecoded()
		})
	}

readLoop:
	for {
		if ctx.Err() != nil {
			recordErr(ctx.Err())
			break
		}
		rec, err := ar.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			recordErr(helix.Tag(helix.ErrIO, err))
			break
		}
		if rec.BlockID == 0 && rec.ShardIndex == 0 {
			continue // already consumed as the bootstrap metadata record
		}
		blockID, accepted := demux.Feed(rec.Bases)
		if !accepted {
			continue
		}
		attemptReconstruct(blockID)
		if hasErr() {
			break readLoop
		}
	}

	if !hasErr() {
		for _, blockID := range demux.OpenBlocks() {
			attemptReconstruct(blockID)
		}
	}
	wg.Wait()
	pool.Close()

	stats.AddDemuxStats(demux.Stats.StrandsFed, demux.Stats.PrimerMismatches, demux.Stats.AddressFailures,
		demux.Stats.AddressViterbi, demux.Stats.ShardCRCFailures, demux.Stats.ShardViterbi,
		demux.Stats.DuplicatesDropped, demux.Stats.BlocksEvicted)

	if firstErr != nil {
		return stats, firstErr
	}

	for _, blockID := range demux.OpenBlocks() {
		if !reconciled[blockID] {
			return stats, helix.Tag(helix.ErrInsufficientShards, errors.Errorf("block %d: fewer than %d shards survived", blockID, meta.DataShards))
		}
	}

	if err := writeBlocksInOrder(out, blocks); err != nil {
		return stats, helix.Tag(helix.ErrIO, err)
	}
	return stats, nil
}

// stabilityTmFormula mirrors stability.TmFormula without importing the
// stability package here, since Decode never needs the rest of that
// package's gate logic — only the formula name to reject an archive built
// against an estimator this implementation doesn't know how to reproduce.
const stabilityTmFormula = "marmur-schildkraut-doty"

// shardBudgetBytes is the CRC-framed shard byte length for an archive's
// (block_size, data_shards) shape, matching rs.Codec.Split's math exactly
// (see headerOverhead in config.go) so the decoder sizes its trellis decode
// the same way the encoder sized its trellis encode.
func shardBudgetBytes(blockSize, dataShards int) int {
	shardLen := (blockSize + headerOverhead + dataShards - 1) / dataShards
	return shardLen + 4
}

// decodeBlock reconstructs one block's framed bytes from its accumulated,
// CRC-verified shard payload pool, then unframes, decrypts, and
// decompresses it. shards is keyed by shard index and holds CRC-stripped
// payloads; missing indices are left absent, which Reconstruct treats as
// erasures.
func decodeBlock(shards map[int][]byte, shardWidth, dataShards int, rsCodec *rs.Codec, masterKey []byte) ([]byte, error) {
	payloads := make([][]byte, shardWidth)
	shardLen := 0
	for i, b := range shards {
		payloads[i] = b
		if len(b) > shardLen {
			shardLen = len(b)
		}
	}

	// Reconstruct only needs an upper bound on the framed length to know
	// where to stop concatenating data shards; block.Decode re-derives the
	// exact ciphertext length from the header regardless, so passing the
	// full zero-padded width here is always safe.
	framed, err := rsCodec.Reconstruct(payloads, shardLen*dataShards)
	if err != nil {
		return nil, helix.Tag(helix.ErrInsufficientShards, err)
	}

	hdr, ciphertext, err := block.Decode(framed)
	if err != nil {
		return nil, helix.Tag(helix.ErrStructural, err)
	}

	sessionKey, err := crypto.SessionKey(masterKey, hdr.BlockSalt[:], hdr.BlockID)
	if err != nil {
		return nil, helix.Tag(helix.ErrKDF, err)
	}
	compressed, err := crypto.Open(sessionKey, hdr.Nonce[:], ciphertext)
	if err != nil {
		return nil, helix.Tag(helix.ErrAuthFailure, err)
	}

	plaintext, err := compress.Decompress(compressed, int(hdr.OrigLen))
	if err != nil {
		return nil, helix.Tag(helix.ErrStructural, err)
	}
	return plaintext, nil
}

// writeBlocksInOrder emits recovered plaintext to out in ascending block_id
// order (block_id 1..N; 0 is the bootstrap metadata record, never payload
// data). A missing block is reported rather than silently skipped.
func writeBlocksInOrder(out io.Writer, blocks map[uint64][]byte) error {
	if len(blocks) == 0 {
		return nil
	}
	var maxID uint64
	for id := range blocks {
		if id > maxID {
			maxID = id
		}
	}
	for id := uint64(1); id <= maxID; id++ {
		b, ok := blocks[id]
		if !ok {
			return errors.Errorf("pipeline: block %d missing from recovered archive", id)
		}
		if _, err := out.Write(b); err != nil {
			return err
		}
	}
	return nil
}
