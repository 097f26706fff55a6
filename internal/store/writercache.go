package store

const (
	defaultCacheRecords = 64 * 1024
	defaultCacheBytes   = 1 << 20 // 1 MiB
)

// writerCache batches appends to amortise I/O: it flushes once either
// the byte budget or the record-count budget is reached, and explicitly
// on Collection.Flush/Seal. For fixed-size records the byte budget is
// min(1 MiB, recordSize*64Ki); for variable-length records it is 1 MiB.
// The record count ticks once per append call, and a variable-length
// record takes two calls (its length prefix, then its payload).
type writerCache struct {
	w          *Collection
	buf        []byte
	records    int
	maxBytes   int
	maxRecords int
}

func newWriterCache(w *Collection) *writerCache {
	maxBytes := defaultCacheBytes
	if w.recordSize > 0 {
		if byRecords := w.recordSize * defaultCacheRecords; byRecords < maxBytes {
			maxBytes = byRecords
		}
	}
	return &writerCache{
		w:          w,
		buf:        make([]byte, 0, maxBytes),
		maxBytes:   maxBytes,
		maxRecords: defaultCacheRecords,
	}
}

func (c *writerCache) append(record []byte) error {
	c.buf = append(c.buf, record...)
	c.records++
	if len(c.buf) >= c.maxBytes || c.records >= c.maxRecords {
		return c.flush()
	}
	return nil
}

func (c *writerCache) flush() error {
	if len(c.buf) == 0 {
		return nil
	}
	if _, err := c.w.stream.Write(c.buf); err != nil {
		return err
	}
	c.buf = c.buf[:0]
	c.records = 0
	return nil
}
