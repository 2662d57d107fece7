package libneuro

import (
	"encoding/binary"
	"math"

	"github.com/2x3systems/neurograph/neuro"
	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// CouplingCache is an in-memory LSM table of coupling vectors keyed by dataset fingerprint and method,
// so that a sweep over many penalties computes the couplings of each (dataset, method) once.
//
// Nothing is written to disk.
type CouplingCache struct {
	db     *badger.DB
	hits   int
	misses int
}

// NewCouplingCache opens an empty in-memory cache.  Call Close() when done.
func NewCouplingCache() (*CouplingCache, error) {
	dbOpts := badger.DefaultOptions("").WithInMemory(true)
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, errors.Wrap(err, "opening coupling cache")
	}
	return &CouplingCache{
		db: db,
	}, nil
}

// Fingerprint hashes the labels and bins of trains.
func Fingerprint(trains []neuro.SpikeTrain) uint64 {
	h := xxhash.New()
	var scrap [binary.MaxVarintLen64]byte
	for i := range trains {
		tr := &trains[i]
		n := binary.PutUvarint(scrap[:], uint64(len(tr.Label)))
		h.Write(scrap[:n])
		h.WriteString(tr.Label)
		n = binary.PutUvarint(scrap[:], uint64(len(tr.Bins)))
		h.Write(scrap[:n])
		h.Write(tr.Bins)
	}
	return h.Sum64()
}

func cacheKey(method neuro.Method, trains []neuro.SpikeTrain) []byte {
	var key [9]byte
	binary.BigEndian.PutUint64(key[:8], Fingerprint(trains))
	key[8] = byte(method)
	return key[:]
}

// Couplings returns the cached couplings for (trains, method), computing and storing them on a miss.
func (cc *CouplingCache) Couplings(method neuro.Method, trains []neuro.SpikeTrain) (Couplings, error) {
	if cc.db == nil {
		return nil, neuro.ErrCacheClosed
	}
	key := cacheKey(method, trains)

	var out Couplings
	err := cc.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return out.InitFromEncoding(val)
		})
	})
	if err == nil {
		cc.hits++
		return out, nil
	}
	if err != badger.ErrKeyNotFound {
		return nil, err
	}

	cc.misses++
	out, err = ComputeCouplings(method, trains)
	if err != nil {
		return nil, err
	}

	err = cc.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, out.AppendEncoding(nil))
	})
	if err != nil {
		return nil, err
	}
	klog.V(3).Infof("coupling cache: stored %v for %d neurons (%d hits, %d misses)", method, len(trains), cc.hits, cc.misses)
	return out, nil
}

// Stats returns the number of lookups served from the cache and computed.
func (cc *CouplingCache) Stats() (hits, misses int) {
	return cc.hits, cc.misses
}

func (cc *CouplingCache) Close() {
	if cc.db != nil {
		cc.db.Close()
		cc.db = nil
	}
}

// AppendEncoding appends a binary encoding of C (little endian IEEE 754 per slot) to out.
func (C Couplings) AppendEncoding(out []byte) []byte {
	var scrap [8]byte
	for _, Ci := range C {
		binary.LittleEndian.PutUint64(scrap[:], math.Float64bits(Ci))
		out = append(out, scrap[:]...)
	}
	return out
}

// InitFromEncoding assigns C from an encoding made by AppendEncoding.
func (C *Couplings) InitFromEncoding(in []byte) error {
	if len(in)%8 != 0 {
		return errors.Errorf("coupling encoding has %d bytes", len(in))
	}
	out := make(Couplings, len(in)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(in[8*i:]))
	}
	*C = out
	return nil
}
