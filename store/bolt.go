package store

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/ibex-analyzer/ibex/analysis/cfg"
)

var (
	bucketAttrs = []byte("attrs")
	bucketCfgs  = []byte("cfgs")
)

// BoltStore persists captures in a bbolt database with two buckets: one
// per-procedure attribute record keyed source-file + NUL + procedure, and
// one whole-capture record keyed by source file. Store commits the
// attribute records strictly before the capture, so a reader that observes
// the capture can rely on the attributes being durable.
type BoltStore struct {
	db *bolt.DB
}

func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening results database %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketAttrs, bucketCfgs} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing results database: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error { return s.db.Close() }

func attrsKey(sourceFile, proc string) []byte {
	key := make([]byte, 0, len(sourceFile)+1+len(proc))
	key = append(key, sourceFile...)
	key = append(key, 0)
	key = append(key, proc...)
	return key
}

// Store writes all attribute records in one transaction and the capture in
// a second one. The split is deliberate: the capture record acts as the
// barrier signalling that the attributes are already on disk.
func (s *BoltStore) Store(sourceFile string, c *cfg.Cfg) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAttrs)
		var inner error
		c.ForEach(func(p *cfg.Procdesc) {
			if inner != nil {
				return
			}
			data, err := encodeAttrsRecord(p.Attrs())
			if err != nil {
				inner = err
				return
			}
			inner = b.Put(attrsKey(sourceFile, p.Name()), data)
		})
		return inner
	})
	if err != nil {
		return fmt.Errorf("storing attributes of %s: %w", sourceFile, err)
	}

	data, err := EncodeCfg(c)
	if err != nil {
		return fmt.Errorf("encoding capture of %s: %w", sourceFile, err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCfgs).Put([]byte(sourceFile), data)
	})
	if err != nil {
		return fmt.Errorf("storing capture of %s: %w", sourceFile, err)
	}
	return nil
}

// Load fetches the prior capture of a source file, reporting absence
// without error.
func (s *BoltStore) Load(sourceFile string) (*cfg.Cfg, bool, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketCfgs).Get([]byte(sourceFile)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("loading capture of %s: %w", sourceFile, err)
	}
	if data == nil {
		return nil, false, nil
	}
	c, err := DecodeCfg(data)
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

// LoadAttrs fetches one procedure's stored attribute record.
func (s *BoltStore) LoadAttrs(sourceFile, proc string) (cfg.ProcAttributes, bool, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketAttrs).Get(attrsKey(sourceFile, proc)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil || data == nil {
		return cfg.ProcAttributes{}, false, err
	}
	attrs, err := decodeAttrsRecord(data)
	if err != nil {
		return cfg.ProcAttributes{}, false, err
	}
	return attrs, true, nil
}

var (
	_ Loader = (*BoltStore)(nil)
	_ Storer = (*BoltStore)(nil)
)
