//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2026 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package segment

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"
)

// SnapshotExtension is the file extension of shard snapshots, the file name
// without extension is the shard name.
const SnapshotExtension = ".msgpack"

func WriteSnapshot(w io.Writer, shard *Shard) error {
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	return errors.Wrapf(enc.Encode(shard), "encode shard %s", shard.Name)
}

func ReadSnapshot(r io.Reader) (*Shard, error) {
	var shard Shard
	if err := msgpack.NewDecoder(r).Decode(&shard); err != nil {
		return nil, errors.Wrap(err, "decode shard")
	}
	if shard.Tables == nil {
		shard.Tables = map[string]*Table{}
	}
	return &shard, nil
}

// SaveSnapshot writes the shard to dir, replacing an older snapshot
// atomically.
func SaveSnapshot(dir string, shard *Shard) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", dir)
	}
	path := filepath.Join(dir, shard.Name+SnapshotExtension)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return errors.Wrapf(err, "create %s", tmp)
	}
	buf := bufio.NewWriter(f)
	if err := WriteSnapshot(buf, shard); err != nil {
		f.Close()
		return err
	}
	if err := buf.Flush(); err != nil {
		f.Close()
		return errors.Wrapf(err, "flush %s", tmp)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "close %s", tmp)
	}
	return errors.Wrapf(os.Rename(tmp, path), "rename %s", tmp)
}

// LoadObserver is told about every shard snapshot being loaded.
type LoadObserver interface {
	StartLoadingShard()
	FinishLoadingShard(err error)
}

// LoadSnapshots puts every snapshot found in dir into the store. A missing
// dir holds no shards. observer may be nil.
func (m *Memory) LoadSnapshots(dir string, logger logrus.FieldLogger, observer LoadObserver) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.Wrapf(err, "read %s", dir)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), SnapshotExtension) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		if observer != nil {
			observer.StartLoadingShard()
		}
		shard, err := readSnapshotFile(filepath.Join(dir, name))
		if observer != nil {
			observer.FinishLoadingShard(err)
		}
		if err != nil {
			return 0, err
		}
		m.Put(shard)
		logger.WithField("action", "load_snapshot").
			WithField("shard", shard.Name).
			WithField("tables", len(shard.Tables)).
			Debug("loaded shard snapshot")
	}
	return len(names), nil
}

func readSnapshotFile(path string) (*Shard, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	shard, err := ReadSnapshot(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrapf(err, "snapshot %s", path)
	}
	return shard, nil
}
