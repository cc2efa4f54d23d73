package binlog

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ReadFile loads a binlog file from disk and checks its magic number,
// returning the raw bytes ready for Decoder.DecodeAll. Unlike the
// live-directory/live-master abstractions this package's teacher
// offered (rotation by filename suffix, tailing a binlog.index
// manifest), a single static file is all this spec's core covers (spec
// §1 Non-goals: no live-network streaming).
func ReadFile(path string) ([]byte, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read binlog file %q", path)
	}
	if err := checkMagic(data); err != nil {
		return nil, wrapErr(err, "%q", path)
	}
	logrus.WithField("file", path).WithField("bytes", len(data)).Debug("opened binlog file")
	return data, nil
}
