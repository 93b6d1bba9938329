package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zoobzio/qrcard"
	"github.com/zoobzio/qrcard/yaml"
)

// LoadFile reads a fixtures file mapping identifiers to records and returns
// a MemorySource over it. ".json" files are read in the tagged dialect,
// ".yaml" and ".yml" files with the YAML codec.
func LoadFile(path string, opts ...Option) (*MemorySource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}

	var c qrcard.Codec
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		c = qrcard.Tagged()
	case ".yaml", ".yml":
		c = yaml.New()
	default:
		return nil, fmt.Errorf("fixtures %s: unsupported extension", path)
	}

	all := qrcard.NewRecord()
	if err := c.Unmarshal(data, all); err != nil {
		return nil, fmt.Errorf("parse fixtures %s: %w", path, err)
	}

	records := make(map[string]*qrcard.Record, all.Len())
	for id, v := range all.All() {
		r, ok := v.Object()
		if !ok {
			return nil, fmt.Errorf("fixtures %s: entry %q is %s, want object", path, id, v.Kind())
		}
		records[id] = r
	}
	return NewMemorySource(records, opts...), nil
}
