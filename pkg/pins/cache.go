package pins

import (
	"encoding/binary"
	"math"

	"github.com/minio/highwayhash"

	"github.com/OpenTraceLab/kiwire/pkg/geom"
)

var fingerprintKey = []byte("kiwire/pins transform cache key!")

// cacheKey identifies a placement-independent transform of one symbol.
type cacheKey struct {
	LibID    string
	Rotation Rotation
	Mirror   Mirror
}

// cachedPin is a pin with position relative to the component origin.
type cachedPin struct {
	def         Definition
	offset      geom.Point
	orientation Orientation
}

type cacheEntry struct {
	fingerprint uint64
	pins        []cachedPin
}

// TransformCache memoizes transformed pin offsets per (lib_id, rotation,
// mirror). Each entry remembers a fingerprint of the definitions it was
// built from and is rebuilt when the definitions change. The cache is not
// safe for concurrent use.
type TransformCache struct {
	entries map[cacheKey]*cacheEntry
	hits    int
	misses  int
}

// NewTransformCache creates an empty cache.
func NewTransformCache() *TransformCache {
	return &TransformCache{entries: make(map[cacheKey]*cacheEntry)}
}

// Invalidate drops every entry for libID.
func (c *TransformCache) Invalidate(libID string) {
	for k := range c.entries {
		if k.LibID == libID {
			delete(c.entries, k)
		}
	}
}

// Reset drops every entry.
func (c *TransformCache) Reset() {
	c.entries = make(map[cacheKey]*cacheEntry)
	c.hits, c.misses = 0, 0
}

// Len returns the number of cached transforms.
func (c *TransformCache) Len() int {
	return len(c.entries)
}

// Stats returns hit and miss counters since the last Reset.
func (c *TransformCache) Stats() (hits, misses int) {
	return c.hits, c.misses
}

func (c *TransformCache) lookup(libID string, t Transform, defs []Definition) []cachedPin {
	key := cacheKey{LibID: libID, Rotation: t.Rotation, Mirror: t.Mirror}
	fp := Fingerprint(defs)
	if e, ok := c.entries[key]; ok && e.fingerprint == fp {
		c.hits++
		return e.pins
	}
	c.misses++
	pins := transformAll(t, defs)
	c.entries[key] = &cacheEntry{fingerprint: fp, pins: pins}
	return pins
}

func transformAll(t Transform, defs []Definition) []cachedPin {
	out := make([]cachedPin, len(defs))
	for i, d := range defs {
		out[i] = cachedPin{
			def:         d,
			offset:      t.Apply(d.Position),
			orientation: t.ApplyOrientation(d.Orientation),
		}
	}
	return out
}

// Fingerprint hashes pin definitions. Two definition lists with the same
// fingerprint produce the same transformed pins.
func Fingerprint(defs []Definition) uint64 {
	h, err := highwayhash.New64(fingerprintKey)
	if err != nil {
		// only fails for keys that are not 32 bytes long
		panic(err)
	}
	var num [8]byte
	writeString := func(s string) {
		binary.LittleEndian.PutUint64(num[:], uint64(len(s)))
		h.Write(num[:])
		h.Write([]byte(s))
	}
	writeFloat := func(f float64) {
		binary.LittleEndian.PutUint64(num[:], math.Float64bits(f))
		h.Write(num[:])
	}
	for _, d := range defs {
		writeString(d.Number)
		writeString(d.Name)
		writeString(d.ElectricalType)
		writeFloat(d.Position.X)
		writeFloat(d.Position.Y)
		writeFloat(float64(d.Orientation))
	}
	return h.Sum64()
}
