// Package vector holds the similarity math shared by the built-in chunk indexes.
package vector

import (
	"encoding/binary"
	"math"
	"sort"
)

// CosineDistance returns 1 - cosine similarity. Vectors of different
// length or zero magnitude are maximally distant (1).
func CosineDistance(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 1
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// Scored is a candidate with its distance to the query.
type Scored[T any] struct {
	Item     T
	Distance float64
}

// Nearest returns the k closest candidates, nearest first. Ties keep
// insertion order. A non-positive k returns nil.
func Nearest[T any](candidates []Scored[T], k int) []Scored[T] {
	if k <= 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}

// Encode packs a vector as little-endian float32 bytes.
func Encode(v []float32) []byte {
	if v == nil {
		return nil
	}
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Decode unpacks bytes written by Encode.
func Decode(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	v := make([]float32, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return v
}
