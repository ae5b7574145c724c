package utils

import (
	"encoding/binary"
	"math"

	"github.com/twmb/murmur3"
)

func HashString(s string) uint64 {
	hash := murmur3.New64()
	_, err := hash.Write([]byte(s))
	if err != nil {
		panic(err)
	}
	return hash.Sum64()
}

func HashBytes(bytes ...[]byte) uint64 {
	hash := murmur3.New64()
	for _, b := range bytes {
		_, err := hash.Write(b)
		if err != nil {
			panic(err)
		}
	}
	return hash.Sum64()
}

// HashFloats hashes the IEEE-754 bit patterns of xs in order.
func HashFloats(xs ...float64) uint64 {
	hash := murmur3.New64()
	var buf [8]byte
	for _, x := range xs {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(x))
		_, err := hash.Write(buf[:])
		if err != nil {
			panic(err)
		}
	}
	return hash.Sum64()
}
