package quantize

import (
	"fmt"
	"strings"
)

// Method selects the palette generation algorithm.
type Method int

const (
	KMeans Method = iota
	MedianCut
	Popularity
	Octree
	MMCQ
	HybridKMeansMedianCut
	HybridKMeansMMCQ
)

var methodNames = [...]string{
	KMeans:                "kmeans",
	MedianCut:             "median cut",
	Popularity:            "popularity",
	Octree:                "octree",
	MMCQ:                  "mmcq",
	HybridKMeansMedianCut: "kmeans + median cut",
	HybridKMeansMMCQ:      "kmeans + mmcq",
}

// Methods returns every method in declaration order.
func Methods() []Method {
	res := make([]Method, len(methodNames))
	for i := range res {
		res[i] = Method(i)
	}
	return res
}

func (m Method) String() string {
	if m < 0 || int(m) >= len(methodNames) {
		return fmt.Sprintf("Method(%d)", int(m))
	}
	return methodNames[m]
}

// ParseMethod accepts names like "kmeans", "Median Cut" or "kmeans+mmcq".
// Case, spaces, '-', '_' and '+' are ignored.
func ParseMethod(name string) (Method, error) {
	key := methodKey(name)
	for i, n := range methodNames {
		if methodKey(n) == key {
			return Method(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
}

func methodKey(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_', '+':
			return -1
		}
		return r
	}, strings.ToLower(s))
}

func (m Method) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Method) UnmarshalText(text []byte) error {
	v, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
