package kernels

import (
	"fmt"
	"strings"
)

type Kind int

const (
	KindDisplacement Kind = iota
	KindLaplacian
	KindLocal
	KindGradient
)

var kindNames = [...]string{"displacement", "laplacian", "local", "gradient"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown kernel: %s (available: %s)", s, strings.Join(kindNames[:], ", "))
}

func Kinds() []Kind {
	return []Kind{KindDisplacement, KindLaplacian, KindLocal, KindGradient}
}
