package srv

import (
	"fmt"

	units "github.com/docker/go-units"
)

// ByteSize is a pflag.Value accepting human readable sizes such as "1MB".
type ByteSize int

func NewByteSize(v int) *ByteSize {
	b := ByteSize(v)
	return &b
}

func (b ByteSize) String() string {
	return units.HumanSize(float64(b))
}

func (b *ByteSize) Set(value string) error {
	v, err := units.FromHumanSize(value)
	if err != nil {
		return fmt.Errorf("invalid byte size %q: %w", value, err)
	}
	*b = ByteSize(v)
	return nil
}

func (b *ByteSize) Type() string {
	return "byte-size"
}

func (b ByteSize) Get() int {
	return int(b)
}
