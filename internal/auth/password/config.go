package password

import (
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost matches the 10 rounds the service has always used.
const DefaultCost = 10

// Config is the single configuration surface for this package.
type Config struct {
	// Cost is the bcrypt work factor (log2 rounds).
	Cost int
	// Concurrency bounds simultaneous hash/verify operations.
	// Zero means runtime.NumCPU().
	Concurrency int
}

// DefaultConfig returns cost 10 with one slot per CPU.
func DefaultConfig() Config {
	return Config{Cost: DefaultCost, Concurrency: runtime.NumCPU()}
}

// Validate checks the config before it is used to build a Hasher.
func (c Config) Validate() error {
	if c.Cost < bcrypt.MinCost || c.Cost > bcrypt.MaxCost {
		return fmt.Errorf("%w: %d not in [%d..%d]", ErrInvalidCost, c.Cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("password: concurrency must not be negative")
	}
	return nil
}
