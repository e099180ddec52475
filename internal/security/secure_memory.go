package security

import (
	"runtime"
)

// ZeroBytes overwrites a byte slice so key material does not linger in
// memory after use. Callers holding derived keys or decoded salts should
// defer this.
func ZeroBytes(data []byte) {
	if len(data) == 0 {
		return
	}
	for i := range data {
		data[i] = 0
	}
	// Keep the slice live so the writes are not optimized away.
	runtime.KeepAlive(data)
}
