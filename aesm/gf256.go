package aesm

// xtime multiplies a by x modulo x^8 + x^4 + x^3 + x + 1.
func xtime(a byte) byte {
	if a&0x80 != 0 {
		return a<<1 ^ 0x1b
	}

	return a << 1
}

// mul multiplies two elements of GF(2^8).
func mul(a, b byte) byte {
	var p byte
	for b != 0 {
		if b&1 != 0 {
			p ^= a
		}
		a = xtime(a)
		b >>= 1
	}

	return p
}
