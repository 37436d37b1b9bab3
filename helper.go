package iso8583

import "golang.org/x/exp/constraints"

const hexTableUpper = "0123456789ABCDEF"

// encodeHexUpper converts src to uppercase hex and writes it to dst.
func encodeHexUpper(dst, src []byte) {
	for i, v := range src {
		dst[i*2] = hexTableUpper[v>>4]
		dst[i*2+1] = hexTableUpper[v&0x0f]
	}
}

// appendPadded appends val as exactly digits ASCII decimal digits,
// zero-padded on the left. The caller guarantees val fits.
func appendPadded[T constraints.Integer](dst []byte, val T, digits int) []byte {
	start := len(dst)
	for i := 0; i < digits; i++ {
		dst = append(dst, '0')
	}
	for i := start + digits - 1; i >= start && val > 0; i-- {
		dst[i] = byte(val%10) + '0'
		val /= 10
	}
	return dst
}

// parseDigits converts ASCII decimal digits to an int without allocating.
func parseDigits(b []byte) (int, bool) {
	n := 0
	for _, ch := range b {
		if ch < '0' || ch > '9' {
			return 0, false
		}
		n = n*10 + int(ch-'0')
	}
	return n, true
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
