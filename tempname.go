package atomictx

import "github.com/google/uuid"

// tempSuffixAlphabet holds only filename-safe characters, same constraint
// mkstemp's "XXXXXX" template enforces on the six characters it fills in.
const tempSuffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// tempSuffixLen is the length of the unique portion of a temp/mole name:
// basename + "." + 6 chars, and for moles a trailing ".mole".
const tempSuffixLen = 6

// newTempSuffix generates a 6-character filename-safe unique suffix,
// folding a fresh UUID's random bytes down to 6 alphabet characters
// instead of rendering the whole UUID into the filename.
func newTempSuffix() string {
	id := uuid.New()
	buf := make([]byte, tempSuffixLen)
	for i := range buf {
		buf[i] = tempSuffixAlphabet[int(id[i])%len(tempSuffixAlphabet)]
	}
	return string(buf)
}
