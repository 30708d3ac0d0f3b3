package emulator

import "github.com/google/uuid"

// idAlphabet is the lowercase base-36 alphabet of archive record ids.
const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// newID mints an archive-style identifier such as "pxrf9-zfh45" from
// fresh uuid entropy.
func newID() string {
	raw := uuid.New()
	buf := make([]byte, 0, 11)
	for i, v := range raw[:10] {
		if i == 5 {
			buf = append(buf, '-')
		}
		buf = append(buf, idAlphabet[int(v)%len(idAlphabet)])
	}
	return string(buf)
}
