// Package audio provides microphone capture and speaker playback backed by
// PortAudio, plus the encoding negotiation used to pick a capture format.
package audio

import (
	"encoding/binary"
	"fmt"
)

// DefaultPreference is the capture encoding preference order. Opus keeps
// uploads small; uncompressed PCM is the universal fallback.
var DefaultPreference = []string{"opus", "wav", "pcm_s16le"}

// ResolveEncoding picks the first preferred encoding the device supports.
// Resolution is by exact name, not by probing container MIME types.
func ResolveEncoding(preferred, supported []string) (string, error) {
	if len(preferred) == 0 {
		preferred = DefaultPreference
	}
	for _, want := range preferred {
		for _, have := range supported {
			if want == have {
				return want, nil
			}
		}
	}
	return "", fmt.Errorf("no supported encoding among %v", supported)
}

// WrapWAV prepends a RIFF/WAVE header to raw little-endian 16-bit PCM.
func WrapWAV(pcm []byte, sampleRate, channels int) []byte {
	const bitsPerSample = 16
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	buf := make([]byte, 44+len(pcm))
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+len(pcm)))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], bitsPerSample)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(len(pcm)))
	copy(buf[44:], pcm)
	return buf
}
