package wav

import (
	"errors"
	"math"
	"time"
)

// ErrInvalidWAV indicates a file that cannot be parsed as a RIFF/WAVE
// container, per spec §4.3's single hard rule: the declared RIFF size plus
// the 8-byte outer header must not exceed the physical file size.
var ErrInvalidWAV = errors.New("invalid RIFF/WAVE file")

var (
	// cidRIFF is the outer container id.
	cidRIFF = [4]byte{'R', 'I', 'F', 'F'}
	// cidWAVE is the RIFF form type for WAV files.
	cidWAVE = [4]byte{'W', 'A', 'V', 'E'}
	// cidFmt is the fmt  chunk id.
	cidFmt = [4]byte{'f', 'm', 't', ' '}
	// cidData is the audio payload chunk id.
	cidData = [4]byte{'d', 'a', 't', 'a'}
	// cidList is the LIST chunk id.
	cidList = [4]byte{'L', 'I', 'S', 'T'}
	// cidInfo is the LIST form type carrying RIFF-INFO sub-chunks.
	cidInfo = [4]byte{'I', 'N', 'F', 'O'}
	// cidBext is the broadcast extension chunk id.
	cidBext = [4]byte{'b', 'e', 'x', 't'}
	// cidIXML is the iXML chunk id. Case-sensitive per spec §4.3.
	cidIXML = [4]byte{'i', 'X', 'M', 'L'}
)

// frameDuration converts a frame count at sampleRate into a time.Duration,
// used to populate FileRecord.technical.Duration.
func frameDuration(frames int64, sampleRate uint32) time.Duration {
	if sampleRate == 0 {
		return 0
	}

	return time.Duration(math.Round(float64(frames) * float64(time.Second) / float64(sampleRate)))
}

func nullTermStr(b []byte) string {
	return string(b[:clen(b)])
}

func clen(num []byte) int {
	for i := range num {
		if num[i] == 0 {
			return i
		}
	}

	return len(num)
}
