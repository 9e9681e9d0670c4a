package encoder

import (
	"strconv"

	"podknight/internal/cutplan"
)

var kindDefaults = map[Kind][]string{
	KindVideo: {
		"-c:v", "libx264", "-preset", "medium", "-crf", "22",
		"-c:a", "aac", "-b:a", "160k",
		"-movflags", "+faststart",
	},
	KindAudio: {
		"-vn", "-c:a", "libmp3lame", "-b:a", "128k",
	},
}

// BuildArgs constructs the encoder argument vector (without the binary) that
// renders part of source into output using format f. Format encoding
// overrides are appended after the kind defaults so they win.
func BuildArgs(source string, part cutplan.Part, f Format, output string) []string {
	args := make([]string, 0, 32)

	// --- Preamble ---
	args = append(args, "-hide_banner", "-nostdin", "-y")

	// --- Input window ---
	args = append(args,
		"-ss", seconds(part.Start),
		"-i", source,
		"-t", seconds(part.Duration()),
	)

	// --- Codec ---
	args = append(args, kindDefaults[f.Kind]...)
	args = append(args, f.Encoding...)

	// --- Output ---
	args = append(args, output)
	return args
}

func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
