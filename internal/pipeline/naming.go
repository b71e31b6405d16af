package pipeline

import "fmt"

// frameName derives a frame artifact name: stem plus a position suffix and
// the image extension, e.g. "clip_last-frame.png".
func frameName(stem, position, ext string) string {
	return fmt.Sprintf("%s_%s-frame%s", stem, position, ext)
}

// segmentName derives a segment artifact name with 3-digit zero-padded
// numbering starting at 001, e.g. "clip-segment-003.mp3".
func segmentName(stem string, index int, ext string) string {
	return fmt.Sprintf("%s-segment-%03d%s", stem, index+1, ext)
}

// gifName derives the GIF artifact name from the source stem.
func gifName(stem string) string {
	return stem + ".gif"
}

// audioName derives the extracted audio artifact name.
func audioName(stem, format string) string {
	return stem + "." + format
}
