package catalog

import "time"

// SlideInterval is how often a product carousel auto-advances
const SlideInterval = 5 * time.Second

// NextSlide returns the index after current, wrapping to 0 past the last of
// count slides.
func NextSlide(current, count int) int {
	if count <= 0 {
		return 0
	}
	if current >= count-1 || current < 0 {
		return 0
	}
	return current + 1
}

// PrevSlide returns the index before current, wrapping to the last slide
// before 0.
func PrevSlide(current, count int) int {
	if count <= 0 {
		return 0
	}
	if current <= 0 || current >= count {
		return count - 1
	}
	return current - 1
}
