// Package cipher holds the pure pieces of the frequency-substitution attack:
// sliding windows, letter ranking, substitution tables, decoding and scoring.
package cipher

import "iter"

// Window is a fixed-length span of the signal starting at Position.
type Window struct {
	Position int
	Text     string
}

// WindowCount returns how many windows of the given length fit in a signal
// of signalLen characters. It is zero when the window is longer than the signal.
func WindowCount(signalLen, length int) int {
	if length <= 0 || length > signalLen {
		return 0
	}
	return signalLen - length + 1
}

// Windows yields every contiguous span of length characters in increasing
// offset order. The sequence is lazy and can be ranged over any number of times.
func Windows(signal []rune, length int) iter.Seq[Window] {
	return WindowsBetween(signal, length, 0, WindowCount(len(signal), length))
}

// WindowsBetween yields the windows whose positions fall in [from, to).
// Positions outside the valid range are clipped.
func WindowsBetween(signal []rune, length, from, to int) iter.Seq[Window] {
	return func(yield func(Window) bool) {
		n := WindowCount(len(signal), length)
		from = max(from, 0)
		to = min(to, n)
		for i := from; i < to; i++ {
			if !yield(Window{Position: i, Text: string(signal[i : i+length])}) {
				return
			}
		}
	}
}
