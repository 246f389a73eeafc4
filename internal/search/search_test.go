package search

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/sigdecode/internal/cipher"
	"github.com/hpungsan/sigdecode/internal/dictionary"
	"github.com/hpungsan/sigdecode/internal/errors"
	"github.com/hpungsan/sigdecode/internal/signal"
)

func loaderFor(text string) Loader {
	return func() (*signal.Signal, error) {
		return signal.New("test", text), nil
	}
}

func newDriver(lex cipher.Lexicon, length, workers int) *Driver {
	return NewDriver(lex, Options{WindowLength: length, Workers: workers, Logger: zerolog.Nop()})
}

func TestRun_SampleSignal(t *testing.T) {
	lex := dictionary.New([]string{"EEEE"})
	d := newDriver(lex, 4, 1)

	res, err := d.Run(context.Background(), loaderFor("AAAABBBBCCCC"))
	require.NoError(t, err)
	require.Equal(t, StateDone, d.State())

	require.Equal(t, 12, res.SignalChars)
	require.Equal(t, 9, res.Windows)
	require.True(t, res.Matched)

	// AAAA, BBBB and CCCC all decode to EEEE; the first one found wins.
	require.Equal(t, 0, res.Best.Position)
	require.Equal(t, 100.0, res.Best.Score)
	require.Equal(t, "EEEE", res.Best.Decoded)
	require.Equal(t, []cipher.Pair{{Cipher: "A", Plain: "E"}}, res.Pairs)
	require.Equal(t, []string{"EEEE"}, res.FirstWords)
}

func TestRun_SampleSignalMapsAtMostThreeLetters(t *testing.T) {
	for w := range cipher.Windows([]rune("AAAABBBBCCCC"), 4) {
		c := Evaluate(w, dictionary.New([]string{"X"}))
		require.LessOrEqual(t, len(c.Ranking), 3)

		identity := 0
		for i, p := range c.Table {
			if p == byte('A'+i) {
				identity++
			}
		}
		require.GreaterOrEqual(t, identity, 23, "window %d", w.Position)
	}
}

func TestRun_TieKeepsEarliestWindow(t *testing.T) {
	// AAAB (position 1) and BBBC (position 5) both decode to EEEA.
	lex := dictionary.New([]string{"EEEA"})
	res, err := newDriver(lex, 4, 1).Run(context.Background(), loaderFor("AAAABBBBCCCC"))
	require.NoError(t, err)
	require.True(t, res.Matched)
	require.Equal(t, 1, res.Best.Position)
	require.Equal(t, "AAAB", res.Best.Window)
}

func TestRun_StrictlyBetterReplaces(t *testing.T) {
	lex := dictionary.New([]string{"E"})
	// "A Q" decodes to "E A" (50), " QQ" and "QQ " to EE (0), "Q Q" to "E E" (100).
	signalText := "A QQ Q"
	res, err := newDriver(lex, 3, 1).Run(context.Background(), loaderFor(signalText))
	require.NoError(t, err)
	require.True(t, res.Matched)
	require.Equal(t, 3, res.Best.Position)
	require.Equal(t, 100.0, res.Best.Score)
}

func TestRun_WindowLongerThanSignal(t *testing.T) {
	d := newDriver(dictionary.New([]string{"A"}), 10, 1)

	res, err := d.Run(context.Background(), loaderFor("ABC"))
	require.NoError(t, err)
	require.Equal(t, 0, res.Windows)
	require.False(t, res.Matched)
	require.Empty(t, res.FirstWords)
	require.Empty(t, res.Pairs)
	require.Equal(t, StateDone, d.State())
}

func TestRun_AllWindowsScoreZero(t *testing.T) {
	res, err := newDriver(dictionary.New([]string{"NOTHING"}), 4, 1).Run(context.Background(), loaderFor("AAAABBBBCCCC"))
	require.NoError(t, err)
	require.Equal(t, 9, res.Windows)
	require.False(t, res.Matched)
}

func TestRun_NonAlphabeticWindows(t *testing.T) {
	res, err := newDriver(dictionary.New([]string{"A"}), 3, 1).Run(context.Background(), loaderFor("1234 5678"))
	require.NoError(t, err)
	require.Equal(t, 7, res.Windows)
	require.False(t, res.Matched)
}

func TestRun_LoadFailureAbortsBeforeSearching(t *testing.T) {
	d := newDriver(dictionary.New([]string{"A"}), 4, 1)
	_, err := d.Run(context.Background(), func() (*signal.Signal, error) {
		return nil, errors.NewSignalUnreadable("gone.txt", nil)
	})
	require.True(t, errors.Is(err, errors.ErrSignalUnreadable))
	require.Equal(t, StateLoading, d.State())
}

func TestRun_SingleUse(t *testing.T) {
	d := newDriver(dictionary.New([]string{"A"}), 4, 1)
	_, err := d.Run(context.Background(), loaderFor("AAAA"))
	require.NoError(t, err)

	_, err = d.Run(context.Background(), loaderFor("AAAA"))
	require.True(t, errors.Is(err, errors.ErrInternal))
}

func TestRun_InvalidWindowLength(t *testing.T) {
	_, err := newDriver(dictionary.New([]string{"A"}), 0, 1).Run(context.Background(), loaderFor("AAAA"))
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		_, err := newDriver(dictionary.New([]string{"E"}), 4, workers).Run(ctx, loaderFor("AAAABBBBCCCC"))
		require.ErrorIs(t, err, context.Canceled, "workers=%d", workers)
	}
}

func TestRun_FinalizeMatchesScoringTable(t *testing.T) {
	sig := enciphered(plaintext)

	// Seed the lexicon with one window's own decoding so a match is guaranteed.
	probe := Evaluate(cipher.Window{Position: 7, Text: string([]rune(sig)[7:67])}, dictionary.New([]string{"X"}))
	lex := dictionary.New(append(strings.Fields(plaintext), cipher.Tokens(probe.Decoded)...))

	res, err := newDriver(lex, 60, 1).Run(context.Background(), loaderFor(sig))
	require.NoError(t, err)
	require.True(t, res.Matched)

	again := Evaluate(cipher.Window{Position: res.Best.Position, Text: res.Best.Window}, lex)
	require.Equal(t, again.Table, res.Best.Table)
	require.Equal(t, again.Ranking, res.Best.Ranking)
	require.Equal(t, again.Decoded, res.Best.Decoded)
	require.Equal(t, again.Score, res.Best.Score)
	require.LessOrEqual(t, len(res.FirstWords), ReportWords)
	require.Equal(t, res.Best.Table.Pairs(res.Best.Ranking), res.Pairs)
	require.LessOrEqual(t, len(res.Pairs), cipher.TopLetters)
}

func TestStateString(t *testing.T) {
	require.Equal(t, "INIT", StateInit.String())
	require.Equal(t, "LOADING", StateLoading.String())
	require.Equal(t, "SEARCHING", StateSearching.String())
	require.Equal(t, "DONE", StateDone.String())
	require.Equal(t, "State(9)", State(9).String())
}
