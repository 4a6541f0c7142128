// package aggregate derives artist, album, and genre summaries from a
// normalized track set.
//
// Summarize is a pure function: the same track set yields bit-identical
// output regardless of input order. All grouping arithmetic is commutative
// (sums and counts over integers) and every output slice is sorted by its
// logical key.
package aggregate

import (
	"sort"

	"github.com/desertthunder/tuneidx/internal/models"
)

// Summary bundles the three derived aggregate views.
type Summary struct {
	Artists []models.ArtistSummary
	Albums  []models.AlbumSummary
	Genres  []models.GenreSummary
}

type accumulator struct {
	trackCount  int
	playCount   int
	ratingSum   int
	ratingCount int
	timeMS      int64
	bitRateSum  int64
	bitRateN    int
	years       map[int]int
	artists     map[string]struct{}
	albums      map[string]struct{}
	genres      map[string]struct{}
}

func newAccumulator() *accumulator {
	return &accumulator{
		years:   make(map[int]int),
		artists: make(map[string]struct{}),
		albums:  make(map[string]struct{}),
		genres:  make(map[string]struct{}),
	}
}

func (a *accumulator) add(t models.Track) {
	a.trackCount++
	a.playCount += t.PlayCount
	if t.Rating != nil {
		a.ratingSum += *t.Rating
		a.ratingCount++
	}
	if t.TotalTimeMS != nil {
		a.timeMS += *t.TotalTimeMS
	}
	if t.BitRate != nil {
		a.bitRateSum += int64(*t.BitRate)
		a.bitRateN++
	}
	if t.Year != nil {
		a.years[*t.Year]++
	}
	if t.Artist != nil {
		a.artists[*t.Artist] = struct{}{}
	}
	if t.Album != nil {
		a.albums[*t.Album] = struct{}{}
	}
	if t.Genre != nil {
		a.genres[*t.Genre] = struct{}{}
	}
}

// averageRating is nil when the group has no rated tracks, never a
// division by zero.
func (a *accumulator) averageRating() *float64 {
	if a.ratingCount == 0 {
		return nil
	}
	avg := float64(a.ratingSum) / float64(a.ratingCount)
	return &avg
}

func (a *accumulator) averageBitRate() *float64 {
	if a.bitRateN == 0 {
		return nil
	}
	avg := float64(a.bitRateSum) / float64(a.bitRateN)
	return &avg
}

// modeYear picks the most frequent year in the group, breaking ties toward
// the smallest year so the result is order-independent. Nil when no track
// in the group carries a year.
func (a *accumulator) modeYear() *int {
	best, bestCount := 0, 0
	for year, count := range a.years {
		if count > bestCount || (count == bestCount && year < best) {
			best, bestCount = year, count
		}
	}
	if bestCount == 0 {
		return nil
	}
	return &best
}

func (a *accumulator) sortedGenres() []string {
	if len(a.genres) == 0 {
		return nil
	}
	out := make([]string, 0, len(a.genres))
	for g := range a.genres {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// Summarize groups the track set three ways and computes each group's
// counters.
//
// Artist grouping is case-sensitive exact match on the artist name; tracks
// without an artist are excluded from the artists view but still counted
// in album and genre groups under the [models.UnknownArtist] sentinel.
// Tracks without an album (or genre) are absent from the album (or genre)
// view entirely.
func Summarize(tracks []models.Track) Summary {
	artists := make(map[string]*accumulator)
	albums := make(map[string]*accumulator)
	genres := make(map[string]*accumulator)
	albumArtist := make(map[string][2]string)

	group := func(m map[string]*accumulator, key string, t models.Track) {
		acc := m[key]
		if acc == nil {
			acc = newAccumulator()
			m[key] = acc
		}
		acc.add(t)
	}

	for _, t := range tracks {
		if t.Artist != nil {
			group(artists, *t.Artist, t)
		}

		if t.Album != nil {
			key := t.ArtistName() + models.AlbumKeySeparator + *t.Album
			group(albums, key, t)
			albumArtist[key] = [2]string{t.ArtistName(), *t.Album}
		}

		if t.Genre != nil {
			group(genres, *t.Genre, t)
		}
	}

	summary := Summary{
		Artists: make([]models.ArtistSummary, 0, len(artists)),
		Albums:  make([]models.AlbumSummary, 0, len(albums)),
		Genres:  make([]models.GenreSummary, 0, len(genres)),
	}

	for name, acc := range artists {
		summary.Artists = append(summary.Artists, models.ArtistSummary{
			Name:           name,
			TrackCount:     acc.trackCount,
			AlbumCount:     len(acc.albums),
			TotalPlayCount: acc.playCount,
			AverageRating:  acc.averageRating(),
			TotalTimeMS:    acc.timeMS,
			Genres:         acc.sortedGenres(),
		})
	}

	for key, acc := range albums {
		pair := albumArtist[key]
		summary.Albums = append(summary.Albums, models.AlbumSummary{
			Artist:         pair[0],
			Album:          pair[1],
			TrackCount:     acc.trackCount,
			Year:           acc.modeYear(),
			TotalPlayCount: acc.playCount,
			AverageRating:  acc.averageRating(),
			AverageBitRate: acc.averageBitRate(),
			TotalTimeMS:    acc.timeMS,
		})
	}

	for name, acc := range genres {
		summary.Genres = append(summary.Genres, models.GenreSummary{
			Name:           name,
			ArtistCount:    len(acc.artists),
			AlbumCount:     len(acc.albums),
			TrackCount:     acc.trackCount,
			TotalPlayCount: acc.playCount,
			AverageRating:  acc.averageRating(),
			TotalTimeMS:    acc.timeMS,
		})
	}

	sort.Slice(summary.Artists, func(i, j int) bool { return summary.Artists[i].Name < summary.Artists[j].Name })
	sort.Slice(summary.Albums, func(i, j int) bool { return summary.Albums[i].DocID() < summary.Albums[j].DocID() })
	sort.Slice(summary.Genres, func(i, j int) bool { return summary.Genres[i].Name < summary.Genres[j].Name })

	return summary
}
