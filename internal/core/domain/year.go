package domain

import (
	"fmt"
	"sort"
)

// Year identifies one edition of the yearly rankings dataset.
// It is used only as a grouping key and URL-template parameter.
type Year int

// FirstYear is the oldest edition published on the site.
const FirstYear Year = 2006

// pageURLTemplate is the yearly-indexed page for one dataset edition.
const pageURLTemplate = "https://brimr.org/brimr-rankings-of-nih-funding-in-%d/"

// PageURL returns the rankings page URL for this year.
func (y Year) PageURL() string {
	return fmt.Sprintf(pageURLTemplate, int(y))
}

// String returns the year as a decimal string.
func (y Year) String() string {
	return fmt.Sprintf("%d", int(y))
}

// SortYearsDescending orders years newest first, the default display order.
func SortYearsDescending(years []Year) {
	sort.Slice(years, func(i, j int) bool { return years[i] > years[j] })
}

// SortYearsAscending orders years oldest first, the processing order.
// Processing oldest-first keeps partially built yearly directories in a
// stable order across interrupted and repeated runs.
func SortYearsAscending(years []Year) {
	sort.Slice(years, func(i, j int) bool { return years[i] < years[j] })
}

// YearRange returns all years from first to last inclusive, descending.
func YearRange(first, last Year) []Year {
	if last < first {
		return nil
	}
	years := make([]Year, 0, int(last-first)+1)
	for y := last; y >= first; y-- {
		years = append(years, y)
	}
	return years
}
