package usecase

// historyWindow is how many page links the history pager shows at once.
const historyWindow = 5

// PageWindow returns the page numbers to render for current out of total.
// With total <= 5 every page is returned; otherwise a 5-wide window centred
// on current and clamped to [1, total].
func PageWindow(current, total int) []int {
	if total <= 0 {
		return nil
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}

	start, end := 1, total
	if total > historyWindow {
		start = current - historyWindow/2
		if start < 1 {
			start = 1
		}
		end = start + historyWindow - 1
		if end > total {
			end = total
			start = end - historyWindow + 1
		}
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}
