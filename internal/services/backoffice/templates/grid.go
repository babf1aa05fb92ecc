package templates

import (
	"net/url"
	"sort"
	"strconv"

	"github.com/louisbranch/backoffice/internal/services/backoffice/datalist"
)

// GridTargetID is the element swapped by grid interactions.
const GridTargetID = "data-grid"

const gridTarget = "#" + GridTargetID

// GridPageView is a list page: heading, breadcrumbs and the grid.
type GridPageView struct {
	Title       string
	Breadcrumbs []Breadcrumb
	Grid        datalist.Grid
}

type hiddenInput struct {
	Name  string
	Value string
}

// hiddenInputs turns the grid state into hidden form fields, skipping the
// named keys. Fields are sorted by name.
func hiddenInputs(state string, skip ...string) []hiddenInput {
	values, err := url.ParseQuery(state)
	if err != nil {
		return nil
	}
	for _, key := range skip {
		values.Del(key)
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var inputs []hiddenInput
	for _, key := range keys {
		for _, value := range values[key] {
			inputs = append(inputs, hiddenInput{Name: key, Value: value})
		}
	}
	return inputs
}

func sortState(direction datalist.Direction) string {
	if direction == datalist.Desc {
		return "descending"
	}
	return "ascending"
}

func emptyColspan(grid datalist.Grid) string {
	return strconv.Itoa(max(len(grid.Headers), 1))
}
