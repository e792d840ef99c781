package paging

import (
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want Params
	}{
		{"defaults", "/x", Params{Page: 1, PageSize: DefaultPageSize}},
		{"explicit", "/x?page=3&page_size=10", Params{Page: 3, PageSize: 10}},
		{"zero page clamps", "/x?page=0", Params{Page: 1, PageSize: DefaultPageSize}},
		{"negative page clamps", "/x?page=-2", Params{Page: 1, PageSize: DefaultPageSize}},
		{"oversize clamps to max", "/x?page_size=5000", Params{Page: 1, PageSize: MaxPageSize}},
		{"garbage ignored", "/x?page=abc&page_size=def", Params{Page: 1, PageSize: DefaultPageSize}},
	}
	for _, tc := range tests {
		r := httptest.NewRequest("GET", tc.url, nil)
		if got := Parse(r); got != tc.want {
			t.Errorf("%s: got %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestSkip(t *testing.T) {
	if got := (Params{Page: 3, PageSize: 10}).Skip(); got != 20 {
		t.Errorf("Skip: got %d, want 20", got)
	}
}

func TestSlice(t *testing.T) {
	rows := []int{1, 2, 3, 4, 5}

	if got := Slice(rows, Params{Page: 2, PageSize: 2}); !reflect.DeepEqual(got, []int{3, 4}) {
		t.Errorf("middle page: got %v", got)
	}
	if got := Slice(rows, Params{Page: 3, PageSize: 2}); !reflect.DeepEqual(got, []int{5}) {
		t.Errorf("short last page: got %v", got)
	}
	if got := Slice(rows, Params{Page: 9, PageSize: 2}); len(got) != 0 {
		t.Errorf("past the end: got %v, want empty", got)
	}
}

func TestWrap(t *testing.T) {
	env := Wrap([]string(nil), 0, Params{Page: 1, PageSize: 20})
	if env.Items == nil {
		t.Error("Wrap must never emit a null items array")
	}
	if env.TotalCount != 0 || env.Page != 1 || env.PageSize != 20 {
		t.Errorf("envelope: got %+v", env)
	}
}
