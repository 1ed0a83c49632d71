//go:build !integration

package usecase_test

import (
	"reflect"
	"testing"

	"parallel-muhit-webapp/internal/usecase"
)

func TestPageWindow(t *testing.T) {
	tests := []struct {
		current, total int
		want           []int
	}{
		{1, 0, nil},
		{1, 1, []int{1}},
		{2, 5, []int{1, 2, 3, 4, 5}},
		{7, 12, []int{5, 6, 7, 8, 9}},
		{1, 12, []int{1, 2, 3, 4, 5}},
		{2, 12, []int{1, 2, 3, 4, 5}},
		{12, 12, []int{8, 9, 10, 11, 12}},
		{11, 12, []int{8, 9, 10, 11, 12}},
		{3, 6, []int{1, 2, 3, 4, 5}},
		{6, 6, []int{2, 3, 4, 5, 6}},
		{40, 12, []int{8, 9, 10, 11, 12}},
	}
	for _, tt := range tests {
		got := usecase.PageWindow(tt.current, tt.total)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("PageWindow(%d, %d) = %v, want %v", tt.current, tt.total, got, tt.want)
		}
	}
}
