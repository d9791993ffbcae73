package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/jereyes4/Wahl-Chains/pkg/errors"
)

func TestReportExitStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"interrupted", fmt.Errorf("batch: %w", context.Canceled), 130},
		{"invalid input", errors.New(errors.ErrCodeInvalidOrder, "example 2"), 2},
		{"missing example", errors.New(errors.ErrCodeExampleNotFound, "index 9"), 1},
		{"plain", stderrors.New("boom"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := report(tt.err); got != tt.want {
				t.Errorf("report() = %d, want %d", got, tt.want)
			}
		})
	}
}
