package domain_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/panmirror/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors_IsAndAs(t *testing.T) {
	var err error = fmt.Errorf("convert: %w", &domain.UnknownTagError{Tag: "Table", Path: "/blocks/3"})

	assert.True(t, errors.Is(err, domain.ErrUnknownTag))
	assert.False(t, errors.Is(err, domain.ErrMalformedToken))

	var tagErr *domain.UnknownTagError
	require.True(t, errors.As(err, &tagErr))
	assert.Equal(t, "Table", tagErr.Tag)
	assert.Contains(t, err.Error(), `unknown tag "Table" at /blocks/3`)
}

func TestMalformedTokenError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &domain.MalformedTokenError{Tag: "Header", Path: "/blocks/0", Expected: "[level, attr, inlines]", Err: cause}

	assert.True(t, errors.Is(err, domain.ErrMalformedToken))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "malformed Header at /blocks/0: expected [level, attr, inlines]: boom", err.Error())
}

func TestStructuralMismatchError(t *testing.T) {
	err := &domain.StructuralMismatchError{NodeType: "list_item", Path: "/blocks/0/c/0"}
	assert.True(t, errors.Is(err, domain.ErrStructuralMismatch))
	assert.Equal(t, "cannot build list_item at /blocks/0/c/0", err.Error())
}

func TestParseMismatchPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.MismatchPolicy
		wantErr bool
	}{
		{"", domain.MismatchFail, false},
		{"fail", domain.MismatchFail, false},
		{" DROP ", domain.MismatchDrop, false},
		{"ignore", domain.MismatchFail, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := domain.ParseMismatchPolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "drop", domain.MismatchDrop.String())
}

func TestLifecycleHooks_Merge(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{OnNodeClose: func(context.Context, *domain.NodeEvent) { calls = append(calls, "a") }}
	b := domain.LifecycleHooks{
		OnNodeClose:   func(context.Context, *domain.NodeEvent) { calls = append(calls, "b") },
		OnNodeDropped: func(context.Context, *domain.NodeEvent) { calls = append(calls, "dropped") },
	}

	merged := a.Merge(b)
	merged.OnNodeClose(context.Background(), &domain.NodeEvent{})
	merged.OnNodeDropped(context.Background(), &domain.NodeEvent{})

	assert.Equal(t, []string{"a", "b", "dropped"}, calls)
	assert.Nil(t, merged.OnConvertStart)
}
