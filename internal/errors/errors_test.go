package errors_test

import (
	"fmt"
	"io"
	"testing"

	"codeberg.org/mutker/healthctl/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	f := errors.New()

	tests := []struct {
		name string
		err  errors.Error
		want string
	}{
		{"known code", f.New(errors.ErrInvalidInterval), "Invalid interval value"},
		{"unknown code", f.New(errors.ErrorCode("custom_code")), "custom_code"},
		{"wrapped", f.Wrap(errors.ErrReadConfig, io.EOF), "Failed to read config file: EOF"},
		{"custom message", f.WithMessage(errors.ErrInternal, "boom"), "boom"},
		{"with data", f.WithData(errors.ErrInvalidInterval, -1), "Invalid interval value: -1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWrapPreservesChain(t *testing.T) {
	f := errors.New()
	err := f.Wrap(errors.ErrCommand, io.ErrUnexpectedEOF)

	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.Equal(t, errors.ErrCommand, err.Code())
}

func TestIsMatchesByCode(t *testing.T) {
	f := errors.New()
	err := fmt.Errorf("outer: %w", f.Wrap(errors.ErrTimeout, io.EOF))

	assert.True(t, errors.Is(err, f.New(errors.ErrTimeout)))
	assert.False(t, errors.Is(err, f.New(errors.ErrInternal)))
}

func TestCodeOf(t *testing.T) {
	f := errors.New()

	var domainErr errors.Error
	require.True(t, errors.As(fmt.Errorf("ctx: %w", f.New(errors.ErrRender)), &domainErr))
	assert.Equal(t, errors.ErrRender, errors.CodeOf(domainErr))
	assert.Equal(t, errors.ErrorCode(""), errors.CodeOf(io.EOF))
}

func TestWithMessageKeepsCode(t *testing.T) {
	base := errors.New().Wrap(errors.ErrCommand, io.EOF)
	msg := base.WithMessage("systemctl failed")

	assert.Equal(t, errors.ErrCommand, msg.Code())
	assert.Equal(t, "systemctl failed: EOF", msg.Error())
	assert.Nil(t, msg.GetData())
}
